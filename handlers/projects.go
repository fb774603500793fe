package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/store"
	"github.com/andrewpaige1/apex-defense-api/utils"
)

// GET /projects?status=&skip=&limit=
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	page, err := utils.ParsePage(r)
	if err != nil {
		utils.WriteError(w, h.Log, "ListProjects", err)
		return
	}
	projects, err := h.Projects.List(r.Context(), user.ID, store.ProjectFilter{
		Status: r.URL.Query().Get("status"),
		Page:   page,
	})
	if err != nil {
		utils.WriteError(w, h.Log, "ListProjects", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, projects)
}

// POST /projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var in store.ProjectInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, h.Log, "CreateProject", err)
		return
	}
	project, err := h.Projects.Create(r.Context(), user.ID, in)
	if err != nil {
		utils.WriteError(w, h.Log, "CreateProject", err)
		return
	}
	h.Log.Info("CreateProject: project created", zap.String("project_id", project.ID), zap.String("owner_id", user.ID))
	utils.WriteJSON(w, http.StatusCreated, project)
}

// GET /projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	project, err := h.Projects.Get(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, h.Log, "GetProject", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

// PATCH /projects/{id}
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var p store.ProjectPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.WriteError(w, h.Log, "UpdateProject", err)
		return
	}
	project, err := h.Projects.Update(r.Context(), user.ID, r.PathValue("id"), p)
	if err != nil {
		utils.WriteError(w, h.Log, "UpdateProject", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, project)
}

// DELETE /projects/{id}
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := h.Projects.Delete(r.Context(), user.ID, id); err != nil {
		utils.WriteError(w, h.Log, "DeleteProject", err)
		return
	}
	h.Log.Info("DeleteProject: project deleted", zap.String("project_id", id))
	w.WriteHeader(http.StatusNoContent)
}
