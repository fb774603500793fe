package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/store"
	"github.com/andrewpaige1/apex-defense-api/utils"
)

// GET /projects/{id}/scenarios?skip=&limit=
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	page, err := utils.ParsePage(r)
	if err != nil {
		utils.WriteError(w, h.Log, "ListScenarios", err)
		return
	}
	scenarios, err := h.Scenarios.List(r.Context(), user.ID, r.PathValue("id"), page)
	if err != nil {
		utils.WriteError(w, h.Log, "ListScenarios", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, scenarios)
}

// POST /projects/{id}/scenarios
func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var in store.ScenarioInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, h.Log, "CreateScenario", err)
		return
	}
	scenario, err := h.Scenarios.Create(r.Context(), user.ID, r.PathValue("id"), in)
	if err != nil {
		utils.WriteError(w, h.Log, "CreateScenario", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, scenario)
}

// GET /projects/{id}/scenarios/{sid}
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	scenario, err := h.Scenarios.Get(r.Context(), user.ID, r.PathValue("id"), r.PathValue("sid"))
	if err != nil {
		utils.WriteError(w, h.Log, "GetScenario", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, scenario)
}

// PATCH /projects/{id}/scenarios/{sid}
func (h *Handler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var p store.ScenarioPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.WriteError(w, h.Log, "UpdateScenario", err)
		return
	}
	scenario, err := h.Scenarios.Update(r.Context(), user.ID, r.PathValue("id"), r.PathValue("sid"), p)
	if err != nil {
		utils.WriteError(w, h.Log, "UpdateScenario", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, scenario)
}

// DELETE /projects/{id}/scenarios/{sid}
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Scenarios.Delete(r.Context(), user.ID, r.PathValue("id"), r.PathValue("sid")); err != nil {
		utils.WriteError(w, h.Log, "DeleteScenario", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /projects/{id}/scenarios/{sid}/branch?new_name=
func (h *Handler) BranchScenario(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	parentID := r.PathValue("sid")
	child, err := h.Scenarios.Branch(r.Context(), user.ID, r.PathValue("id"), parentID, r.URL.Query().Get("new_name"))
	if err != nil {
		utils.WriteError(w, h.Log, "BranchScenario", err)
		return
	}
	h.Log.Info("BranchScenario: scenario branched",
		zap.String("parent_id", parentID), zap.String("scenario_id", child.ID), zap.Int("version", child.Version))
	utils.WriteJSON(w, http.StatusCreated, child)
}

// GET /projects/{id}/scenarios/{sid}/lineage
func (h *Handler) GetScenarioLineage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	chain, err := h.Scenarios.Lineage(r.Context(), user.ID, r.PathValue("id"), r.PathValue("sid"))
	if err != nil {
		utils.WriteError(w, h.Log, "GetScenarioLineage", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, chain)
}
