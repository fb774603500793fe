package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/advisor"
	"github.com/andrewpaige1/apex-defense-api/store"
	"github.com/andrewpaige1/apex-defense-api/utils"
)

// GET /ai/providers
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, advisor.Providers())
}

// GET /ai/features
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, advisor.Features())
}

// GET /ai/config
func (h *Handler) GetAIConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	cfg, err := h.AIConfigs.Get(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, h.Log, "GetAIConfig", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cfg)
}

// POST /ai/config
func (h *Handler) CreateAIConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var in store.AIConfigInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, h.Log, "CreateAIConfig", err)
		return
	}
	cfg, err := h.AIConfigs.Create(r.Context(), user.ID, in)
	if err != nil {
		utils.WriteError(w, h.Log, "CreateAIConfig", err)
		return
	}
	h.Log.Info("CreateAIConfig: configuration created",
		zap.String("user_id", user.ID), zap.String("provider", string(cfg.Provider)))
	utils.WriteJSON(w, http.StatusCreated, cfg)
}

// PATCH /ai/config
func (h *Handler) UpdateAIConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var p store.AIConfigPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.WriteError(w, h.Log, "UpdateAIConfig", err)
		return
	}
	cfg, err := h.AIConfigs.Update(r.Context(), user.ID, p)
	if err != nil {
		utils.WriteError(w, h.Log, "UpdateAIConfig", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, cfg)
}

// DELETE /ai/config
func (h *Handler) DeleteAIConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.AIConfigs.Delete(r.Context(), user.ID); err != nil {
		utils.WriteError(w, h.Log, "DeleteAIConfig", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /ai/analyze
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req advisor.Request
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Log, "Analyze", err)
		return
	}
	result, err := h.Advisor.Analyze(r.Context(), user.ID, req)
	if err != nil {
		utils.WriteError(w, h.Log, "Analyze", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}
