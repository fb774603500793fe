package handlers

import (
	"net/http"

	"github.com/andrewpaige1/apex-defense-api/utils"
)

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"app":     h.Settings.AppName,
		"version": h.Settings.Version,
	})
}

// GET /
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"name":       h.Settings.AppName,
		"version":    h.Settings.Version,
		"api_prefix": h.Settings.APIPrefix,
	})
}
