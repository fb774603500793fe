package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/store"
	"github.com/andrewpaige1/apex-defense-api/utils"
)

// GET /countries?region=&search=&skip=&limit=
func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	page, err := utils.ParsePage(r)
	if err != nil {
		utils.WriteError(w, h.Log, "ListCountries", err)
		return
	}
	q := r.URL.Query()
	countries, err := h.Countries.List(r.Context(), store.CountryFilter{
		Region: q.Get("region"),
		Search: q.Get("search"),
		Page:   page,
	})
	if err != nil {
		utils.WriteError(w, h.Log, "ListCountries", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, countries)
}

// POST /countries
func (h *Handler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var in store.CountryInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, h.Log, "CreateCountry", err)
		return
	}
	country, err := h.Countries.Create(r.Context(), in)
	if err != nil {
		utils.WriteError(w, h.Log, "CreateCountry", err)
		return
	}
	h.Log.Info("CreateCountry: country created", zap.String("country_id", country.ID), zap.String("iso_code", country.ISOCode))
	utils.WriteJSON(w, http.StatusCreated, country)
}

// GET /countries/iso/{code}, /countries/{id}/summary, /countries/{id}/branches
func (h *Handler) CountryView(w http.ResponseWriter, r *http.Request) {
	id, view := r.PathValue("id"), r.PathValue("view")
	switch {
	case id == "iso":
		r.SetPathValue("code", view)
		h.GetCountryByISO(w, r)
	case view == "summary":
		h.GetForceSummary(w, r)
	case view == "branches":
		h.ListBranches(w, r)
	default:
		utils.WriteDetail(w, http.StatusNotFound, "Not Found")
	}
}

// GET /countries/iso/{code}
func (h *Handler) GetCountryByISO(w http.ResponseWriter, r *http.Request) {
	country, err := h.Countries.GetByISO(r.Context(), r.PathValue("code"))
	if err != nil {
		utils.WriteError(w, h.Log, "GetCountryByISO", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, country)
}

// GET /countries/{id}
func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	country, err := h.Countries.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, h.Log, "GetCountry", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, country)
}

// PATCH /countries/{id}
func (h *Handler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	var p store.CountryPatch
	if err := utils.DecodeJSON(r, &p); err != nil {
		utils.WriteError(w, h.Log, "UpdateCountry", err)
		return
	}
	country, err := h.Countries.Update(r.Context(), r.PathValue("id"), p)
	if err != nil {
		utils.WriteError(w, h.Log, "UpdateCountry", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, country)
}

// DELETE /countries/{id}
func (h *Handler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Countries.Delete(r.Context(), id); err != nil {
		utils.WriteError(w, h.Log, "DeleteCountry", err)
		return
	}
	h.Log.Info("DeleteCountry: country deleted", zap.String("country_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// GET /countries/{id}/summary
func (h *Handler) GetForceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Forces.Summarize(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, h.Log, "GetForceSummary", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

// GET /countries/{id}/branches
func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Countries.ListBranches(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, h.Log, "ListBranches", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, branches)
}

// POST /countries/{id}/branches
func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var in store.BranchInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, h.Log, "CreateBranch", err)
		return
	}
	branch, err := h.Countries.CreateBranch(r.Context(), r.PathValue("id"), in)
	if err != nil {
		utils.WriteError(w, h.Log, "CreateBranch", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, branch)
}

// POST /countries/branches/{id}/equipment
func (h *Handler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	var in store.EquipmentInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, h.Log, "CreateEquipment", err)
		return
	}
	equipment, err := h.Countries.CreateEquipment(r.Context(), r.PathValue("id"), in)
	if err != nil {
		utils.WriteError(w, h.Log, "CreateEquipment", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, equipment)
}
