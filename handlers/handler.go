package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/advisor"
	"github.com/andrewpaige1/apex-defense-api/config"
	"github.com/andrewpaige1/apex-defense-api/forces"
	"github.com/andrewpaige1/apex-defense-api/middleware"
	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/store"
	"github.com/andrewpaige1/apex-defense-api/utils"
)

// Analyzer answers AI advisory requests.
type Analyzer interface {
	Analyze(ctx context.Context, userID string, req advisor.Request) (advisor.Result, error)
}

// Handler holds everything the HTTP layer talks to.
type Handler struct {
	Countries *store.CountryStore
	Projects  *store.ProjectStore
	Scenarios *store.ScenarioStore
	AIConfigs *store.AIConfigStore
	Forces    *forces.Aggregator
	Advisor   Analyzer
	Settings  config.Settings
	Log       *zap.Logger
}

// currentUser writes a 401 when SyncUserMiddleware did not run for the request.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.WriteDetail(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return user, true
}

// SystemRoutes registers the unprefixed health and info endpoints.
func (h *Handler) SystemRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /{$}", h.Info)
}

// Routes registers every API endpoint on mux. Paths are relative to the API prefix.
func (h *Handler) Routes(mux *http.ServeMux, syncUser func(http.HandlerFunc) http.HandlerFunc) {
	// Countries
	mux.HandleFunc("GET /countries", h.ListCountries)
	mux.HandleFunc("POST /countries", syncUser(h.CreateCountry))
	mux.HandleFunc("GET /countries/{id}", syncUser(h.GetCountry))
	mux.HandleFunc("PATCH /countries/{id}", syncUser(h.UpdateCountry))
	mux.HandleFunc("DELETE /countries/{id}", syncUser(h.DeleteCountry))
	// iso/{code}, {id}/summary and {id}/branches overlap as mux patterns.
	mux.HandleFunc("GET /countries/{id}/{view}", syncUser(h.CountryView))
	mux.HandleFunc("POST /countries/{id}/branches", syncUser(h.CreateBranch))
	mux.HandleFunc("POST /countries/branches/{id}/equipment", syncUser(h.CreateEquipment))

	// Projects
	mux.HandleFunc("GET /projects", syncUser(h.ListProjects))
	mux.HandleFunc("POST /projects", syncUser(h.CreateProject))
	mux.HandleFunc("GET /projects/{id}", syncUser(h.GetProject))
	mux.HandleFunc("PATCH /projects/{id}", syncUser(h.UpdateProject))
	mux.HandleFunc("DELETE /projects/{id}", syncUser(h.DeleteProject))

	// Scenarios
	mux.HandleFunc("GET /projects/{id}/scenarios", syncUser(h.ListScenarios))
	mux.HandleFunc("POST /projects/{id}/scenarios", syncUser(h.CreateScenario))
	mux.HandleFunc("GET /projects/{id}/scenarios/{sid}", syncUser(h.GetScenario))
	mux.HandleFunc("PATCH /projects/{id}/scenarios/{sid}", syncUser(h.UpdateScenario))
	mux.HandleFunc("DELETE /projects/{id}/scenarios/{sid}", syncUser(h.DeleteScenario))
	mux.HandleFunc("POST /projects/{id}/scenarios/{sid}/branch", syncUser(h.BranchScenario))
	mux.HandleFunc("GET /projects/{id}/scenarios/{sid}/lineage", syncUser(h.GetScenarioLineage))

	// AI
	mux.HandleFunc("GET /ai/providers", h.ListProviders)
	mux.HandleFunc("GET /ai/features", h.ListFeatures)
	mux.HandleFunc("GET /ai/config", syncUser(h.GetAIConfig))
	mux.HandleFunc("POST /ai/config", syncUser(h.CreateAIConfig))
	mux.HandleFunc("PATCH /ai/config", syncUser(h.UpdateAIConfig))
	mux.HandleFunc("DELETE /ai/config", syncUser(h.DeleteAIConfig))
	mux.HandleFunc("POST /ai/analyze", syncUser(h.Analyze))
}
