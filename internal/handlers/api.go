package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/api"
	"github.com/staffgraph/staffgraph/internal/database"
	"github.com/staffgraph/staffgraph/internal/middleware"
	"github.com/staffgraph/staffgraph/internal/services"
	"github.com/staffgraph/staffgraph/internal/utils"
)

// APIHandler handles the authenticated API endpoints
type APIHandler struct {
	db            *gorm.DB
	personService *services.PersonService
	relService    *services.RelationshipService
	importService *services.ImportService
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(db *gorm.DB, personService *services.PersonService, relService *services.RelationshipService, importService *services.ImportService) *APIHandler {
	return &APIHandler{
		db:            db,
		personService: personService,
		relService:    relService,
		importService: importService,
	}
}

// SetupRoutes sets up all API routes
func (h *APIHandler) SetupRoutes(mux *http.ServeMux) {
	// Persons
	mux.HandleFunc("GET /api/persons", h.handleListPersons)
	mux.HandleFunc("GET /api/persons/{uuid}", h.handleGetPerson)
	mux.HandleFunc("GET /api/persons/{uuid}/connections", h.handleGetConnections)

	// Relationships
	mux.HandleFunc("GET /api/relationships", h.handleListRelationships)
	mux.HandleFunc("GET /api/relationships/export.csv", h.handleExportRelationships)
	mux.HandleFunc("PUT /api/relationships/{uuid}/label", h.handleCurateLabel)

	// Ingestion and rebuild
	mux.HandleFunc("POST /api/import/{source}", h.handleImport)
	mux.HandleFunc("POST /api/rebuild", h.handleRebuild)
	mux.HandleFunc("GET /api/rebuild/last", h.handleLastRebuild)

	// Scoring settings
	mux.HandleFunc("GET /api/settings/scoring", h.handleGetScoringSettings)
	mux.HandleFunc("PUT /api/settings/scoring", h.handleUpdateScoringSettings)
}

// handleListPersons handles GET /api/persons?search=&page=&per_page=
func (h *APIHandler) handleListPersons(w http.ResponseWriter, r *http.Request) {
	p := api.ParsePagination(r)
	search := r.URL.Query().Get("search")

	persons, total, err := h.personService.List(search, p.PerPage, p.Offset())
	if err != nil {
		log.Printf("APIHandler: Failed to list persons: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list persons")
		return
	}
	api.RespondList(w, api.PersonsToSummaries(persons), p, total)
}

// handleGetPerson handles GET /api/persons/{uuid}
func (h *APIHandler) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	person, err := h.personService.GetByUUID(r.PathValue("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Person not found")
		} else {
			api.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	merged, err := h.personService.MergedFacts(person)
	if err != nil {
		log.Printf("APIHandler: Failed to merge facts for %s: %v", person.UUID, err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to resolve person facts")
		return
	}
	api.RespondJSON(w, http.StatusOK, api.PersonToDetail(*person, merged))
}

// handleGetConnections handles GET /api/persons/{uuid}/connections?limit=
func (h *APIHandler) handleGetConnections(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	person, connections, err := h.relService.StrongestConnections(r.PathValue("uuid"), limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Person not found")
		} else {
			api.RespondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	items := make([]api.ConnectionItem, len(connections))
	for i, c := range connections {
		items[i] = api.ConnectionToItem(c)
	}
	api.RespondJSON(w, http.StatusOK, api.ConnectionsResponse{
		Person:      api.PersonToSummary(*person),
		Connections: items,
	})
}

// handleListRelationships handles GET /api/relationships?min_score=&page=&per_page=
func (h *APIHandler) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	p := api.ParsePagination(r)
	minScore := 0
	if v := r.URL.Query().Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			minScore = n
		}
	}

	rels, total, err := h.relService.List(minScore, p.PerPage, p.Offset())
	if err != nil {
		log.Printf("APIHandler: Failed to list relationships: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list relationships")
		return
	}
	api.RespondList(w, api.RelationshipsToItems(rels), p, total)
}

// handleCurateLabel handles PUT /api/relationships/{uuid}/label
func (h *APIHandler) handleCurateLabel(w http.ResponseWriter, r *http.Request) {
	var req api.CurateLabelRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Label {
	case "", "hired", "worked-together":
	default:
		api.RespondErrorWithCode(w, http.StatusBadRequest, "invalid_label",
			"Label must be 'hired', 'worked-together' or empty to clear")
		return
	}

	rel, err := h.relService.SetCuratedLabel(r.PathValue("uuid"), req.Label)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "Relationship not found")
		} else {
			api.RespondError(w, http.StatusInternalServerError, "Failed to update label")
		}
		return
	}
	api.RespondJSON(w, http.StatusOK, api.RelationshipToItem(*rel))
}

// handleImport handles POST /api/import/{source}
func (h *APIHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := api.ReadBody(r)
	if err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.importService.Import(r.PathValue("source"), body)
	if err != nil {
		// The source name is raw client input; escape it before logging.
		log.Printf("APIHandler: Import %s rejected: %v",
			utils.EscapeForLogging(r.PathValue("source"), 64), err)
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	api.RespondJSON(w, http.StatusOK, result)
}

// handleRebuild handles POST /api/rebuild - triggers a full recompute
func (h *APIHandler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	triggeredBy := middleware.GetUserFromContext(r.Context())
	if triggeredBy == "" {
		triggeredBy = "operator"
	}

	rebuild, err := h.relService.RebuildAll(triggeredBy)
	if err != nil {
		log.Printf("APIHandler: Rebuild failed: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Rebuild failed")
		return
	}
	api.RespondJSON(w, http.StatusOK, api.RebuildToResponse(*rebuild))
}

// handleLastRebuild handles GET /api/rebuild/last
func (h *APIHandler) handleLastRebuild(w http.ResponseWriter, r *http.Request) {
	rebuild, err := h.relService.LastRebuild()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			api.RespondError(w, http.StatusNotFound, "No rebuild has run yet")
		} else {
			api.RespondError(w, http.StatusInternalServerError, "Failed to load rebuild history")
		}
		return
	}
	api.RespondJSON(w, http.StatusOK, api.RebuildToResponse(*rebuild))
}

// handleGetScoringSettings handles GET /api/settings/scoring
func (h *APIHandler) handleGetScoringSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := database.GetOrCreateScoringSettings(h.db)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	api.RespondJSON(w, http.StatusOK, settings)
}

// handleUpdateScoringSettings handles PUT /api/settings/scoring
func (h *APIHandler) handleUpdateScoringSettings(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateScoringSettingsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := req.Validate(); errs != nil {
		api.RespondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	settings, err := database.GetOrCreateScoringSettings(h.db)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	req.Apply(settings)
	if err := database.UpdateScoringSettings(h.db, settings); err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}
	api.RespondJSON(w, http.StatusOK, settings)
}
