// Package api exposes the read-only query surface: single-feature lookup,
// location-scoped bulk lookup, the two metadata registries, and the
// processing-errors view.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/water-fountains/datablue/internal/model"
	"github.com/water-fountains/datablue/internal/pipeline"
	"github.com/water-fountains/datablue/internal/registry"
)

// Handler serves the query API from an in-memory per-location cache of
// generated collections.
type Handler struct {
	cache     *cache
	locations *registry.Locations
	props     *registry.Properties
}

// NewHandler creates the API handler.
func NewHandler(gen Generator, locations *registry.Locations, props *registry.Properties, ttl time.Duration) *Handler {
	return &Handler{
		cache:     newCache(gen, ttl),
		locations: locations,
		props:     props,
	}
}

// Router wires all endpoints.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v2", func(r chi.Router) {
		r.Get("/fountain", h.handleFountain)
		r.Get("/fountains", h.handleFountains)
		r.Get("/metadata/fountain_properties", h.handlePropertyMetadata)
		r.Get("/metadata/locations", h.handleLocationMetadata)
		r.Get("/processing-errors", h.handleProcessingErrors)
	})

	return r
}

// handleFountain serves single-feature lookup by source id.
func (h *Handler) handleFountain(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	database := r.URL.Query().Get("database")
	idval := r.URL.Query().Get("idval")
	if city == "" || idval == "" {
		writeError(w, http.StatusBadRequest, "city and idval are required")
		return
	}

	var key model.PropertyKey
	switch database {
	case "osm":
		key = model.PropIDOsm
	case "wikidata":
		key = model.PropIDWikidata
	default:
		writeError(w, http.StatusBadRequest, "database must be osm or wikidata")
		return
	}

	e, ok := h.lookup(w, r, city, false)
	if !ok {
		return
	}
	for _, f := range e.coll.Features {
		env := f.Properties.Get(key)
		if env != nil && env.StringValue() == idval {
			writeJSON(w, http.StatusOK, f)
			return
		}
	}
	writeError(w, http.StatusNotFound, "fountain not found")
}

// handleFountains serves the location-scoped bulk lookup. The essence
// projection is the default bulk-transfer shape; essential=false returns
// the full provenance-annotated collection.
func (h *Handler) handleFountains(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"
	full := r.URL.Query().Get("essential") == "false"

	e, ok := h.lookup(w, r, city, refresh)
	if !ok {
		return
	}
	if full {
		writeJSON(w, http.StatusOK, e.coll)
		return
	}
	writeJSON(w, http.StatusOK, e.essence)
}

func (h *Handler) handlePropertyMetadata(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.props.All())
}

func (h *Handler) handleLocationMetadata(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.locations.All())
}

// handleProcessingErrors serves every issue accumulated across a location's
// collection.
func (h *Handler) handleProcessingErrors(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}
	e, ok := h.lookup(w, r, city, false)
	if !ok {
		return
	}
	issues := pipeline.ExtractIssues(e.coll)
	if issues == nil {
		issues = []model.Issue{}
	}
	writeJSON(w, http.StatusOK, issues)
}

// lookup resolves a location's cached entry, mapping failures onto HTTP
// statuses. A false return means the response has been written.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, city string, refresh bool) (*entry, bool) {
	if _, ok := h.locations.Get(city); !ok {
		writeError(w, http.StatusNotFound, "unknown location: "+city)
		return nil, false
	}
	e, err := h.cache.get(r.Context(), city, refresh)
	if err != nil {
		zap.L().Error("api: collection generation failed",
			zap.String("location", city),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "collection generation failed")
		return nil, false
	}
	return e, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !strings.Contains(err.Error(), "broken pipe") {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
