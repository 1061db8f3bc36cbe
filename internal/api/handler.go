package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/alexivanou/findfun-api/internal/repository"
	"github.com/alexivanou/findfun-api/internal/service"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// SuggestCities handles GET /api/v1/cities
func (h *Handler) SuggestCities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	cities := h.service.SuggestCities(query)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}

// ResolveCity handles GET /api/v1/cities/resolve
func (h *Handler) ResolveCity(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "query parameter 'address' is required", http.StatusBadRequest)
		return
	}

	info, err := h.service.ResolveCity(r.Context(), address)
	if err != nil {
		h.writeError(w, err, "resolving city")
		return
	}

	h.writeJSON(w, http.StatusOK, info)
}

// DescribeCity handles GET /api/v1/cities/{name}/description
func (h *Handler) DescribeCity(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	activities := config.SplitList(r.URL.Query().Get("activities"))

	desc, err := h.service.DescribeCity(r.Context(), name, activities)
	if err != nil {
		h.writeError(w, err, "describing city")
		return
	}

	h.writeJSON(w, http.StatusOK, desc)
}

// ListActivities handles GET /api/v1/activities
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.ListActivities())
}

// Discover handles GET /api/v1/discover
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")
	if city == "" {
		http.Error(w, "query parameter 'city' is required", http.StatusBadRequest)
		return
	}

	activities := config.SplitList(q.Get("activities"))
	if len(activities) == 0 {
		http.Error(w, "query parameter 'activities' is required", http.StatusBadRequest)
		return
	}

	var refresh bool
	if refreshStr := q.Get("refresh"); refreshStr != "" {
		var err error
		refresh, err = strconv.ParseBool(refreshStr)
		if err != nil {
			http.Error(w, "invalid refresh parameter", http.StatusBadRequest)
			return
		}
	}

	response, err := h.service.Discover(r.Context(), model.DiscoverRequest{
		City:       city,
		Activities: activities,
		Refresh:    refresh,
	})
	if err != nil {
		h.writeError(w, err, "discovering places")
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// ListPlaces handles GET /api/v1/places
func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.ListPlaces(r.Context())
	if err != nil {
		h.writeError(w, err, "listing places")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"places": places,
		"count":  len(places),
	})
}

// GetPlace handles GET /api/v1/places/{fsq_id}
func (h *Handler) GetPlace(w http.ResponseWriter, r *http.Request) {
	place, err := h.service.GetPlace(r.Context(), mux.Vars(r)["fsq_id"])
	if err != nil {
		h.writeError(w, err, "getting place")
		return
	}

	h.writeJSON(w, http.StatusOK, place)
}

// DeletePlace handles DELETE /api/v1/places/{fsq_id}
func (h *Handler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePlace(r.Context(), mux.Vars(r)["fsq_id"]); err != nil {
		h.writeError(w, err, "deleting place")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

// writeError maps service errors onto status codes. Only unexpected
// failures are logged.
func (h *Handler) writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("Error "+action, zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
