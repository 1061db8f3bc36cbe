package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 16

// ListItineraries handles GET /api/v1/itineraries
func (h *Handler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	itineraries, err := h.service.ListItineraries(r.Context())
	if err != nil {
		h.writeError(w, err, "listing itineraries")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"itineraries": itineraries,
		"count":       len(itineraries),
	})
}

// CreateItinerary handles POST /api/v1/itineraries
func (h *Handler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	var req model.ItineraryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	it, err := h.service.CreateItinerary(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "creating itinerary")
		return
	}

	h.writeJSON(w, http.StatusCreated, it)
}

// GetItinerary handles GET /api/v1/itineraries/{id}
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	it, err := h.service.GetItinerary(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "getting itinerary")
		return
	}

	h.writeJSON(w, http.StatusOK, it)
}

// UpdateItinerary handles PUT /api/v1/itineraries/{id}
func (h *Handler) UpdateItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	var req model.ItineraryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	it, err := h.service.UpdateItinerary(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "updating itinerary")
		return
	}

	h.writeJSON(w, http.StatusOK, it)
}

// DeleteItinerary handles DELETE /api/v1/itineraries/{id}
func (h *Handler) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItinerary(r.Context(), id); err != nil {
		h.writeError(w, err, "deleting itinerary")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItineraryPlace handles POST /api/v1/itineraries/{id}/places
func (h *Handler) AddItineraryPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	var req model.ItineraryPlaceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	it, err := h.service.AddItineraryPlace(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err, "adding itinerary place")
		return
	}

	h.writeJSON(w, http.StatusOK, it)
}

// RemoveItineraryPlace handles DELETE /api/v1/itineraries/{id}/places/{fsq_id}
func (h *Handler) RemoveItineraryPlace(w http.ResponseWriter, r *http.Request) {
	id, ok := itineraryID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveItineraryPlace(r.Context(), id, mux.Vars(r)["fsq_id"]); err != nil {
		h.writeError(w, err, "removing itinerary place")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func itineraryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid itinerary id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
