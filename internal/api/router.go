package api

import (
	"net/http"

	"github.com/alexivanou/findfun-api/internal/service"
	"github.com/alexivanou/findfun-api/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// NewRouter creates a new HTTP router. API routes are registered on the
// top-level router, where a method mismatch answers 405.
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := func(method, path string, h http.HandlerFunc) {
		router.HandleFunc(apiPrefix+path, h).Methods(method)
	}
	v1("GET", "/cities", handler.SuggestCities)
	v1("GET", "/cities/resolve", handler.ResolveCity)
	v1("GET", "/cities/{name}/description", handler.DescribeCity)
	v1("GET", "/activities", handler.ListActivities)
	v1("GET", "/discover", handler.Discover)

	v1("GET", "/places", handler.ListPlaces)
	v1("GET", "/places/{fsq_id}", handler.GetPlace)
	v1("DELETE", "/places/{fsq_id}", handler.DeletePlace)

	v1("GET", "/itineraries", handler.ListItineraries)
	v1("POST", "/itineraries", handler.CreateItinerary)
	v1("GET", "/itineraries/{id}", handler.GetItinerary)
	v1("PUT", "/itineraries/{id}", handler.UpdateItinerary)
	v1("DELETE", "/itineraries/{id}", handler.DeleteItinerary)
	v1("POST", "/itineraries/{id}/places", handler.AddItineraryPlace)
	v1("DELETE", "/itineraries/{id}/places/{fsq_id}", handler.RemoveItineraryPlace)

	v1("GET", "/stats", statsHandler.GetStats)

	return router
}
