package service

import (
	"context"

	"github.com/alexivanou/findfun-api/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	Discover(ctx context.Context, req model.DiscoverRequest) (*model.DiscoverResponse, error)
	ListPlaces(ctx context.Context) ([]model.Place, error)
	GetPlace(ctx context.Context, fsqID string) (*model.Place, error)
	DeletePlace(ctx context.Context, fsqID string) error

	SuggestCities(query string) []string
	ResolveCity(ctx context.Context, address string) (*model.CityInfo, error)
	DescribeCity(ctx context.Context, city string, activities []string) (*model.CityDescription, error)
	ListActivities() []model.Activity

	CreateItinerary(ctx context.Context, req model.ItineraryRequest) (*model.Itinerary, error)
	UpdateItinerary(ctx context.Context, id int64, req model.ItineraryRequest) (*model.Itinerary, error)
	DeleteItinerary(ctx context.Context, id int64) error
	ListItineraries(ctx context.Context) ([]model.Itinerary, error)
	GetItinerary(ctx context.Context, id int64) (*model.Itinerary, error)
	AddItineraryPlace(ctx context.Context, id int64, req model.ItineraryPlaceRequest) (*model.Itinerary, error)
	RemoveItineraryPlace(ctx context.Context, id int64, fsqID string) error
}

var _ ServiceInterface = (*Service)(nil)
