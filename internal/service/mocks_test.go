package service

import (
	"context"

	"github.com/alexivanou/findfun-api/internal/foursquare"
	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockPlaceRepository implements repository.PlaceRepository interface
type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) SavePlaces(ctx context.Context, places []model.Place) error {
	args := m.Called(ctx, places)
	return args.Error(0)
}

func (m *MockPlaceRepository) SaveScope(ctx context.Context, scopeKey string, places []model.Place) error {
	args := m.Called(ctx, scopeKey, places)
	return args.Error(0)
}

func (m *MockPlaceRepository) ListPlaces(ctx context.Context) ([]model.Place, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Place), args.Error(1)
}

func (m *MockPlaceRepository) ListPlacesByScope(ctx context.Context, scopeKey string) ([]model.Place, error) {
	args := m.Called(ctx, scopeKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Place), args.Error(1)
}

func (m *MockPlaceRepository) GetPlace(ctx context.Context, fsqID string) (*model.Place, error) {
	args := m.Called(ctx, fsqID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Place), args.Error(1)
}

func (m *MockPlaceRepository) DeletePlace(ctx context.Context, fsqID string) error {
	args := m.Called(ctx, fsqID)
	return args.Error(0)
}

func (m *MockPlaceRepository) CountPlaces(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockPlaceRepository) CountScope(ctx context.Context, scopeKey string) (int, error) {
	args := m.Called(ctx, scopeKey)
	return args.Int(0), args.Error(1)
}

func (m *MockPlaceRepository) ClearScope(ctx context.Context, scopeKey string) error {
	args := m.Called(ctx, scopeKey)
	return args.Error(0)
}

// MockItineraryRepository implements repository.ItineraryRepository interface
type MockItineraryRepository struct {
	mock.Mock
}

func (m *MockItineraryRepository) CreateItinerary(ctx context.Context, name, date string) (*model.Itinerary, error) {
	args := m.Called(ctx, name, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Itinerary), args.Error(1)
}

func (m *MockItineraryRepository) UpdateItinerary(ctx context.Context, id int64, name, date string) error {
	args := m.Called(ctx, id, name, date)
	return args.Error(0)
}

func (m *MockItineraryRepository) DeleteItinerary(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItineraryRepository) ListItineraries(ctx context.Context) ([]model.Itinerary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Itinerary), args.Error(1)
}

func (m *MockItineraryRepository) GetItinerary(ctx context.Context, id int64) (*model.Itinerary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Itinerary), args.Error(1)
}

func (m *MockItineraryRepository) AddPlace(ctx context.Context, itineraryID int64, fsqID, visitTime, note string) error {
	args := m.Called(ctx, itineraryID, fsqID, visitTime, note)
	return args.Error(0)
}

func (m *MockItineraryRepository) RemovePlace(ctx context.Context, itineraryID int64, fsqID string) error {
	args := m.Called(ctx, itineraryID, fsqID)
	return args.Error(0)
}

// MockPlaceSearcher implements PlaceSearcher
type MockPlaceSearcher struct {
	mock.Mock
}

func (m *MockPlaceSearcher) Search(ctx context.Context, params foursquare.SearchParams) ([]model.Place, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Place), args.Error(1)
}

func (m *MockPlaceSearcher) Details(ctx context.Context, fsqID string, fields []string) (*model.Place, error) {
	args := m.Called(ctx, fsqID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Place), args.Error(1)
}

// MockCityResolver implements CityResolver
type MockCityResolver struct {
	mock.Mock
}

func (m *MockCityResolver) Resolve(ctx context.Context, address string) (*model.CityInfo, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CityInfo), args.Error(1)
}

// MockDescriber implements Describer
type MockDescriber struct {
	mock.Mock
}

func (m *MockDescriber) Describe(ctx context.Context, city string, activities []string) (string, error) {
	args := m.Called(ctx, city, activities)
	return args.String(0), args.Error(1)
}
