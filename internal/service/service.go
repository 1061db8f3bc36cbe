package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/findfun-api/internal/catalog"
	"github.com/alexivanou/findfun-api/internal/foursquare"
	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/alexivanou/findfun-api/internal/repository"
	"go.uber.org/zap"
)

// ErrInvalidRequest marks validation failures of caller input
var ErrInvalidRequest = errors.New("invalid request")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// PlaceSearcher is the remote places source
type PlaceSearcher interface {
	Search(ctx context.Context, params foursquare.SearchParams) ([]model.Place, error)
	Details(ctx context.Context, fsqID string, fields []string) (*model.Place, error)
}

// CityResolver geocodes a free-text address
type CityResolver interface {
	Resolve(ctx context.Context, address string) (*model.CityInfo, error)
}

// Describer writes a short description of a city
type Describer interface {
	Describe(ctx context.Context, city string, activities []string) (string, error)
}

// Clients groups the remote collaborators. Any of them may be nil, in which
// case the service answers from the cache and the catalog alone.
type Clients struct {
	Places    PlaceSearcher
	Geocoder  CityResolver
	Describer Describer
}

// Options tunes remote discovery
type Options struct {
	Radius            int
	Limit             int
	FetchDetails      bool
	DetailConcurrency int
}

// Service provides business logic for the API
type Service struct {
	placeRepo     repository.PlaceRepository
	itineraryRepo repository.ItineraryRepository
	catalog       *catalog.Catalog
	clients       Clients
	opts          Options
	logger        *zap.Logger
}

// NewService creates a new service instance
func NewService(
	placeRepo repository.PlaceRepository,
	itineraryRepo repository.ItineraryRepository,
	cat *catalog.Catalog,
	clients Clients,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.DetailConcurrency <= 0 {
		opts.DetailConcurrency = 1
	}
	return &Service{
		placeRepo:     placeRepo,
		itineraryRepo: itineraryRepo,
		catalog:       cat,
		clients:       clients,
		opts:          opts,
		logger:        logger,
	}
}

// ListActivities returns every activity kind
func (s *Service) ListActivities() []model.Activity {
	return s.catalog.Activities()
}

// ListPlaces returns every cached place
func (s *Service) ListPlaces(ctx context.Context) ([]model.Place, error) {
	places, err := s.placeRepo.ListPlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

// GetPlace returns one cached place
func (s *Service) GetPlace(ctx context.Context, fsqID string) (*model.Place, error) {
	if fsqID == "" {
		return nil, invalidf("fsq_id is required")
	}
	place, err := s.placeRepo.GetPlace(ctx, fsqID)
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return place, nil
}

// DeletePlace removes a cached place with everything attached to it
func (s *Service) DeletePlace(ctx context.Context, fsqID string) error {
	if fsqID == "" {
		return invalidf("fsq_id is required")
	}
	if err := s.placeRepo.DeletePlace(ctx, fsqID); err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	s.logger.Info("place deleted", zap.String("fsq_id", fsqID))
	return nil
}
