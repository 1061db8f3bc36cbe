package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexivanou/findfun-api/internal/model"
	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	visitTimeLayout = "15:04"
	maxNameLength   = 200
)

func validateItinerary(req model.ItineraryRequest) (model.ItineraryRequest, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Date = strings.TrimSpace(req.Date)
	if req.Name == "" {
		return req, invalidf("name is required")
	}
	if len(req.Name) > maxNameLength {
		return req, invalidf("name must be at most %d characters", maxNameLength)
	}
	if req.Date != "" {
		if _, err := time.Parse(dateLayout, req.Date); err != nil {
			return req, invalidf("date must be in YYYY-MM-DD format")
		}
	}
	return req, nil
}

// CreateItinerary creates an empty itinerary
func (s *Service) CreateItinerary(ctx context.Context, req model.ItineraryRequest) (*model.Itinerary, error) {
	req, err := validateItinerary(req)
	if err != nil {
		return nil, err
	}
	it, err := s.itineraryRepo.CreateItinerary(ctx, req.Name, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	s.logger.Info("itinerary created", zap.Int64("id", it.ID), zap.String("name", it.Name))
	return it, nil
}

// UpdateItinerary renames or re-dates an itinerary
func (s *Service) UpdateItinerary(ctx context.Context, id int64, req model.ItineraryRequest) (*model.Itinerary, error) {
	req, err := validateItinerary(req)
	if err != nil {
		return nil, err
	}
	if err := s.itineraryRepo.UpdateItinerary(ctx, id, req.Name, req.Date); err != nil {
		return nil, fmt.Errorf("failed to update itinerary: %w", err)
	}
	return s.GetItinerary(ctx, id)
}

// DeleteItinerary removes an itinerary; its places stay cached
func (s *Service) DeleteItinerary(ctx context.Context, id int64) error {
	if err := s.itineraryRepo.DeleteItinerary(ctx, id); err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return nil
}

// ListItineraries returns every itinerary with its places
func (s *Service) ListItineraries(ctx context.Context) ([]model.Itinerary, error) {
	list, err := s.itineraryRepo.ListItineraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	return list, nil
}

// GetItinerary returns one itinerary with its places
func (s *Service) GetItinerary(ctx context.Context, id int64) (*model.Itinerary, error) {
	it, err := s.itineraryRepo.GetItinerary(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return it, nil
}

// AddItineraryPlace schedules a cached place in an itinerary
func (s *Service) AddItineraryPlace(ctx context.Context, id int64, req model.ItineraryPlaceRequest) (*model.Itinerary, error) {
	req.FsqID = strings.TrimSpace(req.FsqID)
	req.VisitTime = strings.TrimSpace(req.VisitTime)
	if req.FsqID == "" {
		return nil, invalidf("fsq_id is required")
	}
	if req.VisitTime != "" {
		if _, err := time.Parse(visitTimeLayout, req.VisitTime); err != nil {
			return nil, invalidf("visit_time must be in HH:MM format")
		}
	}

	if err := s.itineraryRepo.AddPlace(ctx, id, req.FsqID, req.VisitTime, strings.TrimSpace(req.Note)); err != nil {
		return nil, fmt.Errorf("failed to add place to itinerary: %w", err)
	}
	return s.GetItinerary(ctx, id)
}

// RemoveItineraryPlace unschedules a place from an itinerary
func (s *Service) RemoveItineraryPlace(ctx context.Context, id int64, fsqID string) error {
	if fsqID == "" {
		return invalidf("fsq_id is required")
	}
	if err := s.itineraryRepo.RemovePlace(ctx, id, fsqID); err != nil {
		return fmt.Errorf("failed to remove place from itinerary: %w", err)
	}
	return nil
}
