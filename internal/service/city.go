package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/alexivanou/findfun-api/internal/repository"
	"go.uber.org/zap"
)

// SuggestCities returns supported cities starting with query. A blank query
// lists every supported city.
func (s *Service) SuggestCities(query string) []string {
	if strings.TrimSpace(query) != "" {
		return s.catalog.SuggestCities(query)
	}
	cities := s.catalog.Cities()
	names := make([]string, 0, len(cities))
	for _, c := range cities {
		names = append(names, c.Name)
	}
	return names
}

// ResolveCity turns a free-text address into a locality. When geocoding is
// unavailable or fails, the address is matched against the catalog.
func (s *Service) ResolveCity(ctx context.Context, address string) (*model.CityInfo, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, invalidf("address is required")
	}

	if s.clients.Geocoder != nil {
		info, err := s.clients.Geocoder.Resolve(ctx, address)
		if err == nil {
			s.annotateNearest(info)
			return info, nil
		}
		s.logger.Warn("geocoding failed", zap.String("address", address), zap.Error(err))
	}

	city, ok := s.catalog.City(address)
	if !ok {
		return nil, fmt.Errorf("failed to resolve %q: %w", address, repository.ErrNotFound)
	}
	return &model.CityInfo{
		Name:     city.Name,
		Location: model.GeoPoint{Latitude: city.Latitude, Longitude: city.Longitude},
	}, nil
}

func (s *Service) annotateNearest(info *model.CityInfo) {
	if _, ok := s.catalog.City(info.Name); ok {
		return
	}
	nearest, dist, ok := s.catalog.NearestCity(info.Location.Latitude, info.Location.Longitude)
	if !ok {
		return
	}
	info.NearestSupported = nearest.Name
	info.DistanceKm = dist
}

// DescribeCity returns a description of city, generated for the chosen
// activities when a completion client is available
func (s *Service) DescribeCity(ctx context.Context, city string, activities []string) (*model.CityDescription, error) {
	city = strings.Join(strings.Fields(city), " ")
	if city == "" {
		return nil, invalidf("city is required")
	}
	if c, ok := s.catalog.City(city); ok {
		city = c.Name
	}
	keys, _ := s.catalog.ActivityKeys(activities)

	if s.clients.Describer != nil {
		text, err := s.clients.Describer.Describe(ctx, city, keys)
		if err == nil {
			return &model.CityDescription{City: city, Description: text, Generated: true}, nil
		}
		s.logger.Warn("description generation failed", zap.String("city", city), zap.Error(err))
	}

	return &model.CityDescription{City: city, Description: s.catalog.Description(city)}, nil
}
