package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/findfun-api/internal/catalog"
	"github.com/alexivanou/findfun-api/internal/foursquare"
	"github.com/alexivanou/findfun-api/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScopeKey identifies a discovery query in the cache: the normalized city
// and the sorted activity keys.
func ScopeKey(city string, activityKeys []string) string {
	return catalog.Normalize(city) + "|" + strings.Join(activityKeys, ",")
}

// resolveScope validates a city and activity list and returns the canonical
// city name, the sorted activity keys and their scope key.
func (s *Service) resolveScope(city string, activities []string) (string, []string, string, error) {
	city = strings.Join(strings.Fields(city), " ")
	if city == "" {
		return "", nil, "", invalidf("city is required")
	}
	keys, unknown := s.catalog.ActivityKeys(activities)
	if len(unknown) > 0 {
		return "", nil, "", invalidf("unknown activities: %s", strings.Join(unknown, ", "))
	}
	if len(keys) == 0 {
		return "", nil, "", invalidf("at least one activity is required")
	}
	if c, ok := s.catalog.City(city); ok {
		city = c.Name
	}
	return city, keys, ScopeKey(city, keys), nil
}

// ScopeSize reports how many places are cached for a city and activities
func (s *Service) ScopeSize(ctx context.Context, city string, activities []string) (int, error) {
	_, _, scope, err := s.resolveScope(city, activities)
	if err != nil {
		return 0, err
	}
	return s.placeRepo.CountScope(ctx, scope)
}

// ClearScope forgets the cached answer for a city and activities so the next
// discovery queries the remote source again. The places themselves stay.
func (s *Service) ClearScope(ctx context.Context, city string, activities []string) error {
	_, _, scope, err := s.resolveScope(city, activities)
	if err != nil {
		return err
	}
	if err := s.placeRepo.ClearScope(ctx, scope); err != nil {
		return err
	}
	s.logger.Info("scope cleared", zap.String("scope", scope))
	return nil
}

// Discover returns places for a city and a set of activities. Cached results
// for the same scope are served unless Refresh is set; otherwise the remote
// source is queried once per activity and the merged answer is written
// through to the cache.
func (s *Service) Discover(ctx context.Context, req model.DiscoverRequest) (*model.DiscoverResponse, error) {
	city, keys, scope, err := s.resolveScope(req.City, req.Activities)
	if err != nil {
		return nil, err
	}
	resp := &model.DiscoverResponse{City: city, Activities: keys}

	if !req.Refresh {
		cached, err := s.placeRepo.ListPlacesByScope(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to read cached places: %w", err)
		}
		if len(cached) > 0 {
			resp.Source = model.SourceCache
			resp.Places = cached
			return resp, nil
		}
	}

	fetched := s.fetchRemote(ctx, city, keys)
	if len(fetched) == 0 {
		// Nothing new: keep showing what the cache has
		cached, err := s.placeRepo.ListPlacesByScope(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("failed to read cached places: %w", err)
		}
		resp.Source = model.SourceCache
		resp.Places = cached
		return resp, nil
	}

	if err := s.placeRepo.SaveScope(ctx, scope, fetched); err != nil {
		return nil, fmt.Errorf("failed to cache places: %w", err)
	}
	s.logger.Info("places cached",
		zap.String("scope", scope),
		zap.Int("count", len(fetched)),
		zap.Bool("refresh", req.Refresh),
	)

	places, err := s.placeRepo.ListPlacesByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached places: %w", err)
	}
	resp.Source = model.SourceRemote
	resp.Places = places
	return resp, nil
}

// fetchRemote runs one search per activity concurrently. A failing search
// is logged and contributes nothing.
func (s *Service) fetchRemote(ctx context.Context, city string, keys []string) []model.Place {
	if s.clients.Places == nil {
		return nil
	}

	base := foursquare.SearchParams{Radius: s.opts.Radius, Limit: s.opts.Limit}
	if c, ok := s.catalog.City(city); ok {
		base.LL = c.LL()
	} else {
		base.Near = city
	}

	results := make([][]model.Place, len(keys))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		activity, _ := s.catalog.Activity(key)
		params := base
		params.Categories = activity.CategoryIDs

		eg.Go(func() error {
			places, err := s.clients.Places.Search(egCtx, params)
			if err != nil {
				s.logger.Warn("place search failed",
					zap.String("city", city),
					zap.String("activity", key),
					zap.Error(err),
				)
				return nil
			}
			results[i] = places
			return nil
		})
	}
	_ = eg.Wait()

	merged := mergePlaces(results)
	if s.opts.FetchDetails && len(merged) > 0 {
		s.enrich(ctx, merged)
	}
	return merged
}

// mergePlaces flattens per-activity results in order, keeping the first
// occurrence of each place
func mergePlaces(results [][]model.Place) []model.Place {
	seen := make(map[string]bool)
	var merged []model.Place
	for _, places := range results {
		for _, p := range places {
			if p.FsqID == "" || seen[p.FsqID] {
				continue
			}
			seen[p.FsqID] = true
			merged = append(merged, p)
		}
	}
	return merged
}

// enrich replaces search records with their detail records, at most
// DetailConcurrency requests at a time. Failed lookups keep the search record.
func (s *Service) enrich(ctx context.Context, places []model.Place) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.DetailConcurrency)

	for i := range places {
		i := i
		eg.Go(func() error {
			detail, err := s.clients.Places.Details(egCtx, places[i].FsqID, nil)
			if err != nil {
				s.logger.Warn("place details failed",
					zap.String("fsq_id", places[i].FsqID),
					zap.Error(err),
				)
				return nil
			}
			if detail == nil || detail.FsqID != places[i].FsqID {
				return nil
			}
			if detail.Distance == 0 {
				detail.Distance = places[i].Distance
			}
			places[i] = *detail
			return nil
		})
	}
	_ = eg.Wait()
}
