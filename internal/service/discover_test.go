package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alexivanou/findfun-api/internal/catalog"
	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/database"
	"github.com/alexivanou/findfun-api/internal/foursquare"
	"github.com/alexivanou/findfun-api/internal/migrations"
	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/alexivanou/findfun-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

func withCategory(id int) interface{} {
	return mock.MatchedBy(func(p foursquare.SearchParams) bool {
		return len(p.Categories) > 0 && p.Categories[0] == id
	})
}

func fsqIDs(places []model.Place) []string {
	ids := make([]string, len(places))
	for i, p := range places {
		ids[i] = p.FsqID
	}
	return ids
}

func TestScopeKey(t *testing.T) {
	assert.Equal(t, "new york|food,museum", ScopeKey("  New   York ", []string{"food", "museum"}))
}

func TestService_Discover(t *testing.T) {
	const scope = "boston|food,museum"
	food := []model.Place{{FsqID: "a", Name: "Cafe A"}, {FsqID: "b", Name: "Bistro B"}}
	museum := []model.Place{{FsqID: "b", Name: "Bistro B (museum cafe)"}, {FsqID: "c", Name: "Museum C"}, {FsqID: "", Name: "No id"}}
	saved := []model.Place{{FsqID: "a"}, {FsqID: "b"}, {FsqID: "c"}}

	tests := []struct {
		name           string
		req            model.DiscoverRequest
		setupMocks     func(*MockPlaceRepository, *MockPlaceSearcher)
		expectedError  error
		expectedSource string
		expectedIDs    []string
	}{
		{
			name: "cache hit",
			req:  model.DiscoverRequest{City: "boston", Activities: []string{"Museum", "food"}},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				repo.On("ListPlacesByScope", mock.Anything, scope).Return([]model.Place{{FsqID: "cached"}}, nil)
			},
			expectedSource: model.SourceCache,
			expectedIDs:    []string{"cached"},
		},
		{
			name: "cache miss fetches and writes through",
			req:  model.DiscoverRequest{City: "Boston", Activities: []string{"food", "museum"}},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				repo.On("ListPlacesByScope", mock.Anything, scope).Return([]model.Place{}, nil).Once()
				searcher.On("Search", mock.Anything, withCategory(13000)).Return(food, nil)
				searcher.On("Search", mock.Anything, withCategory(10027)).Return(museum, nil)
				repo.On("SaveScope", mock.Anything, scope, mock.MatchedBy(func(p []model.Place) bool {
					return assert.ObjectsAreEqual([]string{"a", "b", "c"}, fsqIDs(p)) && p[1].Name == "Bistro B"
				})).Return(nil)
				repo.On("ListPlacesByScope", mock.Anything, scope).Return(saved, nil).Once()
			},
			expectedSource: model.SourceRemote,
			expectedIDs:    []string{"a", "b", "c"},
		},
		{
			name: "failed activity degrades to empty",
			req:  model.DiscoverRequest{City: "Boston", Activities: []string{"food", "museum"}},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				repo.On("ListPlacesByScope", mock.Anything, scope).Return([]model.Place{}, nil).Once()
				searcher.On("Search", mock.Anything, withCategory(13000)).Return(nil, errors.New("timeout"))
				searcher.On("Search", mock.Anything, withCategory(10027)).Return(museum, nil)
				repo.On("SaveScope", mock.Anything, scope, mock.MatchedBy(func(p []model.Place) bool {
					return assert.ObjectsAreEqual([]string{"b", "c"}, fsqIDs(p))
				})).Return(nil)
				repo.On("ListPlacesByScope", mock.Anything, scope).Return(saved[1:], nil).Once()
			},
			expectedSource: model.SourceRemote,
			expectedIDs:    []string{"b", "c"},
		},
		{
			name: "all remote calls fail falls back to cache",
			req:  model.DiscoverRequest{City: "Boston", Activities: []string{"food", "museum"}, Refresh: true},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				searcher.On("Search", mock.Anything, mock.Anything).Return(nil, foursquare.ErrUnauthorized)
				repo.On("ListPlacesByScope", mock.Anything, scope).Return([]model.Place{{FsqID: "stale"}}, nil).Once()
			},
			expectedSource: model.SourceCache,
			expectedIDs:    []string{"stale"},
		},
		{
			name: "refresh skips the cache read",
			req:  model.DiscoverRequest{City: "Boston", Activities: []string{"food"}, Refresh: true},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				searcher.On("Search", mock.Anything, withCategory(13000)).Return(food, nil)
				repo.On("SaveScope", mock.Anything, "boston|food", mock.Anything).Return(nil)
				repo.On("ListPlacesByScope", mock.Anything, "boston|food").Return(food, nil).Once()
			},
			expectedSource: model.SourceRemote,
			expectedIDs:    []string{"a", "b"},
		},
		{
			name: "unknown city searches near it",
			req:  model.DiscoverRequest{City: "Springfield", Activities: []string{"park"}},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				repo.On("ListPlacesByScope", mock.Anything, "springfield|park").Return([]model.Place{}, nil)
				searcher.On("Search", mock.Anything, mock.MatchedBy(func(p foursquare.SearchParams) bool {
					return p.Near == "Springfield" && p.LL == ""
				})).Return([]model.Place{}, nil)
			},
			expectedSource: model.SourceCache,
			expectedIDs:    []string{},
		},
		{
			name: "cache read failure propagates",
			req:  model.DiscoverRequest{City: "Boston", Activities: []string{"food"}},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				repo.On("ListPlacesByScope", mock.Anything, "boston|food").Return(nil, errors.New("disk I/O error"))
			},
			expectedError: errors.New("disk I/O error"),
		},
		{
			name: "cache write failure propagates",
			req:  model.DiscoverRequest{City: "Boston", Activities: []string{"food"}, Refresh: true},
			setupMocks: func(repo *MockPlaceRepository, searcher *MockPlaceSearcher) {
				searcher.On("Search", mock.Anything, mock.Anything).Return(food, nil)
				repo.On("SaveScope", mock.Anything, "boston|food", mock.Anything).Return(errors.New("constraint failed"))
			},
			expectedError: errors.New("constraint failed"),
		},
		{
			name:          "missing city",
			req:           model.DiscoverRequest{City: "  ", Activities: []string{"food"}},
			expectedError: ErrInvalidRequest,
		},
		{
			name:          "unknown activity",
			req:           model.DiscoverRequest{City: "Boston", Activities: []string{"food", "bowling"}},
			expectedError: ErrInvalidRequest,
		},
		{
			name:          "no activities",
			req:           model.DiscoverRequest{City: "Boston"},
			expectedError: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

			repo := new(MockPlaceRepository)
			searcher := new(MockPlaceSearcher)
			if tt.setupMocks != nil {
				tt.setupMocks(repo, searcher)
			}

			svc := NewService(repo, new(MockItineraryRepository), testCatalog(t),
				Clients{Places: searcher}, Options{Radius: 1000, Limit: 20}, zap.NewNop())

			resp, err := svc.Discover(context.Background(), tt.req)

			if tt.expectedError != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedError, ErrInvalidRequest) {
					assert.ErrorIs(t, err, ErrInvalidRequest)
				} else {
					assert.Contains(t, err.Error(), tt.expectedError.Error())
				}
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedSource, resp.Source)
				assert.Equal(t, tt.expectedIDs, fsqIDs(resp.Places))
			}
			repo.AssertExpectations(t)
			searcher.AssertExpectations(t)
		})
	}
}

func TestService_DiscoverSearchParams(t *testing.T) {
	repo := new(MockPlaceRepository)
	searcher := new(MockPlaceSearcher)

	repo.On("ListPlacesByScope", mock.Anything, "boston|theatre").Return([]model.Place{}, nil)
	searcher.On("Search", mock.Anything, foursquare.SearchParams{
		LL:         "42.3601,-71.0589",
		Radius:     1500,
		Limit:      10,
		Categories: []int{10043},
	}).Return([]model.Place{}, nil)

	svc := NewService(repo, new(MockItineraryRepository), testCatalog(t),
		Clients{Places: searcher}, Options{Radius: 1500, Limit: 10}, zap.NewNop())

	resp, err := svc.Discover(context.Background(), model.DiscoverRequest{City: "BOSTON", Activities: []string{"theatre"}})
	require.NoError(t, err)
	assert.Equal(t, "Boston", resp.City)
	assert.Equal(t, []string{"theatre"}, resp.Activities)
	searcher.AssertExpectations(t)
}

func TestService_DiscoverWithDetails(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	repo := new(MockPlaceRepository)
	searcher := new(MockPlaceSearcher)

	search := []model.Place{
		{FsqID: "a", Name: "A", Distance: 50},
		{FsqID: "b", Name: "B", Distance: 80},
		{FsqID: "c", Name: "C", Distance: 90},
	}
	searcher.On("Search", mock.Anything, mock.Anything).Return(search, nil)
	searcher.On("Details", mock.Anything, "a", mock.Anything).Return(&model.Place{FsqID: "a", Name: "A", Description: "Detailed"}, nil)
	searcher.On("Details", mock.Anything, "b", mock.Anything).Return(nil, errors.New("rate limited"))
	searcher.On("Details", mock.Anything, "c", mock.Anything).Return(&model.Place{FsqID: "c", Name: "C", Tastes: []string{"cozy"}}, nil)

	var written []model.Place
	repo.On("SaveScope", mock.Anything, "boston|food", mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(2).([]model.Place)
	}).Return(nil)
	repo.On("ListPlacesByScope", mock.Anything, "boston|food").Return(search, nil)

	svc := NewService(repo, new(MockItineraryRepository), testCatalog(t),
		Clients{Places: searcher}, Options{FetchDetails: true, DetailConcurrency: 2}, zap.NewNop())

	_, err := svc.Discover(context.Background(), model.DiscoverRequest{City: "Boston", Activities: []string{"food"}, Refresh: true})
	require.NoError(t, err)

	require.Len(t, written, 3)
	assert.Equal(t, "Detailed", written[0].Description)
	assert.Equal(t, 50, written[0].Distance)
	assert.Equal(t, "B", written[1].Name)
	assert.Empty(t, written[1].Description)
	assert.Equal(t, []string{"cozy"}, written[2].Tastes)
	searcher.AssertNumberOfCalls(t, "Details", 3)
}

func TestService_DiscoverWithoutPlacesClient(t *testing.T) {
	repo := new(MockPlaceRepository)
	repo.On("ListPlacesByScope", mock.Anything, "boston|food").Return([]model.Place{}, nil)

	svc := NewService(repo, new(MockItineraryRepository), testCatalog(t), Clients{}, Options{}, zap.NewNop())

	resp, err := svc.Discover(context.Background(), model.DiscoverRequest{City: "Boston", Activities: []string{"food"}})
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, resp.Source)
	assert.Empty(t, resp.Places)
	repo.AssertNotCalled(t, "SaveScope", mock.Anything, mock.Anything, mock.Anything)
}

// Exercises the remote mapping and the cache together over HTTP and SQLite
func TestService_DiscoverEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "service_" + uuid.NewString()}
	db, err := database.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(db, cfg.Type))
	repos := repository.NewRepositories(db)

	body := `{"results": [{"fsq_id": "abc123", "name": "Sample Cafe",
		"categories": [{"id": 13065, "name": "Food"}, {"id": 13035, "name": "Coffee"}],
		"geocodes": {"main": {"latitude": 42.36, "longitude": -71.06}}}]}`
	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := foursquare.NewClient(config.FoursquareConfig{APIKey: "k", BaseURL: srv.URL}, zap.NewNop())
	svc := NewService(repos.Place, repos.Itinerary, testCatalog(t), Clients{Places: client}, Options{Radius: 1000}, zap.NewNop())

	req := model.DiscoverRequest{City: "Boston", Activities: []string{"food"}}
	first, err := svc.Discover(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.SourceRemote, first.Source)
	require.Len(t, first.Places, 1)
	assert.Equal(t, "Sample Cafe", first.Places[0].Name)
	assert.Len(t, first.Places[0].Categories, 2)
	assert.Equal(t, 42.36, first.Places[0].Geocodes["main"].Latitude)

	second, err := svc.Discover(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, second.Source)
	assert.Equal(t, first.Places, second.Places)
	mu.Lock()
	assert.Equal(t, 1, calls)
	// An empty remote answer writes nothing and leaves the cache as it was
	body = `{"results": []}`
	mu.Unlock()

	refreshed, err := svc.Discover(ctx, model.DiscoverRequest{City: "Boston", Activities: []string{"food"}, Refresh: true})
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, refreshed.Source)
	assert.Len(t, refreshed.Places, 1)

	count, err := repos.Place.CountPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_Scope(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPlaceRepository)
	repo.On("CountScope", mock.Anything, "boston|food,museum").Return(4, nil)
	repo.On("ClearScope", mock.Anything, "boston|food,museum").Return(nil)
	svc := NewService(repo, new(MockItineraryRepository), testCatalog(t), Clients{}, Options{}, zap.NewNop())

	n, err := svc.ScopeSize(ctx, " boston ", []string{"Museum", "food", "food"})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, svc.ClearScope(ctx, "BOSTON", []string{"museum", "food"}))

	_, err = svc.ScopeSize(ctx, "", []string{"food"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	err = svc.ClearScope(ctx, "Boston", []string{"bowling"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	err = svc.ClearScope(ctx, "Boston", nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	repo.AssertExpectations(t)
}
