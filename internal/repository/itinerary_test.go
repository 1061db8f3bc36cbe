package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItineraryRepository_Lifecycle(t *testing.T) {
	repos, _ := setupRepo(t)
	ctx := context.Background()

	created, err := repos.Itinerary.CreateItinerary(ctx, "Boston weekend", "2024-06-01")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotNil(t, created.Places)

	t.Run("Empty itinerary has an empty place list", func(t *testing.T) {
		got, err := repos.Itinerary.GetItinerary(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Boston weekend", got.Name)
		assert.NotNil(t, got.Places)
		assert.Empty(t, got.Places)
	})

	t.Run("Update", func(t *testing.T) {
		require.NoError(t, repos.Itinerary.UpdateItinerary(ctx, created.ID, "Long weekend", "2024-06-02"))
		got, err := repos.Itinerary.GetItinerary(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Long weekend", got.Name)
		assert.Equal(t, "2024-06-02", got.Date)
	})

	t.Run("Missing itinerary", func(t *testing.T) {
		_, err := repos.Itinerary.GetItinerary(ctx, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repos.Itinerary.UpdateItinerary(ctx, 9999, "x", ""), ErrNotFound)
		assert.ErrorIs(t, repos.Itinerary.DeleteItinerary(ctx, 9999), ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repos.Itinerary.DeleteItinerary(ctx, created.ID))
		_, err := repos.Itinerary.GetItinerary(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestItineraryRepository_Places(t *testing.T) {
	repos, db := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repos.Place.SavePlaces(ctx, []model.Place{fullPlace("p1"), fullPlace("p2")}))
	it, err := repos.Itinerary.CreateItinerary(ctx, "Day one", "2024-07-04")
	require.NoError(t, err)

	require.NoError(t, repos.Itinerary.AddPlace(ctx, it.ID, "p2", "09:00", "breakfast nearby"))
	require.NoError(t, repos.Itinerary.AddPlace(ctx, it.ID, "p1", "13:00", ""))
	// Adding again updates the entry without moving it
	require.NoError(t, repos.Itinerary.AddPlace(ctx, it.ID, "p2", "09:30", "late start"))

	got, err := repos.Itinerary.GetItinerary(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, got.Places, 2)
	assert.Equal(t, "p2", got.Places[0].Place.FsqID)
	assert.Equal(t, "09:30", got.Places[0].VisitTime)
	assert.Equal(t, "late start", got.Places[0].Note)
	assert.Equal(t, "p1", got.Places[1].Place.FsqID)
	assert.Len(t, got.Places[1].Place.Categories, 2)
	assert.NotNil(t, got.Places[1].Place.Location)
	assert.True(t, !got.UpdatedAt.Before(got.CreatedAt))

	t.Run("Unknown place or itinerary", func(t *testing.T) {
		assert.ErrorIs(t, repos.Itinerary.AddPlace(ctx, it.ID, "missing", "", ""), ErrNotFound)
		assert.ErrorIs(t, repos.Itinerary.AddPlace(ctx, 9999, "p1", "", ""), ErrNotFound)
		assert.ErrorIs(t, repos.Itinerary.RemovePlace(ctx, it.ID, "missing"), ErrNotFound)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, repos.Itinerary.RemovePlace(ctx, it.ID, "p2"))
		got, err := repos.Itinerary.GetItinerary(ctx, it.ID)
		require.NoError(t, err)
		require.Len(t, got.Places, 1)
		assert.Equal(t, "p1", got.Places[0].Place.FsqID)

		// Removing an entry leaves the cached place alone
		_, err = repos.Place.GetPlace(ctx, "p2")
		assert.NoError(t, err)
	})

	t.Run("Deleting the itinerary removes its entries", func(t *testing.T) {
		require.NoError(t, repos.Itinerary.DeleteItinerary(ctx, it.ID))
		assert.Equal(t, 0, countRows(t, db, "itinerary_places"))
		assert.Equal(t, 2, countRows(t, db, "places"))
	})
}

func TestItineraryRepository_List(t *testing.T) {
	repos, _ := setupRepo(t)
	ctx := context.Background()

	empty, err := repos.Itinerary.ListItineraries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repos.Itinerary.(*itineraryRepository).places.now = func() time.Time { return fixed }

	require.NoError(t, repos.Place.SavePlaces(ctx, []model.Place{fullPlace("p1")}))
	older, err := repos.Itinerary.CreateItinerary(ctx, "Older", "2024-05-01")
	require.NoError(t, err)
	newer, err := repos.Itinerary.CreateItinerary(ctx, "Newer", "2024-08-15")
	require.NoError(t, err)
	require.NoError(t, repos.Itinerary.AddPlace(ctx, older.ID, "p1", "", ""))

	list, err := repos.Itinerary.ListItineraries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Empty(t, list[0].Places)
	assert.NotNil(t, list[0].Places)
	assert.Equal(t, older.ID, list[1].ID)
	require.Len(t, list[1].Places, 1)
	assert.Equal(t, 1, list[1].Places[0].Position)
	assert.True(t, fixed.Equal(list[1].CreatedAt))
}
