package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a place, itinerary or itinerary entry does not exist
var ErrNotFound = errors.New("not found")

// PlaceRepository defines operations on the local place cache
type PlaceRepository interface {
	SavePlaces(ctx context.Context, places []model.Place) error
	SaveScope(ctx context.Context, scopeKey string, places []model.Place) error
	ListPlaces(ctx context.Context) ([]model.Place, error)
	ListPlacesByScope(ctx context.Context, scopeKey string) ([]model.Place, error)
	GetPlace(ctx context.Context, fsqID string) (*model.Place, error)
	DeletePlace(ctx context.Context, fsqID string) error
	CountPlaces(ctx context.Context) (int, error)
	CountScope(ctx context.Context, scopeKey string) (int, error)
	ClearScope(ctx context.Context, scopeKey string) error
}

// ItineraryRepository defines operations for itineraries
type ItineraryRepository interface {
	CreateItinerary(ctx context.Context, name, date string) (*model.Itinerary, error)
	UpdateItinerary(ctx context.Context, id int64, name, date string) error
	DeleteItinerary(ctx context.Context, id int64) error
	ListItineraries(ctx context.Context) ([]model.Itinerary, error)
	GetItinerary(ctx context.Context, id int64) (*model.Itinerary, error)
	AddPlace(ctx context.Context, itineraryID int64, fsqID, visitTime, note string) error
	RemovePlace(ctx context.Context, itineraryID int64, fsqID string) error
}

// Container holds all repositories
type Container struct {
	Place     PlaceRepository
	Itinerary ItineraryRepository
}

// NewRepositories creates repository implementations over the given handle.
// Queries are written with '?' placeholders and rebound per driver, so the
// same implementation serves SQLite and PostgreSQL.
func NewRepositories(db *sqlx.DB) *Container {
	places := newPlaceRepository(db)
	return &Container{
		Place:     places,
		Itinerary: &itineraryRepository{db: db, places: places},
	}
}

// IsDatabaseEmpty reports whether the place cache holds no rows
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM places"); err != nil {
		return false, fmt.Errorf("failed to count places: %w", err)
	}
	return count == 0, nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
