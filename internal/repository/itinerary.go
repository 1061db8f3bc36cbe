package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type itineraryRepository struct {
	db     *sqlx.DB
	places *placeRepository
}

type itineraryPlaceRow struct {
	ItineraryID int64  `db:"itinerary_id"`
	PlaceID     int64  `db:"place_id"`
	Position    int    `db:"position"`
	VisitTime   string `db:"visit_time"`
	Note        string `db:"note"`
}

func (r *itineraryRepository) CreateItinerary(ctx context.Context, name, date string) (*model.Itinerary, error) {
	now := r.places.now().UTC()
	q := r.db.Rebind(`INSERT INTO itineraries (name, date, created_at, updated_at)
		VALUES (?, ?, ?, ?) RETURNING id`)

	var id int64
	if err := r.db.QueryRowxContext(ctx, q, name, date, now, now).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}

	return &model.Itinerary{
		ID:        id,
		Name:      name,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
		Places:    []model.ItineraryPlace{},
	}, nil
}

func (r *itineraryRepository) UpdateItinerary(ctx context.Context, id int64, name, date string) error {
	q := r.db.Rebind("UPDATE itineraries SET name = ?, date = ?, updated_at = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, q, name, date, r.places.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update itinerary: %w", err)
	}
	return expectAffected(res)
}

func (r *itineraryRepository) DeleteItinerary(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM itineraries WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return expectAffected(res)
}

// ListItineraries returns every itinerary, most recent date first, with places
func (r *itineraryRepository) ListItineraries(ctx context.Context) ([]model.Itinerary, error) {
	var itineraries []model.Itinerary
	q := "SELECT id, name, date, created_at, updated_at FROM itineraries ORDER BY date DESC, id"
	if err := r.db.SelectContext(ctx, &itineraries, q); err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	if itineraries == nil {
		return []model.Itinerary{}, nil
	}
	if err := r.attachPlaces(ctx, itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

func (r *itineraryRepository) GetItinerary(ctx context.Context, id int64) (*model.Itinerary, error) {
	var it model.Itinerary
	q := r.db.Rebind("SELECT id, name, date, created_at, updated_at FROM itineraries WHERE id = ?")
	if err := r.db.GetContext(ctx, &it, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	list := []model.Itinerary{it}
	if err := r.attachPlaces(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// AddPlace appends a cached place to an itinerary. Adding a place that is
// already scheduled updates its visit time and note in place.
func (r *itineraryRepository) AddPlace(ctx context.Context, itineraryID int64, fsqID, visitTime, note string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists int
		err := tx.GetContext(ctx, &exists, tx.Rebind("SELECT COUNT(*) FROM itineraries WHERE id = ?"), itineraryID)
		if err != nil {
			return fmt.Errorf("failed to check itinerary: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}

		var placeID int64
		if err := tx.GetContext(ctx, &placeID, tx.Rebind("SELECT id FROM places WHERE fsq_id = ?"), fsqID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to resolve place: %w", err)
		}

		var position int
		q := tx.Rebind("SELECT COALESCE(MAX(position), 0) + 1 FROM itinerary_places WHERE itinerary_id = ?")
		if err := tx.GetContext(ctx, &position, q, itineraryID); err != nil {
			return fmt.Errorf("failed to compute position: %w", err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO itinerary_places (itinerary_id, place_id, position, visit_time, note)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (itinerary_id, place_id) DO UPDATE SET
				visit_time = excluded.visit_time,
				note = excluded.note`),
			itineraryID, placeID, position, visitTime, note)
		if err != nil {
			return fmt.Errorf("failed to add place to itinerary: %w", err)
		}

		_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE itineraries SET updated_at = ? WHERE id = ?"),
			r.places.now().UTC(), itineraryID)
		if err != nil {
			return fmt.Errorf("failed to touch itinerary: %w", err)
		}
		return nil
	})
}

func (r *itineraryRepository) RemovePlace(ctx context.Context, itineraryID int64, fsqID string) error {
	q := r.db.Rebind(`DELETE FROM itinerary_places
		WHERE itinerary_id = ? AND place_id IN (SELECT id FROM places WHERE fsq_id = ?)`)
	res, err := r.db.ExecContext(ctx, q, itineraryID, fsqID)
	if err != nil {
		return fmt.Errorf("failed to remove place from itinerary: %w", err)
	}
	return expectAffected(res)
}

func (r *itineraryRepository) attachPlaces(ctx context.Context, itineraries []model.Itinerary) error {
	ids := make([]int64, len(itineraries))
	byID := make(map[int64]*model.Itinerary, len(itineraries))
	for i := range itineraries {
		itineraries[i].Places = []model.ItineraryPlace{}
		ids[i] = itineraries[i].ID
		byID[itineraries[i].ID] = &itineraries[i]
	}

	var rows []itineraryPlaceRow
	err := forEachChunk(ids, func(chunk []int64) error {
		var batch []itineraryPlaceRow
		err := r.places.selectIn(ctx, &batch, `SELECT itinerary_id, place_id, position, visit_time, note
			FROM itinerary_places WHERE itinerary_id IN (?) ORDER BY itinerary_id, position`, chunk)
		rows = append(rows, batch...)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load itinerary places: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	placeIDs := make([]int64, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	for _, row := range rows {
		if !seen[row.PlaceID] {
			seen[row.PlaceID] = true
			placeIDs = append(placeIDs, row.PlaceID)
		}
	}
	places, err := r.places.placesByIDs(ctx, placeIDs)
	if err != nil {
		return err
	}

	for _, row := range rows {
		p, ok := places[row.PlaceID]
		if !ok {
			continue
		}
		it := byID[row.ItineraryID]
		it.Places = append(it.Places, model.ItineraryPlace{
			Position:  row.Position,
			VisitTime: row.VisitTime,
			Note:      row.Note,
			Place:     *p,
		})
	}
	return nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
