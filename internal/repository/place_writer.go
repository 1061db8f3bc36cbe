package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// childTable describes a table owned by a place. Rows are upserted on
// (place_id, keys...) so a re-ingested place keeps one row per natural key.
type childTable struct {
	name string
	keys []string
	cols []string
}

var (
	categoriesTable    = childTable{"place_categories", []string{"category_id"}, []string{"position", "name", "icon_prefix", "icon_suffix"}}
	chainsTable        = childTable{"place_chains", []string{"chain_id"}, []string{"position", "name"}}
	geocodesTable      = childTable{"place_geocodes", []string{"kind"}, []string{"latitude", "longitude"}}
	hoursTable         = childTable{"place_hours", nil, []string{"display", "is_local_holiday", "open_now"}}
	regularHoursTable  = childTable{"place_regular_hours", []string{"day", "open_time"}, []string{"close_time"}}
	locationsTable     = childTable{"place_locations", nil, []string{"address", "address_extended", "admin_region", "census_block", "country", "cross_street", "dma", "formatted_address", "locality", "po_box", "post_town", "postcode", "region"}}
	neighborhoodsTable = childTable{"place_neighborhoods", []string{"name"}, []string{"position"}}
	photosTable        = childTable{"place_photos", []string{"photo_id"}, []string{"position", "created_at", "prefix", "suffix", "width", "height"}}
	socialMediaTable   = childTable{"place_social_media", nil, []string{"facebook_id", "instagram", "twitter"}}
	statsTable         = childTable{"place_stats", nil, []string{"total_photos", "total_ratings", "total_tips"}}
	tastesTable        = childTable{"place_tastes", []string{"taste"}, []string{"position"}}
	tipsTable          = childTable{"place_tips", []string{"tip_id"}, []string{"position", "created_at", "text", "url", "lang", "agree_count", "disagree_count"}}
	featuresTable      = childTable{"place_features", []string{"feature_type", "feature_name"}, []string{"value"}}
)

// childTables lists every table owned by places, in write order
var childTables = []childTable{
	categoriesTable, chainsTable, geocodesTable, hoursTable, regularHoursTable,
	locationsTable, neighborhoodsTable, photosTable, socialMediaTable, statsTable,
	tastesTable, tipsTable, featuresTable,
}

// CacheTables returns the names of every table of the cache schema
func CacheTables() []string {
	tables := []string{"places"}
	for _, t := range childTables {
		tables = append(tables, t.name)
	}
	return append(tables, "search_scopes", "itineraries", "itinerary_places")
}

func (c childTable) upsertSQL() string {
	columns := append([]string{"place_id"}, c.keys...)
	conflict := strings.Join(columns, ", ")
	columns = append(columns, c.cols...)
	columns = append(columns, "sync_id")

	updates := make([]string, 0, len(c.cols)+1)
	for _, col := range append(append([]string{}, c.cols...), "sync_id") {
		updates = append(updates, col+" = excluded."+col)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		c.name,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
		conflict,
		strings.Join(updates, ", "),
	)
}

func (c childTable) pruneSQL() string {
	return "DELETE FROM " + c.name + " WHERE place_id = ? AND sync_id <> ?"
}

const upsertPlaceSQL = `
	INSERT INTO places (fsq_id, name, description, distance, email, tel, fax, website,
		popularity, price, rating, verified, timezone, sync_id, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (fsq_id) DO UPDATE SET
		name = excluded.name,
		description = excluded.description,
		distance = excluded.distance,
		email = excluded.email,
		tel = excluded.tel,
		fax = excluded.fax,
		website = excluded.website,
		popularity = excluded.popularity,
		price = excluded.price,
		rating = excluded.rating,
		verified = excluded.verified,
		timezone = excluded.timezone,
		sync_id = excluded.sync_id,
		fetched_at = excluded.fetched_at
	RETURNING id`

const upsertScopeSQL = `
	INSERT INTO search_scopes (scope_key, place_id, position) VALUES (?, ?, ?)
	ON CONFLICT (scope_key, place_id) DO UPDATE SET position = excluded.position`

const clearScopeSQL = "DELETE FROM search_scopes WHERE scope_key = ?"

var errMissingFsqID = errors.New("place has no fsq_id")

// batchWriter writes places inside one transaction, reusing prepared
// statements across the records of a batch.
type batchWriter struct {
	tx    *sqlx.Tx
	now   time.Time
	stmts map[string]*sqlx.Stmt
}

func newBatchWriter(tx *sqlx.Tx, now time.Time) *batchWriter {
	return &batchWriter{tx: tx, now: now, stmts: make(map[string]*sqlx.Stmt)}
}

func (w *batchWriter) stmt(ctx context.Context, query string) (*sqlx.Stmt, error) {
	if s, ok := w.stmts[query]; ok {
		return s, nil
	}
	s, err := w.tx.PreparexContext(ctx, w.tx.Rebind(query))
	if err != nil {
		return nil, err
	}
	w.stmts[query] = s
	return s, nil
}

func (w *batchWriter) exec(ctx context.Context, query string, args ...interface{}) error {
	s, err := w.stmt(ctx, query)
	if err != nil {
		return err
	}
	_, err = s.ExecContext(ctx, args...)
	return err
}

func (w *batchWriter) close() {
	for _, s := range w.stmts {
		s.Close()
	}
}

// write upserts one place and its whole nested shape. Each record gets its
// own sync id; child rows not restamped with it are stale and pruned.
func (w *batchWriter) write(ctx context.Context, p *model.Place) (int64, error) {
	if p.FsqID == "" {
		return 0, errMissingFsqID
	}
	syncID := uuid.NewString()

	s, err := w.stmt(ctx, upsertPlaceSQL)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.QueryRowxContext(ctx,
		p.FsqID, p.Name, p.Description, p.Distance, p.Email, p.Tel, p.Fax, p.Website,
		p.Popularity, p.Price, p.Rating, p.Verified, p.Timezone, syncID, w.now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert place: %w", err)
	}

	if err := w.writeChildren(ctx, id, syncID, p); err != nil {
		return 0, err
	}

	for _, table := range childTables {
		if err := w.exec(ctx, table.pruneSQL(), id, syncID); err != nil {
			return 0, fmt.Errorf("prune %s: %w", table.name, err)
		}
	}
	return id, nil
}

func (w *batchWriter) upsert(ctx context.Context, table childTable, placeID int64, syncID string, values ...interface{}) error {
	args := make([]interface{}, 0, len(values)+2)
	args = append(args, placeID)
	args = append(args, values...)
	args = append(args, syncID)
	if err := w.exec(ctx, table.upsertSQL(), args...); err != nil {
		return fmt.Errorf("upsert %s: %w", table.name, err)
	}
	return nil
}

func (w *batchWriter) writeChildren(ctx context.Context, id int64, syncID string, p *model.Place) error {
	for i, c := range p.Categories {
		if err := w.upsert(ctx, categoriesTable, id, syncID, c.ID, i, c.Name, c.Icon.Prefix, c.Icon.Suffix); err != nil {
			return err
		}
	}
	for i, c := range p.Chains {
		if err := w.upsert(ctx, chainsTable, id, syncID, c.ID, i, c.Name); err != nil {
			return err
		}
	}
	for kind, g := range p.Geocodes {
		if err := w.upsert(ctx, geocodesTable, id, syncID, kind, g.Latitude, g.Longitude); err != nil {
			return err
		}
	}
	if h := p.Hours; h != nil {
		if err := w.upsert(ctx, hoursTable, id, syncID, h.Display, h.IsLocalHoliday, h.OpenNow); err != nil {
			return err
		}
		for _, r := range h.Regular {
			if err := w.upsert(ctx, regularHoursTable, id, syncID, r.Day, r.Open, r.Close); err != nil {
				return err
			}
		}
	}
	if l := p.Location; l != nil {
		if err := w.upsert(ctx, locationsTable, id, syncID,
			l.Address, l.AddressExtended, l.AdminRegion, l.CensusBlock, l.Country, l.CrossStreet,
			l.DMA, l.FormattedAddress, l.Locality, l.POBox, l.PostTown, l.Postcode, l.Region,
		); err != nil {
			return err
		}
		for i, n := range l.Neighborhood {
			if err := w.upsert(ctx, neighborhoodsTable, id, syncID, n, i); err != nil {
				return err
			}
		}
	}
	for i, ph := range p.Photos {
		if err := w.upsert(ctx, photosTable, id, syncID, ph.ID, i, ph.CreatedAt, ph.Prefix, ph.Suffix, ph.Width, ph.Height); err != nil {
			return err
		}
	}
	if sm := p.SocialMedia; sm != nil {
		if err := w.upsert(ctx, socialMediaTable, id, syncID, sm.FacebookID, sm.Instagram, sm.Twitter); err != nil {
			return err
		}
	}
	if st := p.Stats; st != nil {
		if err := w.upsert(ctx, statsTable, id, syncID, st.TotalPhotos, st.TotalRatings, st.TotalTips); err != nil {
			return err
		}
	}
	for i, taste := range p.Tastes {
		if err := w.upsert(ctx, tastesTable, id, syncID, taste, i); err != nil {
			return err
		}
	}
	for i, t := range p.Tips {
		if err := w.upsert(ctx, tipsTable, id, syncID, t.ID, i, t.CreatedAt, t.Text, t.URL, t.Lang, t.AgreeCount, t.DisagreeCount); err != nil {
			return err
		}
	}
	for featureType, byName := range p.Features {
		for featureName, value := range byName {
			raw := string(value)
			if raw == "" {
				raw = "null"
			}
			if err := w.upsert(ctx, featuresTable, id, syncID, featureType, featureName, raw); err != nil {
				return err
			}
		}
	}
	return nil
}

// SavePlaces upserts a batch of places in a single transaction. Any failing
// record rolls back the whole batch.
func (r *placeRepository) SavePlaces(ctx context.Context, places []model.Place) error {
	return r.SaveScope(ctx, "", places)
}

// SaveScope saves places like SavePlaces and, when scopeKey is set, makes
// them the whole answer for that discovery scope in the same transaction.
func (r *placeRepository) SaveScope(ctx context.Context, scopeKey string, places []model.Place) error {
	if len(places) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		w := newBatchWriter(tx, r.now().UTC())
		defer w.close()

		if scopeKey != "" {
			if _, err := tx.ExecContext(ctx, tx.Rebind(clearScopeSQL), scopeKey); err != nil {
				return fmt.Errorf("failed to reset scope: %w", err)
			}
		}

		for i := range places {
			id, err := w.write(ctx, &places[i])
			if err != nil {
				return fmt.Errorf("failed to save place %d (%q): %w", i, places[i].FsqID, err)
			}
			if scopeKey == "" {
				continue
			}
			if err := w.exec(ctx, upsertScopeSQL, scopeKey, id, i); err != nil {
				return fmt.Errorf("failed to link place %q to scope: %w", places[i].FsqID, err)
			}
		}
		return nil
	})
}
