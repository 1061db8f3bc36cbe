package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// lookupChunkSize bounds the number of ids bound into one IN (...) list
const lookupChunkSize = 500

var placeColumns = []string{
	"id", "fsq_id", "name", "description", "distance", "email", "tel", "fax", "website",
	"popularity", "price", "rating", "verified", "timezone",
}

func selectPlaceColumns(alias string) string {
	if alias == "" {
		return strings.Join(placeColumns, ", ")
	}
	cols := make([]string, len(placeColumns))
	for i, c := range placeColumns {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type placeRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func newPlaceRepository(db *sqlx.DB) *placeRepository {
	return &placeRepository{db: db, now: time.Now}
}

// ListPlaces reconstructs every cached place with its nested shape
func (r *placeRepository) ListPlaces(ctx context.Context) ([]model.Place, error) {
	q := "SELECT " + selectPlaceColumns("") + " FROM places ORDER BY id"
	var places []model.Place
	if err := r.db.SelectContext(ctx, &places, q); err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	if err := r.hydrate(ctx, places); err != nil {
		return nil, err
	}
	return nonNil(places), nil
}

// ListPlacesByScope returns the places recorded for a discovery scope in the
// order they were returned by the remote source
func (r *placeRepository) ListPlacesByScope(ctx context.Context, scopeKey string) ([]model.Place, error) {
	q := r.db.Rebind(`
		SELECT ` + selectPlaceColumns("p") + `
		FROM places p
		JOIN search_scopes s ON s.place_id = p.id
		WHERE s.scope_key = ?
		ORDER BY s.position, p.id`)
	var places []model.Place
	if err := r.db.SelectContext(ctx, &places, q, scopeKey); err != nil {
		return nil, fmt.Errorf("failed to list scope places: %w", err)
	}
	if err := r.hydrate(ctx, places); err != nil {
		return nil, err
	}
	return nonNil(places), nil
}

// GetPlace returns one cached place by its external id
func (r *placeRepository) GetPlace(ctx context.Context, fsqID string) (*model.Place, error) {
	q := r.db.Rebind("SELECT " + selectPlaceColumns("") + " FROM places WHERE fsq_id = ?")
	var place model.Place
	if err := r.db.GetContext(ctx, &place, q, fsqID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	places := []model.Place{place}
	if err := r.hydrate(ctx, places); err != nil {
		return nil, err
	}
	return &places[0], nil
}

// DeletePlace removes a place; child rows go with it through ON DELETE CASCADE
func (r *placeRepository) DeletePlace(ctx context.Context, fsqID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM places WHERE fsq_id = ?"), fsqID)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	return expectAffected(res)
}

func (r *placeRepository) CountPlaces(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM places"); err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

func (r *placeRepository) CountScope(ctx context.Context, scopeKey string) (int, error) {
	var count int
	q := r.db.Rebind("SELECT COUNT(*) FROM search_scopes WHERE scope_key = ?")
	if err := r.db.GetContext(ctx, &count, q, scopeKey); err != nil {
		return 0, fmt.Errorf("failed to count scope: %w", err)
	}
	return count, nil
}

func (r *placeRepository) ClearScope(ctx context.Context, scopeKey string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(clearScopeSQL), scopeKey); err != nil {
		return fmt.Errorf("failed to clear scope: %w", err)
	}
	return nil
}

// placesByIDs loads fully hydrated places keyed by local id
func (r *placeRepository) placesByIDs(ctx context.Context, ids []int64) (map[int64]*model.Place, error) {
	found := make(map[int64]*model.Place, len(ids))
	var places []model.Place
	err := forEachChunk(ids, func(chunk []int64) error {
		var batch []model.Place
		q := "SELECT " + selectPlaceColumns("") + " FROM places WHERE id IN (?)"
		if err := r.selectIn(ctx, &batch, q, chunk); err != nil {
			return err
		}
		places = append(places, batch...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load places: %w", err)
	}
	if err := r.hydrate(ctx, places); err != nil {
		return nil, err
	}
	for i := range places {
		found[places[i].ID] = &places[i]
	}
	return found, nil
}

// Child rows as stored

type categoryRow struct {
	PlaceID    int64  `db:"place_id"`
	CategoryID int    `db:"category_id"`
	Name       string `db:"name"`
	IconPrefix string `db:"icon_prefix"`
	IconSuffix string `db:"icon_suffix"`
}

type chainRow struct {
	PlaceID int64  `db:"place_id"`
	ChainID string `db:"chain_id"`
	Name    string `db:"name"`
}

type geocodeRow struct {
	PlaceID   int64   `db:"place_id"`
	Kind      string  `db:"kind"`
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
}

type hoursRow struct {
	PlaceID        int64  `db:"place_id"`
	Display        string `db:"display"`
	IsLocalHoliday bool   `db:"is_local_holiday"`
	OpenNow        bool   `db:"open_now"`
}

type regularHoursRow struct {
	PlaceID   int64  `db:"place_id"`
	Day       int    `db:"day"`
	OpenTime  string `db:"open_time"`
	CloseTime string `db:"close_time"`
}

type locationRow struct {
	PlaceID          int64  `db:"place_id"`
	Address          string `db:"address"`
	AddressExtended  string `db:"address_extended"`
	AdminRegion      string `db:"admin_region"`
	CensusBlock      string `db:"census_block"`
	Country          string `db:"country"`
	CrossStreet      string `db:"cross_street"`
	DMA              string `db:"dma"`
	FormattedAddress string `db:"formatted_address"`
	Locality         string `db:"locality"`
	POBox            string `db:"po_box"`
	PostTown         string `db:"post_town"`
	Postcode         string `db:"postcode"`
	Region           string `db:"region"`
}

type nameRow struct {
	PlaceID int64  `db:"place_id"`
	Name    string `db:"name"`
}

type photoRow struct {
	PlaceID   int64  `db:"place_id"`
	PhotoID   string `db:"photo_id"`
	CreatedAt string `db:"created_at"`
	Prefix    string `db:"prefix"`
	Suffix    string `db:"suffix"`
	Width     int    `db:"width"`
	Height    int    `db:"height"`
}

type socialMediaRow struct {
	PlaceID    int64  `db:"place_id"`
	FacebookID string `db:"facebook_id"`
	Instagram  string `db:"instagram"`
	Twitter    string `db:"twitter"`
}

type statsRow struct {
	PlaceID      int64 `db:"place_id"`
	TotalPhotos  int   `db:"total_photos"`
	TotalRatings int   `db:"total_ratings"`
	TotalTips    int   `db:"total_tips"`
}

type tipRow struct {
	PlaceID       int64  `db:"place_id"`
	TipID         string `db:"tip_id"`
	CreatedAt     string `db:"created_at"`
	Text          string `db:"text"`
	URL           string `db:"url"`
	Lang          string `db:"lang"`
	AgreeCount    int    `db:"agree_count"`
	DisagreeCount int    `db:"disagree_count"`
}

type featureRow struct {
	PlaceID     int64  `db:"place_id"`
	FeatureType string `db:"feature_type"`
	FeatureName string `db:"feature_name"`
	Value       string `db:"value"`
}

// hydrate fills the nested collections of places with one query per child
// table per chunk of ids, grouping rows in memory by place_id.
func (r *placeRepository) hydrate(ctx context.Context, places []model.Place) error {
	if len(places) == 0 {
		return nil
	}

	index := make(map[int64]*model.Place, len(places))
	ids := make([]int64, len(places))
	for i := range places {
		p := &places[i]
		p.Categories = []model.Category{}
		p.Chains = []model.Chain{}
		p.Geocodes = map[string]model.GeoPoint{}
		p.Photos = []model.Photo{}
		p.Tastes = []string{}
		p.Tips = []model.Tip{}
		p.Features = model.Features{}
		index[p.ID] = p
		ids[i] = p.ID
	}

	err := forEachChunk(ids, func(chunk []int64) error {
		return r.hydrateChunk(ctx, index, chunk)
	})
	if err != nil {
		return fmt.Errorf("failed to load place details: %w", err)
	}
	return nil
}

func (r *placeRepository) hydrateChunk(ctx context.Context, index map[int64]*model.Place, ids []int64) error {
	var categories []categoryRow
	if err := r.selectIn(ctx, &categories, `SELECT place_id, category_id, name, icon_prefix, icon_suffix
		FROM place_categories WHERE place_id IN (?) ORDER BY place_id, position`, ids); err != nil {
		return err
	}
	for _, row := range categories {
		p := index[row.PlaceID]
		p.Categories = append(p.Categories, model.Category{
			ID:   row.CategoryID,
			Name: row.Name,
			Icon: model.Icon{Prefix: row.IconPrefix, Suffix: row.IconSuffix},
		})
	}

	var chains []chainRow
	if err := r.selectIn(ctx, &chains, `SELECT place_id, chain_id, name
		FROM place_chains WHERE place_id IN (?) ORDER BY place_id, position`, ids); err != nil {
		return err
	}
	for _, row := range chains {
		p := index[row.PlaceID]
		p.Chains = append(p.Chains, model.Chain{ID: row.ChainID, Name: row.Name})
	}

	var geocodes []geocodeRow
	if err := r.selectIn(ctx, &geocodes, `SELECT place_id, kind, latitude, longitude
		FROM place_geocodes WHERE place_id IN (?)`, ids); err != nil {
		return err
	}
	for _, row := range geocodes {
		index[row.PlaceID].Geocodes[row.Kind] = model.GeoPoint{Latitude: row.Latitude, Longitude: row.Longitude}
	}

	var hours []hoursRow
	if err := r.selectIn(ctx, &hours, `SELECT place_id, display, is_local_holiday, open_now
		FROM place_hours WHERE place_id IN (?)`, ids); err != nil {
		return err
	}
	for _, row := range hours {
		index[row.PlaceID].Hours = &model.Hours{
			Display:        row.Display,
			IsLocalHoliday: row.IsLocalHoliday,
			OpenNow:        row.OpenNow,
			Regular:        []model.RegularHours{},
		}
	}

	var regular []regularHoursRow
	if err := r.selectIn(ctx, &regular, `SELECT place_id, day, open_time, close_time
		FROM place_regular_hours WHERE place_id IN (?) ORDER BY place_id, day, open_time`, ids); err != nil {
		return err
	}
	for _, row := range regular {
		if h := index[row.PlaceID].Hours; h != nil {
			h.Regular = append(h.Regular, model.RegularHours{Day: row.Day, Open: row.OpenTime, Close: row.CloseTime})
		}
	}

	var locations []locationRow
	if err := r.selectIn(ctx, &locations, `SELECT place_id, address, address_extended, admin_region, census_block,
		country, cross_street, dma, formatted_address, locality, po_box, post_town, postcode, region
		FROM place_locations WHERE place_id IN (?)`, ids); err != nil {
		return err
	}
	for _, row := range locations {
		index[row.PlaceID].Location = &model.Location{
			Address:          row.Address,
			AddressExtended:  row.AddressExtended,
			AdminRegion:      row.AdminRegion,
			CensusBlock:      row.CensusBlock,
			Country:          row.Country,
			CrossStreet:      row.CrossStreet,
			DMA:              row.DMA,
			FormattedAddress: row.FormattedAddress,
			Locality:         row.Locality,
			Neighborhood:     []string{},
			POBox:            row.POBox,
			PostTown:         row.PostTown,
			Postcode:         row.Postcode,
			Region:           row.Region,
		}
	}

	var neighborhoods []nameRow
	if err := r.selectIn(ctx, &neighborhoods, `SELECT place_id, name
		FROM place_neighborhoods WHERE place_id IN (?) ORDER BY place_id, position`, ids); err != nil {
		return err
	}
	for _, row := range neighborhoods {
		if l := index[row.PlaceID].Location; l != nil {
			l.Neighborhood = append(l.Neighborhood, row.Name)
		}
	}

	var photos []photoRow
	if err := r.selectIn(ctx, &photos, `SELECT place_id, photo_id, created_at, prefix, suffix, width, height
		FROM place_photos WHERE place_id IN (?) ORDER BY place_id, position`, ids); err != nil {
		return err
	}
	for _, row := range photos {
		p := index[row.PlaceID]
		p.Photos = append(p.Photos, model.Photo{
			ID:        row.PhotoID,
			CreatedAt: row.CreatedAt,
			Prefix:    row.Prefix,
			Suffix:    row.Suffix,
			Width:     row.Width,
			Height:    row.Height,
		})
	}

	var social []socialMediaRow
	if err := r.selectIn(ctx, &social, `SELECT place_id, facebook_id, instagram, twitter
		FROM place_social_media WHERE place_id IN (?)`, ids); err != nil {
		return err
	}
	for _, row := range social {
		index[row.PlaceID].SocialMedia = &model.SocialMedia{FacebookID: row.FacebookID, Instagram: row.Instagram, Twitter: row.Twitter}
	}

	var stats []statsRow
	if err := r.selectIn(ctx, &stats, `SELECT place_id, total_photos, total_ratings, total_tips
		FROM place_stats WHERE place_id IN (?)`, ids); err != nil {
		return err
	}
	for _, row := range stats {
		index[row.PlaceID].Stats = &model.PlaceStats{TotalPhotos: row.TotalPhotos, TotalRatings: row.TotalRatings, TotalTips: row.TotalTips}
	}

	var tastes []nameRow
	if err := r.selectIn(ctx, &tastes, `SELECT place_id, taste AS name
		FROM place_tastes WHERE place_id IN (?) ORDER BY place_id, position`, ids); err != nil {
		return err
	}
	for _, row := range tastes {
		p := index[row.PlaceID]
		p.Tastes = append(p.Tastes, row.Name)
	}

	var tips []tipRow
	if err := r.selectIn(ctx, &tips, `SELECT place_id, tip_id, created_at, text, url, lang, agree_count, disagree_count
		FROM place_tips WHERE place_id IN (?) ORDER BY place_id, position`, ids); err != nil {
		return err
	}
	for _, row := range tips {
		p := index[row.PlaceID]
		p.Tips = append(p.Tips, model.Tip{
			ID:            row.TipID,
			CreatedAt:     row.CreatedAt,
			Text:          row.Text,
			URL:           row.URL,
			Lang:          row.Lang,
			AgreeCount:    row.AgreeCount,
			DisagreeCount: row.DisagreeCount,
		})
	}

	var features []featureRow
	if err := r.selectIn(ctx, &features, `SELECT place_id, feature_type, feature_name, value
		FROM place_features WHERE place_id IN (?)`, ids); err != nil {
		return err
	}
	for _, row := range features {
		p := index[row.PlaceID]
		byName, ok := p.Features[row.FeatureType]
		if !ok {
			byName = make(map[string]json.RawMessage)
			p.Features[row.FeatureType] = byName
		}
		byName[row.FeatureName] = json.RawMessage(row.Value)
	}

	return nil
}

func (r *placeRepository) selectIn(ctx context.Context, dest interface{}, query string, ids []int64) error {
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return r.db.SelectContext(ctx, dest, r.db.Rebind(q), args...)
}

func forEachChunk(ids []int64, fn func(chunk []int64) error) error {
	for i := 0; i < len(ids); i += lookupChunkSize {
		end := i + lookupChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := fn(ids[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(places []model.Place) []model.Place {
	if places == nil {
		return []model.Place{}
	}
	return places
}
