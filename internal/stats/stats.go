// Package stats reports on the contents of the place cache.
package stats

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/repository"
	"github.com/jmoiron/sqlx"
)

// topLocalities bounds Cache.TopLocalities
const topLocalities = 5

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Cache     CacheStats    `json:"cache"`
	Database  DatabaseStats `json:"database"`
	Runtime   RuntimeStats  `json:"runtime"`
}

// CacheStats describes what discovery has accumulated
type CacheStats struct {
	Places         int64           `json:"places"`
	Scopes         int64           `json:"scopes"`
	UnscopedPlaces int64           `json:"unscoped_places"`
	Itineraries    int64           `json:"itineraries"`
	OldestFetch    *time.Time      `json:"oldest_fetch,omitempty"`
	NewestFetch    *time.Time      `json:"newest_fetch,omitempty"`
	TopLocalities  []LocalityCount `json:"top_localities"`
}

type LocalityCount struct {
	Locality string `json:"locality" db:"locality"`
	Places   int64  `json:"places" db:"places"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	HeapAlloc     uint64 `json:"heap_alloc"`
	NumGC         uint32 `json:"num_gc"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type Collector struct {
	db        *sqlx.DB
	config    config.DBConfig
	startTime time.Time
}

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.Database = *dbStats

	cache, err := c.collectCacheStats(ctx, dbStats.TableStats)
	if err != nil {
		return nil, err
	}
	stats.Cache = *cache
	stats.Runtime = c.collectRuntimeStats()

	return stats, nil
}

func (c *Collector) collectCacheStats(ctx context.Context, tables []TableStat) (*CacheStats, error) {
	cache := &CacheStats{TopLocalities: []LocalityCount{}}
	for _, ts := range tables {
		switch ts.Name {
		case "places":
			cache.Places = ts.RowCount
		case "itineraries":
			cache.Itineraries = ts.RowCount
		}
	}

	if err := c.db.GetContext(ctx, &cache.Scopes, "SELECT COUNT(DISTINCT scope_key) FROM search_scopes"); err != nil {
		return nil, fmt.Errorf("failed to count scopes: %w", err)
	}
	err := c.db.GetContext(ctx, &cache.UnscopedPlaces,
		"SELECT COUNT(*) FROM places WHERE id NOT IN (SELECT place_id FROM search_scopes)")
	if err != nil {
		return nil, fmt.Errorf("failed to count unscoped places: %w", err)
	}

	// Selecting the column itself keeps its declared type, so sqlite hands
	// back a time.Time where MIN() would give a string.
	if cache.OldestFetch, err = c.fetchedAt(ctx, "ASC"); err != nil {
		return nil, err
	}
	if cache.NewestFetch, err = c.fetchedAt(ctx, "DESC"); err != nil {
		return nil, err
	}

	err = c.db.SelectContext(ctx, &cache.TopLocalities, c.db.Rebind(`
		SELECT locality, COUNT(*) AS places
		FROM place_locations
		WHERE locality <> ''
		GROUP BY locality
		ORDER BY places DESC, locality
		LIMIT ?`), topLocalities)
	if err != nil {
		return nil, fmt.Errorf("failed to count localities: %w", err)
	}

	return cache, nil
}

func (c *Collector) fetchedAt(ctx context.Context, order string) (*time.Time, error) {
	var times []time.Time
	if err := c.db.SelectContext(ctx, &times, "SELECT fetched_at FROM places ORDER BY fetched_at "+order+" LIMIT 1"); err != nil {
		return nil, fmt.Errorf("failed to read fetch times: %w", err)
	}
	if len(times) == 0 {
		return nil, nil
	}
	t := times[0].UTC()
	return &t, nil
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{
		Type: string(c.config.Type),
	}

	if totalSize, err := c.getDatabaseSize(ctx); err == nil {
		stats.SizeBytes = totalSize
	}

	tableStats, err := c.getTableStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.TableStats = tableStats

	for _, ts := range tableStats {
		stats.TotalRecords += ts.RowCount
	}

	return stats, nil
}

func (c *Collector) getDatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	var err error

	if c.config.Type == config.DBTypePostgreSQL {
		err = c.db.GetContext(ctx, &size, "SELECT pg_database_size(current_database())")
	} else {
		err = c.db.GetContext(ctx, &size, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	}

	if err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) getTableStats(ctx context.Context) ([]TableStat, error) {
	tables := repository.CacheTables()
	stats := make([]TableStat, 0, len(tables))

	for _, table := range tables {
		stat, err := c.getTableStat(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats = append(stats, *stat)
	}

	return stats, nil
}

func (c *Collector) getTableStat(ctx context.Context, tableName string) (*TableStat, error) {
	stat := &TableStat{Name: tableName}

	if err := c.db.GetContext(ctx, &stat.RowCount, "SELECT COUNT(*) FROM "+tableName); err != nil {
		return nil, err
	}

	if c.config.Type == config.DBTypePostgreSQL {
		_ = c.db.GetContext(ctx, &stat.SizeBytes, `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`, tableName)
	} else {
		// dbstat is only present when sqlite is built with SQLITE_ENABLE_DBSTAT_VTAB
		_ = c.db.GetContext(ctx, &stat.SizeBytes, `SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`, tableName)
	}

	return stat, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAlloc:     m.HeapAlloc,
		NumGC:         m.NumGC,
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
