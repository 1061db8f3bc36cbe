package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/database"
	"github.com/alexivanou/findfun-api/internal/migrations"
	"github.com/alexivanou/findfun-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRepos(t *testing.T) *repository.Container {
	t.Helper()
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "importer_" + uuid.NewString()}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.Up(db, cfg.Type))
	return repository.NewRepositories(db)
}

func TestImporter_ImportFile(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "places.json")
	body := `{"results": [
		{"fsq_id": "abc123", "name": "Blue Bottle Coffee", "categories": [{"id": 13035, "name": "Coffee Shop"}]},
		{"fsq_id": "", "name": "No id"},
		{"fsq_id": "def456", "name": "Chelsea Market"},
		{"fsq_id": "abc123", "name": "Blue Bottle Coffee (renamed)"}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	im := New(repos.Place, config.ImporterConfig{BatchSize: 2}, zap.NewNop())
	res, err := im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, &Result{Read: 4, Saved: 3, Skipped: 1, Batches: 2}, res)

	count, err := repos.Place.CountPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	place, err := repos.Place.GetPlace(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Blue Bottle Coffee (renamed)", place.Name)
	assert.Len(t, place.Categories, 0)

	// Importing the same file again leaves the cache unchanged
	_, err = im.ImportFile(ctx, path)
	require.NoError(t, err)
	count, err = repos.Place.CountPlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImporter_CanceledContext(t *testing.T) {
	repos := setupRepos(t)

	path := filepath.Join(t.TempDir(), "places.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"fsq_id": "a"}]`), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	im := New(repos.Place, config.ImporterConfig{BatchSize: 10}, zap.NewNop())
	_, err := im.ImportFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)

	count, err := repos.Place.CountPlaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
