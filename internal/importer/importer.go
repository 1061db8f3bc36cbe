package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/findfun-api/internal/config"
	"github.com/alexivanou/findfun-api/internal/model"
	"github.com/alexivanou/findfun-api/internal/repository"
	"go.uber.org/zap"
)

// Result summarizes one import run
type Result struct {
	Read    int `json:"read"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Batches int `json:"batches"`
}

// Importer loads saved place search responses into the cache
type Importer struct {
	places repository.PlaceRepository
	parser *Parser
	logger *zap.Logger
}

// New creates an importer writing through places
func New(places repository.PlaceRepository, cfg config.ImporterConfig, logger *zap.Logger) *Importer {
	return &Importer{
		places: places,
		parser: NewParser(cfg.BatchSize),
		logger: logger,
	}
}

// ImportFile writes every place of path into the cache, one transaction per
// batch. Places without an fsq_id are skipped.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	res := &Result{}

	read, err := im.parser.ParseFile(path, func(batch []model.Place) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		valid := batch[:0]
		for _, p := range batch {
			if strings.TrimSpace(p.FsqID) == "" {
				res.Skipped++
				continue
			}
			valid = append(valid, p)
		}
		if len(valid) == 0 {
			return nil
		}

		if err := im.places.SavePlaces(ctx, valid); err != nil {
			return err
		}
		res.Saved += len(valid)
		res.Batches++

		im.logger.Debug("Imported batch",
			zap.Int("batch", res.Batches),
			zap.Int("places", len(valid)),
		)
		return nil
	})
	res.Read = read
	if err != nil {
		return res, fmt.Errorf("failed to import %s: %w", path, err)
	}

	im.logger.Info("Import finished",
		zap.String("file", path),
		zap.Int("saved", res.Saved),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
