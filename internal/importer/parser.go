package importer

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexivanou/findfun-api/internal/model"
)

// ErrNoPlaces is returned when a zip archive holds no .json entry
var ErrNoPlaces = errors.New("no json file found in zip")

// Parser streams places out of saved place search responses. Both the API
// envelope ({"results": [...]}) and a bare array are accepted.
type Parser struct {
	batchSize int
}

// NewParser creates a parser that hands places over in batches of batchSize
func NewParser(batchSize int) *Parser {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Parser{batchSize: batchSize}
}

// ParseFile parses a .json file or the first .json entry of a .zip archive
func (p *Parser) ParseFile(path string, callback func(batch []model.Place) error) (int, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		return p.parseZip(path, callback)
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return p.Parse(file, callback)
}

func (p *Parser) parseZip(path string, callback func(batch []model.Place) error) (int, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("failed to open file in zip: %w", err)
		}
		defer rc.Close()
		return p.Parse(rc, callback)
	}

	return 0, ErrNoPlaces
}

// Parse decodes places one at a time and calls callback for every full
// batch and for the remainder. It returns the number of places handed over.
func (p *Parser) Parse(reader io.Reader, callback func(batch []model.Place) error) (int, error) {
	dec := json.NewDecoder(reader)

	tok, err := dec.Token()
	if err != nil {
		return 0, fmt.Errorf("failed to read json: %w", err)
	}

	switch tok {
	case json.Delim('['):
		return p.parseArray(dec, callback)
	case json.Delim('{'):
	default:
		return 0, fmt.Errorf("unexpected json token %v", tok)
	}

	total := 0
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return total, fmt.Errorf("failed to read json: %w", err)
		}
		key, _ := keyTok.(string)
		if key != "results" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return total, fmt.Errorf("failed to skip %q: %w", key, err)
			}
			continue
		}

		tok, err := dec.Token()
		if err != nil {
			return total, fmt.Errorf("failed to read results: %w", err)
		}
		if tok != json.Delim('[') {
			return total, fmt.Errorf("results must be an array")
		}
		n, err := p.parseArray(dec, callback)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// parseArray consumes array elements up to and including the closing bracket
func (p *Parser) parseArray(dec *json.Decoder, callback func(batch []model.Place) error) (int, error) {
	batch := make([]model.Place, 0, p.batchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := callback(batch); err != nil {
			return fmt.Errorf("batch callback error: %w", err)
		}
		total += len(batch)
		batch = make([]model.Place, 0, p.batchSize)
		return nil
	}

	for dec.More() {
		var place model.Place
		if err := dec.Decode(&place); err != nil {
			return total, fmt.Errorf("failed to decode place %d: %w", total+len(batch), err)
		}
		batch = append(batch, place)

		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return total, fmt.Errorf("failed to read json: %w", err)
	}

	return total, flush()
}
