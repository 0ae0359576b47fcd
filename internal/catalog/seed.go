package catalog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped JSON datasets on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based dataset loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a gzipped JSON dataset from filePath.
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Dataset, error) {
	l.logger.Info().Str("file", filePath).Msg("loading catalog seed file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open seed file")
		return nil, fmt.Errorf("failed to open seed file %s: %w", filePath, err)
	}
	defer file.Close()

	data, err := decodeDataset(ctx, file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to decode seed file")
		return nil, fmt.Errorf("failed to decode seed file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("categories", len(data.Categories)).
		Int("products", len(data.Products)).
		Msg("catalog seed file loaded")

	return data, nil
}

func decodeDataset(ctx context.Context, r io.Reader) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var data Dataset
	if err := json.NewDecoder(gz).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// LoadDataset loads every path concurrently and merges the results in the
// order given on top of DefaultDataset. Any failed path fails the whole load.
func LoadDataset(ctx context.Context, paths []string, loader Loader, logger zerolog.Logger) (*Dataset, error) {
	base := DefaultDataset()
	if len(paths) == 0 {
		return base, nil
	}

	logger = logger.With().Str("component", "seed-loader").Logger()

	type loadResult struct {
		index int
		data  *Dataset
		err   error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			data, err := loader.Load(ctx, path)
			resultChan <- loadResult{index: index, data: data, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			logger.Error().Err(result.err).Str("file", paths[i]).Msg("failed to load seed file")
			return nil, fmt.Errorf("failed to load seed file %s: %w", paths[i], result.err)
		}
		base.Merge(result.data)
	}

	logger.Info().
		Int("file_count", len(paths)).
		Int("categories", len(base.Categories)).
		Int("products", len(base.Products)).
		Msg("catalog dataset assembled")

	return base, nil
}
