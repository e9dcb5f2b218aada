// internal/adapter/geodata/loader.go

package geodata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"regiodash/internal/domain/boundary"
)

// Loader reads one boundary FeatureCollection file per year
type Loader struct {
	dir     string
	pattern string
	logger  *slog.Logger
}

// NewLoader creates a loader for files named by pattern (with %d for the year) inside dir
func NewLoader(dir, pattern string, logger *slog.Logger) *Loader {
	return &Loader{
		dir:     dir,
		pattern: pattern,
		logger:  logger,
	}
}

// Path returns the file holding the boundaries of year
func (l *Loader) Path(year int) string {
	return filepath.Join(l.dir, fmt.Sprintf(l.pattern, year))
}

// Load reads the boundaries of a single year. A missing file is reported as
// boundary.ErrBoundaryUnavailable.
func (l *Loader) Load(year int) (*boundary.Collection, error) {
	path := l.Path(year)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no boundary file for %d at %s", boundary.ErrBoundaryUnavailable, year, path)
		}
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	c, err := boundary.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	return c, nil
}

// LoadYears reads the boundaries of every year. Years without a file are
// returned in missing; any other failure aborts the load.
func (l *Loader) LoadYears(ctx context.Context, years []int) (map[int]*boundary.Collection, []int, error) {
	collections := make(map[int]*boundary.Collection, len(years))
	var missing []int

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		c, err := l.Load(year)
		if errors.Is(err, boundary.ErrBoundaryUnavailable) {
			l.logger.Warn("boundary file missing", "year", year, "path", l.Path(year))
			missing = append(missing, year)
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		l.logger.Info("boundaries loaded", "year", year, "features", len(c.Features))
		collections[year] = c
	}

	return collections, missing, nil
}
