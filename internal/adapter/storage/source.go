// internal/adapter/storage/source.go

package storage

import (
	"context"

	"regiodash/internal/domain/region"
)

// Source returns regional key-figure rows for a set of columns, optionally
// narrowed to a year and/or region
type Source interface {
	Columns(ctx context.Context) ([]string, error)
	LoadRows(ctx context.Context, q RowQuery) ([]region.Row, error)
}

var (
	_ Source = (*RegionStore)(nil)
	_ Source = (*CSVSource)(nil)
)
