// internal/adapter/storage/region_store.go

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"regiodash/internal/domain/region"
)

// RowQuery selects variable columns, optionally narrowed to a year and/or region
type RowQuery struct {
	Columns    []string
	Year       int
	RegionCode string
}

// RegionStore reads regional key figures from postgres
type RegionStore struct {
	db    *pgxpool.Pool
	table string
}

// NewRegionStore creates a new region store
func NewRegionStore(db *pgxpool.Pool, table string) *RegionStore {
	return &RegionStore{
		db:    db,
		table: table,
	}
}

// Columns lists the columns of the key-figures table
func (s *RegionStore) Columns(ctx context.Context) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := s.db.Query(ctx, query, s.table)
	if err != nil {
		return nil, fmt.Errorf("error querying columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("error scanning column: %w", err)
		}
		columns = append(columns, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}

	return columns, nil
}

// LoadRows returns the municipality rows for the requested columns
func (s *RegionStore) LoadRows(ctx context.Context, q RowQuery) ([]region.Row, error) {
	query, args := s.buildQuery(q)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying regions: %w", err)
	}
	defer rows.Close()

	var result []region.Row
	for rows.Next() {
		var name, code *string
		var year int
		values := make([]*float64, len(q.Columns))

		dest := make([]interface{}, 0, 3+len(values))
		dest = append(dest, &name, &year, &code)
		for i := range values {
			dest = append(dest, &values[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning region row: %w", err)
		}

		// Rows without a join code cannot be placed on the map
		if code == nil || region.NormalizeCode(*code) == "" || strings.EqualFold(*code, "None") {
			continue
		}

		row := region.Row{
			Code:   region.NormalizeCode(*code),
			Year:   year,
			Values: make(map[string]*float64, len(values)),
		}
		if name != nil {
			row.Name = strings.TrimSpace(*name)
		}
		for i, col := range q.Columns {
			row.Values[col] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}

	return result, nil
}

func (s *RegionStore) buildQuery(q RowQuery) (string, []interface{}) {
	selects := []string{
		pgx.Identifier{region.ColumnName}.Sanitize(),
		pgx.Identifier{region.ColumnYear}.Sanitize(),
		pgx.Identifier{region.ColumnCode}.Sanitize(),
	}
	for _, col := range q.Columns {
		selects = append(selects, fmt.Sprintf("CAST(%s AS double precision)", pgx.Identifier{col}.Sanitize()))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s = 'region'",
		strings.Join(selects, ", "),
		pgx.Identifier{s.table}.Sanitize(),
		pgx.Identifier{region.ColumnType}.Sanitize(),
	)

	var args []interface{}
	if q.Year != 0 {
		args = append(args, q.Year)
		fmt.Fprintf(&b, " AND %s = $%d", pgx.Identifier{region.ColumnYear}.Sanitize(), len(args))
	}
	if q.RegionCode != "" {
		args = append(args, region.NormalizeCode(q.RegionCode))
		fmt.Fprintf(&b, " AND trim(%s) = $%d", pgx.Identifier{region.ColumnCode}.Sanitize(), len(args))
	}
	fmt.Fprintf(&b, " ORDER BY %s, %s",
		pgx.Identifier{region.ColumnYear}.Sanitize(),
		pgx.Identifier{region.ColumnCode}.Sanitize(),
	)

	return b.String(), args
}
