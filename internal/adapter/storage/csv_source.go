// internal/adapter/storage/csv_source.go

package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"regiodash/internal/domain/region"
)

// ErrMissingColumn is returned when the CSV header lacks a requested column
var ErrMissingColumn = errors.New("missing column")

// CSVSource reads regional key figures from a CBS csv export
type CSVSource struct {
	path string
}

// NewCSVSource creates a csv backed row source
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Columns lists the normalised header of the file
func (s *CSVSource) Columns(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", s.path, err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	for i, h := range header {
		header[i] = SnakeCase(h)
	}
	return header, nil
}

// LoadRows returns the municipality rows for the requested columns
func (s *CSVSource) LoadRows(ctx context.Context, q RowQuery) ([]region.Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", s.path, err)
	}
	defer f.Close()

	return ReadRows(ctx, f, q)
}

// ReadRows parses csv rows from r
func ReadRows(ctx context.Context, r io.Reader, q RowQuery) ([]region.Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[SnakeCase(h)] = i
	}

	need := append([]string{region.ColumnName, region.ColumnYear, region.ColumnCode}, q.Columns...)
	for _, col := range need {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	wantCode := region.NormalizeCode(q.RegionCode)

	var rows []region.Row
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name := strings.TrimSpace(record[index[region.ColumnName]])
		if region.Classify(name) != region.KindRegion {
			continue
		}

		code := region.NormalizeCode(record[index[region.ColumnCode]])
		if code == "" || strings.EqualFold(code, "None") {
			continue
		}
		if wantCode != "" && code != wantCode {
			continue
		}

		year, err := parseYear(record[index[region.ColumnYear]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if q.Year != 0 && year != q.Year {
			continue
		}

		row := region.Row{
			Code:   code,
			Name:   name,
			Year:   year,
			Values: make(map[string]*float64, len(q.Columns)),
		}
		for _, col := range q.Columns {
			row.Values[col] = parseValue(record[index[col]])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// SnakeCase converts a CBS column name such as KoppelvariabeleRegioCode_306
// to koppelvariabele_regio_code_306. Names already in snake case are kept.
func SnakeCase(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	if name == "ID" {
		return "id"
	}

	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// parseYear reads period values such as "2020" or "2020JJ00"
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("invalid period %q", s)
	}
	return year, nil
}

func parseValue(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || strings.EqualFold(s, "nan") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
