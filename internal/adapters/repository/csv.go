package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/getaway/internal/domain/model"
)

// Header names of the input file.
const (
	ColumnCity      = "City"
	ColumnName      = "Name"
	ColumnLatitude  = "Latitude"
	ColumnLongitude = "Longitude"
	ColumnType      = "Type"
	ColumnRating    = "Google review rating"
)

const utf8BOM = "\ufeff"

type loader struct {
	comma        rune
	ratingColumn string
}

func newLoader(opts ...Option) *loader {
	l := &loader{
		comma:        ',',
		ratingColumn: ColumnRating,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadCSV reads the destination table from the file at path.
// Any failure to open the file wraps ErrDataUnavailable.
func LoadCSV(ctx context.Context, path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadCSV(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return NewTable(path, rows), nil
}

// ReadCSV parses destination rows from r. Columns are located by header name;
// extra columns are ignored. Blank numeric cells parse as NaN.
func ReadCSV(ctx context.Context, r io.Reader, opts ...Option) ([]model.City, error) {
	l := newLoader(opts...)

	cr := csv.NewReader(r)
	cr.Comma = l.comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := l.columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []model.City
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		row, err := idx.parse(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedRow, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type columns struct {
	city, name, lat, lon, typ, rating int
	width                             int
}

func (l *loader) columnIndex(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	var missing []string
	get := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}
	c := columns{
		city:   get(ColumnCity),
		name:   get(ColumnName),
		lat:    get(ColumnLatitude),
		lon:    get(ColumnLongitude),
		typ:    get(ColumnType),
		rating: get(l.ratingColumn),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	c.width = max(c.city, c.name, c.lat, c.lon, c.typ, c.rating) + 1
	return c, nil
}

func (c columns) parse(rec []string) (model.City, error) {
	if len(rec) < c.width {
		return model.City{}, fmt.Errorf("expected at least %d fields, got %d", c.width, len(rec))
	}
	lat, err := parseFloat(rec[c.lat])
	if err != nil {
		return model.City{}, fmt.Errorf("%s: %w", ColumnLatitude, err)
	}
	lon, err := parseFloat(rec[c.lon])
	if err != nil {
		return model.City{}, fmt.Errorf("%s: %w", ColumnLongitude, err)
	}
	rating, err := parseFloat(rec[c.rating])
	if err != nil {
		return model.City{}, fmt.Errorf("%s: %w", ColumnRating, err)
	}
	return model.City{
		City:      strings.TrimSpace(rec[c.city]),
		Name:      strings.TrimSpace(rec[c.name]),
		Latitude:  lat,
		Longitude: lon,
		Type:      strings.TrimSpace(rec[c.typ]),
		Rating:    rating,
	}, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
