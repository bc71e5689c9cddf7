// Package repository loads and serves the read-only destination table.
package repository

import (
	"context"

	"github.com/okian/getaway/internal/domain/model"
)

// Store provides read access to the destination table.
type Store interface {
	// Rows returns every row in load order. Callers must treat it as read-only.
	Rows(ctx context.Context) []model.City

	// Cities returns the distinct city names in order of first appearance.
	Cities(ctx context.Context) []string

	// Count returns the number of rows.
	Count(ctx context.Context) int
}

// Table is an immutable, in-memory Store.
type Table struct {
	source string
	rows   []model.City
	cities []string
}

// NewTable builds a Table from rows. rows is copied.
func NewTable(source string, rows []model.City) *Table {
	t := &Table{
		source: source,
		rows:   make([]model.City, len(rows)),
	}
	copy(t.rows, rows)

	seen := make(map[string]struct{}, len(rows))
	for _, r := range t.rows {
		if _, ok := seen[r.City]; ok {
			continue
		}
		seen[r.City] = struct{}{}
		t.cities = append(t.cities, r.City)
	}
	return t
}

// Rows returns the table rows. The slice is shared; do not modify it.
func (t *Table) Rows(_ context.Context) []model.City {
	if t == nil {
		return nil
	}
	return t.rows
}

// Cities returns the distinct city names in load order.
func (t *Table) Cities(_ context.Context) []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.cities))
	copy(out, t.cities)
	return out
}

// Count returns the number of rows.
func (t *Table) Count(_ context.Context) int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Source returns the path the table was loaded from, if any.
func (t *Table) Source() string {
	if t == nil {
		return ""
	}
	return t.source
}
