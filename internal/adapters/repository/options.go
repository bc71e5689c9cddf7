// Package repository loads and serves the read-only destination table.
package repository

// Option applies a configuration option to the CSV loader.
type Option func(*loader)

// WithComma sets the field delimiter. Defaults to ','.
func WithComma(r rune) Option {
	return func(l *loader) {
		if r != 0 {
			l.comma = r
		}
	}
}

// WithRatingColumn overrides the header name of the rating column.
func WithRatingColumn(name string) Option {
	return func(l *loader) {
		if name != "" {
			l.ratingColumn = name
		}
	}
}
