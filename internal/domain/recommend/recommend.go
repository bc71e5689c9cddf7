// Package recommend selects and ranks weekend destinations around a source city.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/getaway/internal/domain/geo"
	"github.com/okian/getaway/internal/domain/model"
	"github.com/okian/getaway/internal/domain/ranking"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Defaults for a recommendation query.
const (
	DefaultK        = 5
	DefaultRadiusKm = 250.0
)

// ErrCityNotFound is returned when no row matches the requested source city.
var ErrCityNotFound = errors.New("city not found in database")

// Option applies a configuration option to a Recommend call.
type Option func(*options)

type options struct {
	k             int
	radiusKm      float64
	earthRadiusKm float64
	scorer        *ranking.Scorer
}

// WithK sets how many rows are returned. Zero or less yields no rows.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithRadius sets the inclusive search radius in kilometers.
func WithRadius(km float64) Option {
	return func(o *options) {
		if km > 0 {
			o.radiusKm = km
		}
	}
}

// WithEarthRadius sets the sphere radius used for distances.
func WithEarthRadius(km float64) Option {
	return func(o *options) {
		if km > 0 {
			o.earthRadiusKm = km
		}
	}
}

// WithScorer sets the scorer used to compute the final rank.
func WithScorer(s *ranking.Scorer) Option {
	return func(o *options) {
		if s != nil {
			o.scorer = s
		}
	}
}

// NormalizeCity title-cases a city name for lookup: "NEW delhi " -> "New Delhi".
func NormalizeCity(name string) string {
	// Casers carry state and must not be shared across goroutines.
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}

// Recommend returns up to k destinations within the radius of source, best first.
//
// The source point is the first row whose City equals the normalized source name.
// Rows at distance zero (the source itself and co-located rows) are excluded.
// Rows with equal rank keep their table order. table is never modified.
func Recommend(table []model.City, source string, opts ...Option) ([]model.Recommendation, error) {
	o := options{
		k:             DefaultK,
		radiusKm:      DefaultRadiusKm,
		earthRadiusKm: geo.EarthRadiusKm,
		scorer:        ranking.NewScorer(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	name := NormalizeCity(source)
	origin, ok := findFirst(table, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCityNotFound, name)
	}

	pts := make([]geo.Point, len(table))
	for i := range table {
		pts[i] = table[i].Point()
	}
	dist := geo.DistancesFromWithRadius(origin.Point(), pts, o.earthRadiusKm)

	recs := make([]model.Recommendation, 0)
	for i, d := range dist {
		// NaN fails both comparisons and drops out here.
		if !(d > 0 && d <= o.radiusKm) {
			continue
		}
		row := table[i]
		recs = append(recs, model.Recommendation{
			City:       row.City,
			Name:       row.Name,
			DistanceKm: d,
			Type:       row.Type,
			Rating:     row.Rating,
			FinalRank:  o.scorer.Score(row.Rating, d),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return rankBefore(recs[i].FinalRank, recs[j].FinalRank)
	})

	if o.k <= 0 {
		return recs[:0], nil
	}
	if len(recs) > o.k {
		recs = recs[:o.k]
	}
	return recs, nil
}

// rankBefore orders ranks descending with NaN last.
func rankBefore(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}

func findFirst(table []model.City, name string) (model.City, bool) {
	for _, row := range table {
		if row.City == name {
			return row, true
		}
	}
	return model.City{}, false
}
