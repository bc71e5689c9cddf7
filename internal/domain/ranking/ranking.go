// Package ranking scores candidate destinations by rating and proximity.
package ranking

// Default weighting of the composite rank.
const (
	DefaultRatingWeight    = 0.7
	DefaultProximityWeight = 0.3
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the rating and proximity weights. Negative weights are ignored.
func WithWeights(rating, proximity float64) Option {
	return func(s *Scorer) {
		if rating >= 0 {
			s.ratingWeight = rating
		}
		if proximity >= 0 {
			s.proximityWeight = proximity
		}
	}
}

// Scorer computes the composite rank of a candidate.
// A Scorer is immutable once built and safe for concurrent use.
type Scorer struct {
	ratingWeight    float64
	proximityWeight float64
}

// NewScorer creates a scorer with the default weights unless overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		ratingWeight:    DefaultRatingWeight,
		proximityWeight: DefaultProximityWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns rating*w_r + 1/(distanceKm+1)*w_p.
// The proximity term is at most w_p, reached at distance zero.
func (s *Scorer) Score(rating, distanceKm float64) float64 {
	return rating*s.ratingWeight + (1/(distanceKm+1))*s.proximityWeight
}

// Weights returns the rating and proximity weights in use.
func (s *Scorer) Weights() (rating, proximity float64) {
	return s.ratingWeight, s.proximityWeight
}
