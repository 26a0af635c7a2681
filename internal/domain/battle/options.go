package battle

import (
	"github.com/okian/mealmax/internal/domain/scoring"
	"github.com/okian/mealmax/pkg/logger"
)

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithRandomSource sets the source of battle draws.
func WithRandomSource(src RandomSource) Option {
	return func(r *Resolver) {
		if src != nil {
			r.random = src
		}
	}
}

// WithScorer replaces the default weighted scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(r *Resolver) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithLogger sets the sink for score and decision records.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
