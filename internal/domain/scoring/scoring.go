// Package scoring computes battle scores for meals.
package scoring

import (
	"math"
	"unicode/utf8"

	"github.com/okian/mealmax/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultDeltaScale = 100
	maxDelta          = 1
)

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithDifficultyModifiers replaces the per-tier penalty subtracted from a score.
// Tiers missing from the map keep their default.
func WithDifficultyModifiers(mods map[model.Difficulty]float64) Option {
	return func(s *WeightedScorer) {
		for d, m := range mods {
			if d.Valid() {
				s.modifiers[d] = m
			}
		}
	}
}

// WithDeltaScale sets the divisor that normalises a score gap into [0, 1].
func WithDeltaScale(scale float64) Option {
	return func(s *WeightedScorer) {
		if scale > 0 {
			s.deltaScale = scale
		}
	}
}

// Scorer computes the battle strength of a meal and the normalised gap
// between two strengths.
type Scorer interface {
	Score(meal model.Meal) float64
	Delta(a, b float64) float64
}

// WeightedScorer scores a meal as price times cuisine length minus a
// difficulty penalty.
type WeightedScorer struct {
	modifiers  map[model.Difficulty]float64
	deltaScale float64
}

// NewWeightedScorer creates a scorer with LOW=3, MED=2, HIGH=1 penalties.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		modifiers: map[model.Difficulty]float64{
			model.DifficultyLow:    3,
			model.DifficultyMedium: 2,
			model.DifficultyHigh:   1,
		},
		deltaScale: defaultDeltaScale,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score returns price * len(cuisine) - modifier(difficulty). The length is
// counted in characters.
func (s *WeightedScorer) Score(meal model.Meal) float64 {
	cuisineLen := float64(utf8.RuneCountInString(meal.Cuisine))
	return meal.Price*cuisineLen - s.modifiers[meal.Difficulty]
}

// Delta returns |a-b| / scale capped at 1.
func (s *WeightedScorer) Delta(a, b float64) float64 {
	return math.Min(math.Abs(a-b)/s.deltaScale, maxDelta)
}

// DifficultyModifier returns the penalty applied for d.
func (s *WeightedScorer) DifficultyModifier(d model.Difficulty) float64 {
	return s.modifiers[d]
}
