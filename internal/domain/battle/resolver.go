package battle

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/internal/domain/scoring"
	"github.com/okian/mealmax/pkg/logger"
)

// StatsUpdater commits one side of a battle outcome.
type StatsUpdater interface {
	UpdateMealStats(ctx context.Context, id int64, result model.Result) error
}

// StatsUpdaterFunc adapts a function to StatsUpdater.
type StatsUpdaterFunc func(ctx context.Context, id int64, result model.Result) error

// UpdateMealStats calls f.
func (f StatsUpdaterFunc) UpdateMealStats(ctx context.Context, id int64, result model.Result) error {
	return f(ctx, id, result)
}

// Outcome describes a decided battle.
type Outcome struct {
	Winner      model.Meal
	Loser       model.Meal
	WinnerScore float64
	LoserScore  float64
	Delta       float64
	Draw        float64
	// Upset is set when the lower score won.
	Upset bool
}

// Resolver decides battles between the two meals staged in Combatants.
type Resolver struct {
	combatants *Combatants
	updater    StatsUpdater
	scorer     scoring.Scorer
	random     RandomSource
	logger     logger.Logger
}

// NewResolver creates a resolver over combatants. Stats are committed
// through updater.
func NewResolver(combatants *Combatants, updater StatsUpdater, opts ...Option) *Resolver {
	r := &Resolver{
		combatants: combatants,
		updater:    updater,
		scorer:     scoring.NewWeightedScorer(),
		logger:     logger.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.random == nil {
		//nolint:gosec // battle draws are not security sensitive.
		r.random = &lockedSource{rng: rand.New(rand.NewSource(rand.Int63()))}
	}

	return r
}

// Combatants returns the staging area the resolver reads from.
func (r *Resolver) Combatants() *Combatants { return r.combatants }

// Battle resolves the staged pair and returns the winner's name.
func (r *Resolver) Battle(ctx context.Context) (string, error) {
	out, err := r.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return out.Winner.Name, nil
}

// Resolve scores both staged meals, draws the outcome, drops the loser from
// staging and records a win then a loss. When a stat update fails the
// decided outcome is returned alongside the error and the loser stays
// removed.
func (r *Resolver) Resolve(ctx context.Context) (Outcome, error) {
	a, b, err := r.combatants.pair()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %d staged", err, r.combatants.Len())
	}

	scoreA := r.scorer.Score(a)
	r.logger.Info(ctx, "battle score computed", logger.String("meal", a.Name), logger.Float64("score", scoreA))
	scoreB := r.scorer.Score(b)
	r.logger.Info(ctx, "battle score computed", logger.String("meal", b.Name), logger.Float64("score", scoreB))

	delta := r.scorer.Delta(scoreA, scoreB)
	r.logger.Info(ctx, "delta between scores", logger.Float64("delta", delta))

	draw := r.random.Float64()

	var winnerIdx int
	if draw < delta {
		if scoreA > scoreB {
			winnerIdx = 0
		} else {
			winnerIdx = 1
		}
	} else {
		if scoreA > scoreB {
			winnerIdx = 1
		} else {
			winnerIdx = 0
		}
	}

	out := Outcome{Delta: delta, Draw: draw}
	if winnerIdx == 0 {
		out.Winner, out.Loser = a, b
		out.WinnerScore, out.LoserScore = scoreA, scoreB
	} else {
		out.Winner, out.Loser = b, a
		out.WinnerScore, out.LoserScore = scoreB, scoreA
	}
	out.Upset = out.WinnerScore < out.LoserScore

	r.logger.Info(ctx, "battle decided",
		logger.String("winner", out.Winner.Name),
		logger.String("loser", out.Loser.Name),
		logger.Float64("draw", draw),
		logger.Bool("upset", out.Upset),
	)

	r.combatants.removeAt(1 - winnerIdx)

	if err := r.updater.UpdateMealStats(ctx, out.Winner.ID, model.ResultWin); err != nil {
		return out, fmt.Errorf("record win for meal %d: %w", out.Winner.ID, err)
	}
	if err := r.updater.UpdateMealStats(ctx, out.Loser.ID, model.ResultLoss); err != nil {
		return out, fmt.Errorf("record loss for meal %d: %w", out.Loser.ID, err)
	}

	return out, nil
}
