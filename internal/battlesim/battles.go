package battlesim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/logger"
)

type newBattleResponse struct {
	BattleID string `json:"battle_id"`
}

type prepRequest struct {
	MealID int64 `json:"meal_id"`
}

// runBattles resolves config.NumBattles battles between random pairs of
// meals and returns the resolved records.
func runBattles(ctx context.Context, config *Config, client *HTTPClient, meals []model.Meal, stats *Stats) ([]model.BattleRecord, error) {
	if len(meals) < 2 {
		return nil, fmt.Errorf("need at least 2 meals, have %d", len(meals))
	}

	log := logger.GetOrNop().Named("battlesim")
	log.Info(ctx, "running battles",
		logger.Int("battles", config.NumBattles),
		logger.Int("workers", config.Workers))

	var (
		attempted int64
		resolved  int64
		failed    int64
		upsets    int64

		mu      sync.Mutex
		records = make([]model.BattleRecord, 0, config.NumBattles)
	)

	var lastReport atomic.Int64
	jobs := make(chan struct{}, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				a, b := randomPair(len(meals))
				atomic.AddInt64(&attempted, 1)

				rec, err := fight(ctx, client, meals[a], meals[b])
				if err != nil {
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "battle failed",
						logger.String("a", meals[a].Name),
						logger.String("b", meals[b].Name),
						logger.Error(err))
				} else {
					atomic.AddInt64(&resolved, 1)
					if rec.Upset {
						atomic.AddInt64(&upsets, 1)
					}
					mu.Lock()
					records = append(records, rec)
					mu.Unlock()
					if config.Verbose {
						log.Info(ctx, "battle resolved",
							logger.String("winner", rec.WinnerName),
							logger.String("loser", rec.LoserName),
							logger.Float64("delta", rec.Delta),
							logger.Bool("upset", rec.Upset))
					}
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, "progress",
						logger.Int64("attempted", atomic.LoadInt64(&attempted)),
						logger.Int64("resolved", atomic.LoadInt64(&resolved)),
						logger.Int64("failed", atomic.LoadInt64(&failed)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < config.NumBattles; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- struct{}{}:
			}
		}
	}()
	wg.Wait()

	stats.BattlesAttempted = int(atomic.LoadInt64(&attempted))
	stats.BattlesResolved = int(atomic.LoadInt64(&resolved))
	stats.BattlesFailed = int(atomic.LoadInt64(&failed))
	stats.Upsets = int(atomic.LoadInt64(&upsets))

	if err := ctx.Err(); err != nil {
		return records, fmt.Errorf("context cancelled during battles: %w", err)
	}
	return records, nil
}

// fight runs one full session: open, stage both meals, resolve, end.
func fight(ctx context.Context, client *HTTPClient, a, b model.Meal) (model.BattleRecord, error) {
	var opened newBattleResponse
	if err := client.Post(ctx, "/battles", nil, &opened); err != nil {
		return model.BattleRecord{}, fmt.Errorf("open battle: %w", err)
	}
	base := "/battles/" + opened.BattleID
	defer func() { _ = client.Delete(context.WithoutCancel(ctx), base) }()

	for _, m := range []model.Meal{a, b} {
		if err := client.Post(ctx, base+"/combatants", prepRequest{MealID: m.ID}, nil); err != nil {
			return model.BattleRecord{}, fmt.Errorf("stage %s: %w", m.Name, err)
		}
	}

	var out BattleResponse
	if err := client.Post(ctx, base+"/resolve", nil, &out); err != nil {
		return model.BattleRecord{}, fmt.Errorf("resolve: %w", err)
	}
	return out.Battle, nil
}
