package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/okian/mealmax/internal/adapters/repository"
	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/internal/domain/types"
)

const benchMeals = 200

func seedBenchStore(b *testing.B) (*repository.SQLiteStore, []int64) {
	b.Helper()
	ctx := context.Background()
	store, err := repository.Open(ctx, filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("open store: %v", err)
	}
	b.Cleanup(func() { _ = store.Close() })

	ids := make([]int64, 0, benchMeals)
	for i := 0; i < benchMeals; i++ {
		m, err := store.CreateMeal(ctx, fmt.Sprintf("meal-%d", i), "Italian", float64(i%40+1), "MED")
		if err != nil {
			b.Fatalf("create meal: %v", err)
		}
		ids = append(ids, m.ID)
	}
	return store, ids
}

func BenchmarkUpdateMealStats(b *testing.B) {
	store, ids := seedBenchStore(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result := model.ResultWin
		if i%2 == 1 {
			result = model.ResultLoss
		}
		if err := store.UpdateMealStats(ctx, ids[i%len(ids)], result); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLeaderboard(b *testing.B) {
	store, ids := seedBenchStore(b)
	ctx := context.Background()
	for i, id := range ids {
		for j := 0; j <= i%5; j++ {
			if err := store.UpdateMealStats(ctx, id, model.ResultWin); err != nil {
				b.Fatal(err)
			}
		}
		if err := store.UpdateMealStats(ctx, id, model.ResultLoss); err != nil {
			b.Fatal(err)
		}
	}

	for _, sortBy := range []types.SortBy{types.SortByWins, types.SortByWinPct} {
		b.Run(string(sortBy), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := store.Leaderboard(ctx, sortBy, 50); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
