package battlesim

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/logger"
)

const randomFloatDivisor = 1_000_000

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomIndex returns a uniform index in [0, n).
func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randomPair picks two distinct indexes in [0, n). n must be at least 2.
func randomPair(n int) (int, int) {
	a := randomIndex(n)
	b := randomIndex(n - 1)
	if b >= a {
		b++
	}
	return a, b
}

// generateMeals builds n create requests with unique names.
func generateMeals(n int) []CreateMealRequest {
	reqs := make([]CreateMealRequest, n)
	for i := range reqs {
		cuisine := cuisines[randomIndex(len(cuisines))]
		reqs[i] = CreateMealRequest{
			Meal:       fmt.Sprintf("%s-%d-%s", cuisine, i, uuid.NewString()[:8]),
			Cuisine:    cuisine,
			Price:      math.Round((minPrice+getRandomFloat()*priceRange)*100) / 100,
			Difficulty: difficulties[randomIndex(len(difficulties))],
		}
	}
	return reqs
}

// createMeals posts the requests concurrently and returns the created meals
// in request order.
func createMeals(ctx context.Context, config *Config, client *HTTPClient, reqs []CreateMealRequest, stats *Stats) ([]model.Meal, error) {
	log := logger.GetOrNop().Named("battlesim")
	log.Info(ctx, "creating meals", logger.Int("count", len(reqs)), logger.Int("workers", config.Workers))

	meals := make([]model.Meal, len(reqs))
	errs := make([]error, len(reqs))

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexChan {
				errs[idx] = client.Post(ctx, "/meals", reqs[idx], &meals[idx])
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range reqs {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled during meal creation: %w", err)
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("failed to create meal %q: %w", reqs[i].Meal, err)
		}
	}

	stats.MealsCreated = len(meals)
	log.Info(ctx, "meals created", logger.Int("count", len(meals)))
	return meals, nil
}
