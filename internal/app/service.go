// Package service wires the catalog store, battle sessions and the history
// pipeline behind the operations the HTTP API exposes.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	historyqueue "github.com/okian/mealmax/internal/adapters/mq/queue"
	workerpool "github.com/okian/mealmax/internal/adapters/mq/worker"
	"github.com/okian/mealmax/internal/adapters/repository"
	"github.com/okian/mealmax/internal/domain/battle"
	"github.com/okian/mealmax/internal/domain/dedupe"
	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/internal/domain/types"
	"github.com/okian/mealmax/pkg/logger"
	"github.com/okian/mealmax/pkg/metrics"
)

// Service implements the API dependencies for the meal battle system.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   *historyqueue.InMemoryQueue
	pool    *workerpool.Pool
	random  battle.RandomSource

	dbPath      string
	schemaPath  string
	workerCount int
	queueSize   int
	dedupeSize  int
	maxSessions int
	randomSeed  int64

	// catalogMu is held shared by session operations that stage or score
	// meals and exclusively by ClearMeals, which invalidates meal ids.
	catalogMu sync.RWMutex
	sessMu    sync.Mutex
	sessions  map[string]*session

	battlesResolved atomic.Int64
	upsets          atomic.Int64
	statFailures    atomic.Int64
	historyDropped  atomic.Int64

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:      "data/mealmax.db",
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  100_000,
		maxSessions: 1_000,
		sessions:    make(map[string]*session),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start opens the store and starts the history workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.GetOrNop().Named("service")
	}

	s.logger.Info(ctx, "starting meal battle service...")

	var storeOpts []repository.Option
	storeOpts = append(storeOpts, repository.WithLogger(s.logger.Named("repository")))
	if s.schemaPath != "" {
		storeOpts = append(storeOpts, repository.WithSchemaPath(s.schemaPath))
	}
	store, err := repository.Open(ctx, s.dbPath, storeOpts...)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	s.store = store

	if s.random == nil {
		src, err := battle.NewRandomSource(s.randomSeed)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("seed battle draws: %w", err)
		}
		s.random = src
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = historyqueue.NewInMemoryQueue(historyqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store,
		workerpool.WithPoolLogger(s.logger.Named("history")),
	)
	// Workers outlive the start context so Stop can drain them.
	s.pool.Start(context.WithoutCancel(ctx))

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateMealsTotal(n)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "meal battle service started",
		logger.String("db", s.dbPath),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxSessions", s.maxSessions),
	)

	return nil
}

// Stop drains the history queue and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping meal battle service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "history pool did not drain", logger.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "closing catalog store", logger.Error(err))
		}
	}

	s.sessMu.Lock()
	s.sessions = make(map[string]*session)
	s.sessMu.Unlock()
	metrics.UpdateActiveSessions(0)

	s.started = false
	s.logger.Info(ctx, "meal battle service stopped")
}

// catalog returns the store once the service is running.
func (s *Service) catalog() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// CreateMeal adds a meal to the catalog.
func (s *Service) CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (model.Meal, error) {
	store, err := s.catalog()
	if err != nil {
		return model.Meal{}, err
	}
	m, err := store.CreateMeal(ctx, name, cuisine, price, difficulty)
	if err != nil {
		return model.Meal{}, err
	}
	_, _ = store.Count(ctx)
	return m, nil
}

// DeleteMeal soft deletes a meal.
func (s *Service) DeleteMeal(ctx context.Context, id int64) error {
	store, err := s.catalog()
	if err != nil {
		return err
	}
	if err := store.DeleteMeal(ctx, id); err != nil {
		return err
	}
	_, _ = store.Count(ctx)
	return nil
}

// GetMealByID returns a live meal.
func (s *Service) GetMealByID(ctx context.Context, id int64) (model.Meal, error) {
	store, err := s.catalog()
	if err != nil {
		return model.Meal{}, err
	}
	return store.GetMealByID(ctx, id)
}

// GetMealByName returns a live meal.
func (s *Service) GetMealByName(ctx context.Context, name string) (model.Meal, error) {
	store, err := s.catalog()
	if err != nil {
		return model.Meal{}, err
	}
	return store.GetMealByName(ctx, name)
}

// ClearMeals empties the catalog and the battle history. Meal ids restart
// afterwards, so every session loses its staged meals and pending updates.
func (s *Service) ClearMeals(ctx context.Context) error {
	store, err := s.catalog()
	if err != nil {
		return err
	}

	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()

	if err := store.ClearMeals(ctx); err != nil {
		return err
	}

	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	for _, sess := range s.sessions {
		sess.mu.Lock()
		sess.combatants.Clear()
		sess.pending = nil
		sess.mu.Unlock()
	}
	metrics.UpdateMealsTotal(0)

	s.logger.Info(ctx, "catalog cleared", logger.Int("sessionsReset", len(s.sessions)))
	return nil
}

// Leaderboard ranks meals that have fought.
func (s *Service) Leaderboard(ctx context.Context, sortBy types.SortBy, limit int) ([]types.LeaderboardEntry, error) {
	store, err := s.catalog()
	if err != nil {
		return nil, err
	}
	return store.Leaderboard(ctx, sortBy, limit)
}

// History lists recorded battles newest first.
func (s *Service) History(ctx context.Context, limit int) ([]model.BattleRecord, error) {
	store, err := s.catalog()
	if err != nil {
		return nil, err
	}
	return store.History(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"workerCount":        s.workerCount,
		"queueSize":          s.queueSize,
		"dedupeSize":         s.dedupeSize,
		"maxSessions":        s.maxSessions,
		"activeSessions":     s.sessionCount(),
		"battlesResolved":    s.battlesResolved.Load(),
		"upsets":             s.upsets.Load(),
		"statUpdateFailures": s.statFailures.Load(),
		"historyDropped":     s.historyDropped.Load(),
	}

	if s.started {
		ctx := context.Background()
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["queueLength"] = s.queue.Len(ctx)
		stats["appliedStatUpdates"] = s.deduper.Size()
		if n, err := s.store.Count(ctx); err == nil {
			stats["totalMeals"] = n
		}
	}

	return stats
}
