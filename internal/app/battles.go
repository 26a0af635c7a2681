package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/mealmax/internal/domain/battle"
	"github.com/okian/mealmax/internal/domain/dedupe"
	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/logger"
	"github.com/okian/mealmax/pkg/metrics"
)

// session is one staging area plus the last resolution whose stats did not
// fully apply.
type session struct {
	mu         sync.Mutex
	id         string
	combatants *battle.Combatants
	pending    *model.BattleRecord
	createdAt  time.Time
}

// NewBattle opens a battle session and returns its id.
func (s *Service) NewBattle(ctx context.Context) (string, error) {
	if _, err := s.catalog(); err != nil {
		return "", err
	}

	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		metrics.RecordErrorByComponent("service", "too_many_sessions")
		return "", fmt.Errorf("%w: limit %d", ErrTooManySessions, s.maxSessions)
	}

	id := uuid.NewString()
	s.sessions[id] = &session{
		id:         id,
		combatants: battle.NewCombatants(),
		createdAt:  time.Now(),
	}
	metrics.UpdateActiveSessions(len(s.sessions))

	s.logger.Debug(ctx, "battle session opened", logger.String("battleID", id))
	return id, nil
}

// EndBattle discards a session.
func (s *Service) EndBattle(ctx context.Context, battleID string) error {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	if _, ok := s.sessions[battleID]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, battleID)
	}
	delete(s.sessions, battleID)
	metrics.UpdateActiveSessions(len(s.sessions))

	s.logger.Debug(ctx, "battle session closed", logger.String("battleID", battleID))
	return nil
}

// PrepCombatant stages a live catalog meal in the session.
func (s *Service) PrepCombatant(ctx context.Context, battleID string, mealID int64) error {
	store, err := s.catalog()
	if err != nil {
		return err
	}
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()

	sess, err := s.session(battleID)
	if err != nil {
		return err
	}

	meal, err := store.GetMealByID(ctx, mealID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.combatants.Add(meal); err != nil {
		return err
	}

	s.logger.Info(ctx, "combatant prepped",
		logger.String("battleID", battleID),
		logger.String("meal", meal.Name),
	)
	return nil
}

// Combatants lists the meals staged in a session.
func (s *Service) Combatants(_ context.Context, battleID string) ([]model.Meal, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	return sess.combatants.List(), nil
}

// ClearCombatants empties a session's staging area.
func (s *Service) ClearCombatants(ctx context.Context, battleID string) error {
	sess, err := s.session(battleID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.combatants.Clear()
	discarded := sess.pending
	sess.pending = nil
	sess.mu.Unlock()

	if discarded != nil {
		metrics.RecordBattleFailure("pending_discarded")
		s.logger.Warn(ctx, "unapplied battle stats discarded",
			logger.String("battleID", battleID),
			logger.String("resolutionID", discarded.BattleID),
		)
	}
	s.logger.Debug(ctx, "combatants cleared", logger.String("battleID", battleID))
	return nil
}

// Battle resolves the staged pair. When a stat update fails the decided
// outcome is kept on the session for RetryStats and the error is returned;
// the session refuses further battles until it is retried or cleared.
func (s *Service) Battle(ctx context.Context, battleID string) (model.BattleRecord, error) {
	store, err := s.catalog()
	if err != nil {
		return model.BattleRecord{}, err
	}
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()

	sess, err := s.session(battleID)
	if err != nil {
		return model.BattleRecord{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.pending != nil {
		metrics.RecordBattleFailure("pending_stats")
		return model.BattleRecord{}, fmt.Errorf("%w: resolution %s", ErrPendingStats, sess.pending.BattleID)
	}

	start := time.Now()
	resolutionID := uuid.NewString()
	resolver := battle.NewResolver(sess.combatants, s.statsUpdater(store, resolutionID),
		battle.WithRandomSource(s.random),
		battle.WithLogger(s.logger.Named("battle")),
	)

	out, err := resolver.Resolve(ctx)
	if errors.Is(err, battle.ErrNotEnoughCombatants) {
		metrics.RecordBattleFailure("not_enough_combatants")
		return model.BattleRecord{}, err
	}

	rec := model.BattleRecord{
		BattleID:    resolutionID,
		WinnerID:    out.Winner.ID,
		WinnerName:  out.Winner.Name,
		WinnerScore: out.WinnerScore,
		LoserID:     out.Loser.ID,
		LoserName:   out.Loser.Name,
		LoserScore:  out.LoserScore,
		Delta:       out.Delta,
		Draw:        out.Draw,
		Upset:       out.Upset,
		ResolvedAt:  time.Now().UTC(),
	}

	if err != nil {
		s.statFailures.Add(1)
		metrics.RecordBattleFailure("stat_update")
		sess.pending = &rec
		s.logger.Warn(ctx, "battle stats not fully applied",
			logger.String("battleID", battleID),
			logger.String("resolutionID", resolutionID),
			logger.Error(err),
		)
		return rec, err
	}

	sess.pending = nil
	s.finish(ctx, rec, time.Since(start))
	return rec, nil
}

// RetryStats re-applies the stat updates of the session's last failed
// resolution. Updates that already succeeded are skipped.
func (s *Service) RetryStats(ctx context.Context, battleID string) (model.BattleRecord, error) {
	store, err := s.catalog()
	if err != nil {
		return model.BattleRecord{}, err
	}
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()

	sess, err := s.session(battleID)
	if err != nil {
		return model.BattleRecord{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.pending == nil {
		return model.BattleRecord{}, fmt.Errorf("%w: %s", ErrNothingToRetry, battleID)
	}
	rec := *sess.pending
	start := time.Now()

	updater := s.statsUpdater(store, rec.BattleID)
	if err := updater.UpdateMealStats(ctx, rec.WinnerID, model.ResultWin); err != nil {
		return rec, fmt.Errorf("record win for meal %d: %w", rec.WinnerID, err)
	}
	if err := updater.UpdateMealStats(ctx, rec.LoserID, model.ResultLoss); err != nil {
		return rec, fmt.Errorf("record loss for meal %d: %w", rec.LoserID, err)
	}

	sess.pending = nil
	s.logger.Info(ctx, "battle stats retried", logger.String("resolutionID", rec.BattleID))
	s.finish(ctx, rec, time.Since(start))
	return rec, nil
}

// statsUpdater applies each (resolution, meal, result) at most once.
func (s *Service) statsUpdater(store battle.StatsUpdater, resolutionID string) battle.StatsUpdater {
	return battle.StatsUpdaterFunc(func(ctx context.Context, id int64, result model.Result) error {
		key := dedupe.Key(resolutionID, id, result)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordStatUpdateSkipped()
			return nil
		}
		if err := store.UpdateMealStats(ctx, id, result); err != nil {
			s.deduper.Unrecord(ctx, key)
			metrics.RecordStatUpdateError()
			return err
		}
		metrics.RecordStatUpdate(result.String())
		return nil
	})
}

// finish counts a fully applied battle and queues it for history.
func (s *Service) finish(ctx context.Context, rec model.BattleRecord, latency time.Duration) {
	s.battlesResolved.Add(1)
	if rec.Upset {
		s.upsets.Add(1)
	}
	metrics.RecordBattleResolved(rec.Delta, rec.Upset, float64(latency.Milliseconds()))

	if err := s.queue.Enqueue(ctx, rec); err != nil {
		s.historyDropped.Add(1)
		s.logger.Warn(ctx, "battle history dropped",
			logger.String("resolutionID", rec.BattleID),
			logger.Error(err),
		)
	}
}

func (s *Service) session(battleID string) (*session, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	sess, ok := s.sessions[battleID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, battleID)
	}
	return sess, nil
}

func (s *Service) sessionCount() int {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()
	return len(s.sessions)
}
