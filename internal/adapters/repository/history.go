package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/mealmax/internal/domain/model"
)

// RecordBattle appends one resolved battle to the history table.
func (s *SQLiteStore) RecordBattle(ctx context.Context, rec model.BattleRecord) (err error) {
	start := time.Now()
	defer func() { s.observe("record_battle", start, err) }()

	if err = s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(rec.BattleID) == "" {
		return fmt.Errorf("battle id is required")
	}
	resolvedAt := rec.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO battles (
		  battle_id, winner_id, winner, winner_score,
		  loser_id, loser, loser_score, delta, draw, upset, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.BattleID, rec.WinnerID, rec.WinnerName, rec.WinnerScore,
		rec.LoserID, rec.LoserName, rec.LoserScore, rec.Delta, rec.Draw, rec.Upset,
		toMillis(resolvedAt),
	)
	if err != nil {
		return fmt.Errorf("record battle: %w", err)
	}
	return nil
}

// History lists battles newest first.
func (s *SQLiteStore) History(ctx context.Context, limit int) (out []model.BattleRecord, err error) {
	start := time.Now()
	defer func() { s.observe("history", start, err) }()

	if err = s.ready(ctx); err != nil {
		return nil, err
	}
	n, err := sqlLimit(limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT battle_id, winner_id, winner, winner_score,
		       loser_id, loser, loser_score, delta, draw, upset, resolved_at
		  FROM battles
		 ORDER BY resolved_at DESC, id DESC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make([]model.BattleRecord, 0)
	for rows.Next() {
		var rec model.BattleRecord
		var resolvedAt int64
		if err = rows.Scan(
			&rec.BattleID, &rec.WinnerID, &rec.WinnerName, &rec.WinnerScore,
			&rec.LoserID, &rec.LoserName, &rec.LoserScore, &rec.Delta, &rec.Draw, &rec.Upset,
			&resolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.ResolvedAt = fromMillis(resolvedAt)
		out = append(out, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}
