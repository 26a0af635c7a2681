package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/internal/domain/types"
	"github.com/okian/mealmax/pkg/logger"
	"github.com/okian/mealmax/pkg/metrics"
)

const mealColumns = `id, meal, cuisine, price, difficulty, deleted`

// CreateMeal inserts a new meal.
func (s *SQLiteStore) CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (m model.Meal, err error) {
	start := time.Now()
	defer func() { s.observe("create_meal", start, err) }()

	if err = s.ready(ctx); err != nil {
		return model.Meal{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return model.Meal{}, ErrInvalidName
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return model.Meal{}, fmt.Errorf("%w: %v (must be a positive number)", ErrInvalidPrice, price)
	}
	d, err := model.ParseDifficulty(difficulty)
	if err != nil {
		return model.Meal{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO meals (meal, cuisine, price, difficulty) VALUES (?, ?, ?, ?)`,
		name, cuisine, price, string(d),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Meal{}, fmt.Errorf("meal with name '%s' %w", name, ErrDuplicateMeal)
		}
		return model.Meal{}, fmt.Errorf("create meal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Meal{}, fmt.Errorf("create meal id: %w", err)
	}

	s.logger.Info(ctx, "meal created", logger.Int64("id", id), logger.String("meal", name))
	return model.Meal{ID: id, Name: name, Cuisine: cuisine, Price: price, Difficulty: d}, nil
}

// DeleteMeal marks a meal as deleted.
func (s *SQLiteStore) DeleteMeal(ctx context.Context, id int64) (err error) {
	start := time.Now()
	defer func() { s.observe("delete_meal", start, err) }()

	if err = s.ready(ctx); err != nil {
		return err
	}

	deleted, err := s.deletedFlag(ctx, s.db, id)
	if err != nil {
		return err
	}
	if deleted {
		return fmt.Errorf("meal with ID %d %w", id, ErrDeleted)
	}

	if _, err = s.db.ExecContext(ctx, `UPDATE meals SET deleted = TRUE WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}

	s.logger.Info(ctx, "meal deleted", logger.Int64("id", id))
	return nil
}

// GetMealByID returns a meal that has not been deleted.
func (s *SQLiteStore) GetMealByID(ctx context.Context, id int64) (m model.Meal, err error) {
	start := time.Now()
	defer func() { s.observe("get_meal", start, err) }()

	if err = s.ready(ctx); err != nil {
		return model.Meal{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	m, err = scanMeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meal{}, fmt.Errorf("meal with ID %d %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Meal{}, fmt.Errorf("get meal: %w", err)
	}
	if m.Deleted {
		return model.Meal{}, fmt.Errorf("meal with ID %d %w", id, ErrDeleted)
	}
	return m, nil
}

// GetMealByName returns a meal that has not been deleted.
func (s *SQLiteStore) GetMealByName(ctx context.Context, name string) (m model.Meal, err error) {
	start := time.Now()
	defer func() { s.observe("get_meal", start, err) }()

	if err = s.ready(ctx); err != nil {
		return model.Meal{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE meal = ?`, name)
	m, err = scanMeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meal{}, fmt.Errorf("meal with name '%s' %w", name, ErrNotFound)
	}
	if err != nil {
		return model.Meal{}, fmt.Errorf("get meal: %w", err)
	}
	if m.Deleted {
		return model.Meal{}, fmt.Errorf("meal with name '%s' %w", name, ErrDeleted)
	}
	return m, nil
}

// Leaderboard ranks meals by wins or by win percentage.
func (s *SQLiteStore) Leaderboard(ctx context.Context, sortBy types.SortBy, limit int) (out []types.LeaderboardEntry, err error) {
	start := time.Now()
	defer func() { s.observe("leaderboard", start, err) }()

	if err = s.ready(ctx); err != nil {
		return nil, err
	}

	var order string
	switch sortBy {
	case types.SortByWins:
		order = "wins DESC, id ASC"
	case types.SortByWinPct:
		order = "win_pct DESC, id ASC"
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidSortBy, sortBy)
	}

	n, err := sqlLimit(limit)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, meal, cuisine, price, difficulty, battles, wins,
		       (wins * 1.0 / battles) AS win_pct
		  FROM meals
		 WHERE deleted = FALSE AND battles > 0
		 ORDER BY `+order+`
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = make([]types.LeaderboardEntry, 0)
	for rows.Next() {
		var e types.LeaderboardEntry
		if err = rows.Scan(&e.ID, &e.Meal, &e.Cuisine, &e.Price, &e.Difficulty, &e.Battles, &e.Wins, &e.WinPct); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		e.Rank = len(out) + 1
		e.WinPct = math.Round(e.WinPct*1000) / 10
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard: %w", err)
	}
	return out, nil
}

// UpdateMealStats checks the meal exists and is live before validating result.
func (s *SQLiteStore) UpdateMealStats(ctx context.Context, id int64, result model.Result) (err error) {
	start := time.Now()
	defer func() { s.observe("update_stats", start, err) }()

	if err = s.ready(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stats update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleted, err := s.deletedFlag(ctx, tx, id)
	if err != nil {
		return err
	}
	if deleted {
		return fmt.Errorf("meal with ID %d %w", id, ErrDeleted)
	}

	var stmt string
	switch result {
	case model.ResultWin:
		stmt = `UPDATE meals SET battles = battles + 1, wins = wins + 1 WHERE id = ?`
	case model.ResultLoss:
		stmt = `UPDATE meals SET battles = battles + 1 WHERE id = ?`
	default:
		return fmt.Errorf("%w: %s. expected 'win' or 'loss'", ErrInvalidResult, result)
	}

	if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
		return fmt.Errorf("update meal stats: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit stats update: %w", err)
	}

	s.logger.Debug(ctx, "meal stats updated", logger.Int64("id", id), logger.String("result", result.String()))
	return nil
}

// Count returns the number of live meals and refreshes the catalog gauge.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals WHERE deleted = FALSE`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count meals: %w", err)
	}
	metrics.UpdateMealsTotal(n)
	return n, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) deletedFlag(ctx context.Context, q queryRower, id int64) (bool, error) {
	var deleted bool
	err := q.QueryRowContext(ctx, `SELECT deleted FROM meals WHERE id = ?`, id).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("meal with ID %d %w", id, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("lookup meal: %w", err)
	}
	return deleted, nil
}

func scanMeal(row *sql.Row) (model.Meal, error) {
	var m model.Meal
	var difficulty string
	if err := row.Scan(&m.ID, &m.Name, &m.Cuisine, &m.Price, &difficulty, &m.Deleted); err != nil {
		return model.Meal{}, err
	}
	m.Difficulty = model.Difficulty(difficulty)
	return m, nil
}
