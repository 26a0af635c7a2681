// Package repository persists the meal catalog and battle history.
package repository

import (
	"context"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/internal/domain/types"
)

// MealStore provides read/write access to the meal catalog.
type MealStore interface {
	// CreateMeal validates and inserts a meal, returning it with its ID.
	CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (model.Meal, error)
	// DeleteMeal soft deletes a meal.
	DeleteMeal(ctx context.Context, id int64) error
	GetMealByID(ctx context.Context, id int64) (model.Meal, error)
	GetMealByName(ctx context.Context, name string) (model.Meal, error)
	// Leaderboard lists meals that have fought at least once. A limit of 0
	// returns every row.
	Leaderboard(ctx context.Context, sortBy types.SortBy, limit int) ([]types.LeaderboardEntry, error)
	// UpdateMealStats adds one battle, and one win when result is win.
	UpdateMealStats(ctx context.Context, id int64, result model.Result) error
	// ClearMeals drops and recreates the catalog tables.
	ClearMeals(ctx context.Context) error
	// Count returns the number of meals that are not deleted.
	Count(ctx context.Context) (int, error)
}

// HistoryStore persists resolved battles.
type HistoryStore interface {
	RecordBattle(ctx context.Context, rec model.BattleRecord) error
	// History returns the most recent battles first. A limit of 0 returns
	// every row.
	History(ctx context.Context, limit int) ([]model.BattleRecord, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	MealStore
	HistoryStore
	Close() error
}
