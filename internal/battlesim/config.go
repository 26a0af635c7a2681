package battlesim

import (
	"time"

	"github.com/okian/mealmax/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumMeals   int           // Meals to create
	NumBattles int           // Battles to resolve
	TopN       int           // Leaderboard rows to fetch for verification
	Workers    int           // Concurrent battle workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for resolved battles
	LogFile    string        // Log file for simulation output
	Verbose    bool          // Log every battle
}

// CreateMealRequest is the body of POST /meals.
type CreateMealRequest struct {
	Meal       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
}

// BattleResponse is the body returned by POST /battles/{id}/resolve.
type BattleResponse struct {
	Winner string             `json:"winner"`
	Battle model.BattleRecord `json:"battle"`
}

// Stats holds simulation statistics.
type Stats struct {
	MealsCreated     int
	BattlesAttempted int
	BattlesResolved  int
	BattlesFailed    int
	Upsets           int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
