// Package battlesim drives a running meal battle service over HTTP and
// checks that its statistics add up.
package battlesim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete simulation.
func Run(ctx context.Context, config *Config) error {
	if config.NumMeals < 2 {
		return errors.New("at least 2 meals are required")
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	log := logger.GetOrNop().Named("battlesim")
	stats := &Stats{StartTime: time.Now()}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	log.Info(ctx, "starting meal battle simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("meals", config.NumMeals),
		logger.Int("battles", config.NumBattles),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Bool("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	meals, err := createMeals(ctx, config, client, generateMeals(config.NumMeals), stats)
	if err != nil {
		return fmt.Errorf("meal creation failed: %w", err)
	}

	records, err := runBattles(ctx, config, client, meals, stats)
	if err != nil {
		return fmt.Errorf("battles failed: %w", err)
	}

	rows, err := getLeaderboard(ctx, config, client)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	if err := verifyResults(ctx, config, rows, meals, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	if err := saveBattlesToFile(ctx, config, records); err != nil {
		log.Warn(ctx, "failed to save battles to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	var health struct {
		Status string `json:"status"`
	}
	if err := client.Get(ctx, "/healthz", &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("service reports status %q", health.Status)
	}
	return nil
}

// saveBattlesToFile writes the resolved battles as a JSON array.
func saveBattlesToFile(ctx context.Context, config *Config, records []model.BattleRecord) error {
	if len(records) == 0 {
		return errors.New("no battles to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "battles_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to write battles: %w", err)
	}

	logger.GetOrNop().Named("battlesim").Info(ctx, "battles saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final simulation statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var upsetRate, battlesPerSecond float64

	if stats.BattlesResolved > 0 {
		upsetRate = float64(stats.Upsets) / float64(stats.BattlesResolved) * 100
	}
	if stats.Duration > 0 {
		battlesPerSecond = float64(stats.BattlesResolved) / stats.Duration.Seconds()
	}

	logger.GetOrNop().Named("battlesim").Info(ctx, "final statistics",
		logger.Int("mealsCreated", stats.MealsCreated),
		logger.Int("battlesAttempted", stats.BattlesAttempted),
		logger.Int("battlesResolved", stats.BattlesResolved),
		logger.Int("battlesFailed", stats.BattlesFailed),
		logger.Int("upsets", stats.Upsets),
		logger.Float64("upsetRate", upsetRate),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("battlesPerSecond", battlesPerSecond))
}
