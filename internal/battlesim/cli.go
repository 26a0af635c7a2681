package battlesim

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/mealmax/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging routes the global logger to both stdout and a file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "battle_sim_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Meal Battle Simulator
=====================

Creates a batch of meals on a running service, resolves random battles
between them concurrently, and checks the leaderboard totals.

Usage:
  go run ./cmd/battle-sim [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -meals int
        Number of meals to create (default 20)
  -battles int
        Number of battles to resolve (default 500)
  -top int
        Leaderboard rows to fetch for verification (default 100)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for resolved battles (default: battles_TIMESTAMP.json)
  -log string
        Log file (default: battle_sim_TIMESTAMP.log)
  -verbose
        Log every battle
  -help
        Show this help message

Examples:
  go run ./cmd/battle-sim -meals 50 -battles 5000 -workers 16
`)
}
