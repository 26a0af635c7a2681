package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/mealmax/internal/battlesim"
)

// Default configuration constants.
const (
	defaultNumMeals    = 20
	defaultNumBattles  = 500
	defaultTopN        = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numMeals   = flag.Int("meals", defaultNumMeals, "Number of meals to create")
		numBattles = flag.Int("battles", defaultNumBattles, "Number of battles to resolve")
		topN       = flag.Int("top", defaultTopN, "Leaderboard rows to fetch for verification")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for resolved battles (default: battles_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file (default: battle_sim_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Log every battle")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		battlesim.ShowHelp()
		return
	}

	closer, err := battlesim.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &battlesim.Config{
		BaseURL:    *baseURL,
		NumMeals:   *numMeals,
		NumBattles: *numBattles,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := battlesim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
