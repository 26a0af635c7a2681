// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config holding the defaults.
// - Load layers a YAML file and MEALMAX_* environment variables on top.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file holding the meal catalog.
	DBPath string `koanf:"db_path"`

	// SQLCreateTablePath optionally points at a schema script that replaces
	// the embedded one. It is also replayed when the catalog is cleared.
	SQLCreateTablePath string `koanf:"sql_create_table_path"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// HistoryQueueSize bounds the in-memory battle history queue.
	HistoryQueueSize int `koanf:"history_queue_size"`

	// HistoryWorkerCount sets the number of history writers.
	HistoryWorkerCount int `koanf:"history_worker_count"`

	// DedupeSize bounds the applied stat update cache.
	DedupeSize int `koanf:"dedupe_size"`

	// RandomSeed seeds the battle random source; 0 draws a seed from crypto/rand.
	RandomSeed int64 `koanf:"random_seed"`

	// MaxSessions caps concurrently open battle sessions.
	MaxSessions int `koanf:"max_sessions"`

	// MetricsNamespace and MetricsSubsystem name the exported Prometheus series.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsPrefix is prepended to every metric name.
	MetricsPrefix string `koanf:"metrics_prefix"`

	// MetricsLatencyBuckets replaces the default latency histogram buckets (ms).
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// MetricsLabels are constant labels attached to every series.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DBPath:              "data/mealmax.db",
		MaxLeaderboardLimit: 100,
		HistoryQueueSize:    10_000,
		HistoryWorkerCount:  runtime.NumCPU(),
		DedupeSize:          100_000,
		MaxSessions:         1_000,
		MetricsNamespace:    "mealmax",
		MetricsSubsystem:    "battle",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DBPath) == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	return c.validateMetrics()
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func (c *Config) validateMetrics() error {
	for key, v := range map[string]string{
		"metrics_namespace": c.MetricsNamespace,
		"metrics_subsystem": c.MetricsSubsystem,
		"metrics_prefix":    c.MetricsPrefix,
	} {
		if v != "" && !metricName.MatchString(v) {
			return fmt.Errorf("%w: %s %q is not a valid metric name part", ErrInvalidConfig, key, v)
		}
	}
	for i := 1; i < len(c.MetricsLatencyBuckets); i++ {
		if c.MetricsLatencyBuckets[i] <= c.MetricsLatencyBuckets[i-1] {
			return fmt.Errorf("%w: metrics_latency_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	return nil
}
