package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/mealmax/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "data/mealmax.db")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
				convey.So(cfg.RandomSeed, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MEALMAX_ADDR", ":8080")
			_ = os.Setenv("MEALMAX_DB_PATH", "/tmp/meals.db")
			_ = os.Setenv("MEALMAX_SQL_CREATE_TABLE_PATH", "sql/create_meal_table.sql")
			_ = os.Setenv("MEALMAX_HISTORY_WORKER_COUNT", "3")
			_ = os.Setenv("MEALMAX_RANDOM_SEED", "42")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/meals.db")
				convey.So(cfg.SQLCreateTablePath, convey.ShouldEqual, "sql/create_meal_table.sql")
				convey.So(cfg.HistoryWorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.RandomSeed, convey.ShouldEqual, 42)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			yamlContent := `
# battle service
addr: ":9090"
db_path: "/var/lib/mealmax/meals.db"
max_leaderboard_limit: 25
history_queue_size: 500
dedupe_size: 1000
max_sessions: 10
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEALMAX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/mealmax/meals.db")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)
				convey.So(cfg.HistoryQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 1000)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
max_leaderboard_limit: 25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEALMAX_CONFIG", tmpFile)
			_ = os.Setenv("MEALMAX_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When the YAML file shapes the metrics", func() {
			yamlContent := `
metrics_namespace: kitchen
metrics_subsystem: arena
metrics_prefix: m_
metrics_latency_buckets: [5, 50, 500]
metrics_labels:
  region: eu
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEALMAX_CONFIG", tmpFile)
			_ = os.Setenv("MEALMAX_METRICS_NAMESPACE", "canteen")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the metrics settings are loaded with env on top", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "canteen")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "arena")
				convey.So(cfg.MetricsPrefix, convey.ShouldEqual, "m_")
				convey.So(cfg.MetricsLatencyBuckets, convey.ShouldResemble, []float64{5, 50, 500})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"region": "eu"})
			})
		})

		convey.Convey("When loading config with an invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEALMAX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("MEALMAX_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file empties addr", func() {
			tmpFile := createTempConfigFile("addr: \"\"\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MEALMAX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("MEALMAX_MAX_SESSIONS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"MEALMAX_CONFIG",
		"MEALMAX_ADDR",
		"MEALMAX_DB_PATH",
		"MEALMAX_SQL_CREATE_TABLE_PATH",
		"MEALMAX_HISTORY_WORKER_COUNT",
		"MEALMAX_RANDOM_SEED",
		"MEALMAX_MAX_SESSIONS",
		"MEALMAX_METRICS_NAMESPACE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "mealmax-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
