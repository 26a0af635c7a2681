package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/mealmax/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.HistoryQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.HistoryWorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 1_000)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "mealmax")
			convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "battle")
			convey.So(cfg.MetricsLatencyBuckets, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the database path is blank", func() {
			cfg.DBPath = "  "

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "db_path")
			})
		})

		convey.Convey("When a metric name part has a dash", func() {
			cfg.MetricsNamespace = "meal-max"

			convey.Convey("Then validation names the key", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_namespace")
			})
		})

		convey.Convey("When latency buckets are not increasing", func() {
			cfg.MetricsLatencyBuckets = []float64{1, 10, 10}

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_latency_buckets")
			})
		})

		convey.Convey("When a constant label uses a reserved name", func() {
			cfg.MetricsLabels = map[string]string{"__name__": "x"}

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the leaderboard limit is zero", func() {
			cfg.MaxLeaderboardLimit = 0

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}
