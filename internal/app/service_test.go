package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/mealmax/internal/adapters/repository"
	service "github.com/okian/mealmax/internal/app"
	"github.com/okian/mealmax/internal/domain/battle"
	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/internal/domain/types"
	"github.com/okian/mealmax/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newStartedService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithDBPath(filepath.Join(t.TempDir(), "mealmax.db")),
		service.WithRandomSource(battle.FixedSource(0.5)),
		service.WithWorkerCount(2),
		service.WithLogger(logger.NewNop()),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that has not started", t, func() {
		svc := service.New(service.WithLogger(logger.NewNop()))

		Convey("Then catalog calls and new battles are refused", func() {
			_, err := svc.GetMealByID(context.Background(), 1)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.NewBattle(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Then stopping is a no-op", func() {
			svc.Stop()
		})
	})

	Convey("Given a started service", t, func() {
		svc := newStartedService(t, service.WithMaxSessions(5), service.WithQueueSize(64))

		Convey("Then stats reflect the configuration", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 64)
			So(stats["maxSessions"], ShouldEqual, 5)
			So(stats["totalMeals"], ShouldEqual, 0)
		})

		Convey("Then starting again is harmless", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
		})

		Convey("When the service stops", func() {
			svc.Stop()

			Convey("Then it reports stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Catalog(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newStartedService(t)

		Convey("When meals are created, read and deleted", func() {
			m, err := svc.CreateMeal(ctx, "Ramen", "Japanese", 12, "MED")
			So(err, ShouldBeNil)

			got, err := svc.GetMealByName(ctx, "Ramen")
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, m.ID)

			So(svc.DeleteMeal(ctx, m.ID), ShouldBeNil)
			_, err = svc.GetMealByID(ctx, m.ID)

			Convey("Then the deleted meal is reported as deleted", func() {
				So(errors.Is(err, repository.ErrDeleted), ShouldBeTrue)
			})
		})

		Convey("When the catalog is cleared", func() {
			_, err := svc.CreateMeal(ctx, "Ramen", "Japanese", 12, "MED")
			So(err, ShouldBeNil)
			So(svc.ClearMeals(ctx), ShouldBeNil)

			Convey("Then no meals remain", func() {
				So(svc.GetStats()["totalMeals"], ShouldEqual, 0)
			})
		})
	})
}

func TestService_Sessions(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service limited to two sessions", t, func() {
		svc := newStartedService(t, service.WithMaxSessions(2))

		a, err := svc.NewBattle(ctx)
		So(err, ShouldBeNil)
		_, err = svc.NewBattle(ctx)
		So(err, ShouldBeNil)

		Convey("Then a third session is refused", func() {
			_, err := svc.NewBattle(ctx)
			So(errors.Is(err, service.ErrTooManySessions), ShouldBeTrue)
			So(svc.GetStats()["activeSessions"], ShouldEqual, 2)
		})

		Convey("Then ending a session frees a slot", func() {
			So(svc.EndBattle(ctx, a), ShouldBeNil)
			_, err := svc.NewBattle(ctx)
			So(err, ShouldBeNil)
		})

		Convey("Then unknown sessions are reported", func() {
			So(errors.Is(svc.EndBattle(ctx, "nope"), service.ErrSessionNotFound), ShouldBeTrue)
			_, err := svc.Combatants(ctx, "nope")
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
			So(errors.Is(svc.PrepCombatant(ctx, "nope", 1), service.ErrSessionNotFound), ShouldBeTrue)
			So(errors.Is(svc.ClearCombatants(ctx, "nope"), service.ErrSessionNotFound), ShouldBeTrue)
			_, err = svc.Battle(ctx, "nope")
			So(errors.Is(err, service.ErrSessionNotFound), ShouldBeTrue)
		})
	})
}

func waitForHistory(ctx context.Context, svc *service.Service, n int) []model.BattleRecord {
	deadline := time.Now().Add(3 * time.Second)
	for {
		recs, err := svc.History(ctx, 0)
		if err == nil && len(recs) >= n {
			return recs
		}
		if time.Now().After(deadline) {
			return recs
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestService_Battle(t *testing.T) {
	ctx := context.Background()

	Convey("Given Spaghetti and Pizza in the catalog and a fixed draw of 0.5", t, func() {
		svc := newStartedService(t)
		spaghetti, err := svc.CreateMeal(ctx, "Spaghetti", "Italian", 10.0, "LOW")
		So(err, ShouldBeNil)
		pizza, err := svc.CreateMeal(ctx, "Pizza", "Italian", 15.0, "MEDIUM")
		So(err, ShouldBeNil)

		id, err := svc.NewBattle(ctx)
		So(err, ShouldBeNil)

		Convey("When only one combatant is staged", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			_, err := svc.Battle(ctx, id)

			Convey("Then the battle is refused", func() {
				So(errors.Is(err, battle.ErrNotEnoughCombatants), ShouldBeTrue)
			})
		})

		Convey("When a third combatant is staged", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)
			err := svc.PrepCombatant(ctx, id, pizza.ID)

			Convey("Then the staging area reports it is full", func() {
				So(errors.Is(err, battle.ErrCombatantsFull), ShouldBeTrue)
			})

			Convey("Then clearing allows staging again", func() {
				So(svc.ClearCombatants(ctx, id), ShouldBeNil)
				list, err := svc.Combatants(ctx, id)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)
			})
		})

		Convey("When an unknown or deleted meal is staged", func() {
			So(errors.Is(svc.PrepCombatant(ctx, id, 999), repository.ErrNotFound), ShouldBeTrue)
			So(svc.DeleteMeal(ctx, pizza.ID), ShouldBeNil)
			So(errors.Is(svc.PrepCombatant(ctx, id, pizza.ID), repository.ErrDeleted), ShouldBeTrue)
		})

		Convey("When both are staged and the battle resolves", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)

			rec, err := svc.Battle(ctx, id)
			So(err, ShouldBeNil)

			Convey("Then the underdog wins and stays staged", func() {
				So(rec.WinnerName, ShouldEqual, "Spaghetti")
				So(rec.LoserName, ShouldEqual, "Pizza")
				So(rec.Upset, ShouldBeTrue)
				list, err := svc.Combatants(ctx, id)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 1)
				So(list[0].ID, ShouldEqual, spaghetti.ID)
			})

			Convey("Then both meals have their stats recorded", func() {
				rows, err := svc.Leaderboard(ctx, types.SortByWins, 0)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Meal, ShouldEqual, "Spaghetti")
				So(rows[0].Wins, ShouldEqual, 1)
				So(rows[1].Battles, ShouldEqual, 1)
				So(rows[1].Wins, ShouldEqual, 0)
			})

			Convey("Then the battle reaches the history", func() {
				recs := waitForHistory(ctx, svc, 1)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].BattleID, ShouldEqual, rec.BattleID)
				So(svc.GetStats()["battlesResolved"], ShouldEqual, int64(1))
			})

			Convey("Then there is nothing to retry", func() {
				_, err := svc.RetryStats(ctx, id)
				So(errors.Is(err, service.ErrNothingToRetry), ShouldBeTrue)
			})
		})

		Convey("When the stat commit fails before anything is applied", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			rec, err := svc.Battle(cctx, id)

			Convey("Then the error surfaces and a retry applies both updates once", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(rec.WinnerName, ShouldEqual, "Spaghetti")

				retried, err := svc.RetryStats(ctx, id)
				So(err, ShouldBeNil)
				So(retried.BattleID, ShouldEqual, rec.BattleID)

				rows, err := svc.Leaderboard(ctx, types.SortByWins, 0)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Battles, ShouldEqual, 1)
				So(rows[1].Battles, ShouldEqual, 1)

				_, err = svc.RetryStats(ctx, id)
				So(errors.Is(err, service.ErrNothingToRetry), ShouldBeTrue)
			})
		})

		Convey("When the loser is deleted after staging", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)
			So(svc.DeleteMeal(ctx, pizza.ID), ShouldBeNil)

			_, err := svc.Battle(ctx, id)

			Convey("Then the win stays applied and a retry does not count it twice", func() {
				So(errors.Is(err, repository.ErrDeleted), ShouldBeTrue)

				_, err = svc.RetryStats(ctx, id)
				So(errors.Is(err, repository.ErrDeleted), ShouldBeTrue)

				rows, err := svc.Leaderboard(ctx, types.SortByWins, 0)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Meal, ShouldEqual, "Spaghetti")
				So(rows[0].Battles, ShouldEqual, 1)
				So(rows[0].Wins, ShouldEqual, 1)
				So(svc.GetStats()["statUpdateFailures"], ShouldEqual, int64(1))
			})
		})

		Convey("When a failed resolution is pending", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Battle(cctx, id)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)

			Convey("Then another battle is refused until the retry lands", func() {
				_, err := svc.Battle(ctx, id)
				So(errors.Is(err, service.ErrPendingStats), ShouldBeTrue)

				_, err = svc.RetryStats(ctx, id)
				So(err, ShouldBeNil)

				rec, err := svc.Battle(ctx, id)
				So(err, ShouldBeNil)
				So(rec.WinnerName, ShouldEqual, "Spaghetti")

				rows, err := svc.Leaderboard(ctx, types.SortByWins, 0)
				So(err, ShouldBeNil)
				So(rows[0].Meal, ShouldEqual, "Spaghetti")
				So(rows[0].Wins, ShouldEqual, 2)
				So(rows[1].Battles, ShouldEqual, 2)
			})

			Convey("Then clearing the combatants discards the pending updates", func() {
				So(svc.ClearCombatants(ctx, id), ShouldBeNil)

				_, err := svc.RetryStats(ctx, id)
				So(errors.Is(err, service.ErrNothingToRetry), ShouldBeTrue)

				rows, err := svc.Leaderboard(ctx, types.SortByWins, 0)
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When the catalog is cleared while meals are staged", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)
			So(svc.ClearMeals(ctx), ShouldBeNil)

			ramen, err := svc.CreateMeal(ctx, "Ramen", "Japanese", 12.0, "MED")
			So(err, ShouldBeNil)
			tacos, err := svc.CreateMeal(ctx, "Tacos", "Mexican", 8.0, "LOW")
			So(err, ShouldBeNil)

			Convey("Then the new meals reuse the old ids", func() {
				So(ramen.ID, ShouldEqual, spaghetti.ID)
				So(tacos.ID, ShouldEqual, pizza.ID)
			})

			Convey("Then the session no longer holds the old meals", func() {
				list, err := svc.Combatants(ctx, id)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)

				_, err = svc.Battle(ctx, id)
				So(errors.Is(err, battle.ErrNotEnoughCombatants), ShouldBeTrue)
			})

			Convey("Then the new meals have not fought", func() {
				_, _ = svc.Battle(ctx, id)
				rows, err := svc.Leaderboard(ctx, types.SortByWins, 0)
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When the catalog is cleared with a resolution pending", func() {
			So(svc.PrepCombatant(ctx, id, spaghetti.ID), ShouldBeNil)
			So(svc.PrepCombatant(ctx, id, pizza.ID), ShouldBeNil)

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Battle(cctx, id)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(svc.ClearMeals(ctx), ShouldBeNil)

			Convey("Then nothing is left to retry against the new catalog", func() {
				_, err := svc.RetryStats(ctx, id)
				So(errors.Is(err, service.ErrNothingToRetry), ShouldBeTrue)
			})
		})
	})
}
