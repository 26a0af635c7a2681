package model_test

import (
	"errors"
	"testing"

	"github.com/okian/mealmax/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDifficulty(t *testing.T) {
	Convey("Given difficulty strings", t, func() {
		Convey("When they name a known tier", func() {
			cases := map[string]model.Difficulty{
				"LOW":     model.DifficultyLow,
				"low":     model.DifficultyLow,
				"MED":     model.DifficultyMedium,
				"Medium":  model.DifficultyMedium,
				" HIGH  ": model.DifficultyHigh,
			}

			Convey("Then they parse to the canonical tier", func() {
				for in, want := range cases {
					got, err := model.ParseDifficulty(in)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, want)
					So(got.Valid(), ShouldBeTrue)
				}
			})
		})

		Convey("When the tier is unknown", func() {
			_, err := model.ParseDifficulty("hard")

			Convey("Then it is rejected with the allowed values", func() {
				So(errors.Is(err, model.ErrInvalidDifficulty), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "invalid difficulty provided: hard (must be 'LOW', 'MED', or 'HIGH')")
			})
		})

		Convey("When a raw value bypasses parsing", func() {
			So(model.Difficulty("EXTREME").Valid(), ShouldBeFalse)
		})
	})
}

func TestResult(t *testing.T) {
	Convey("Given battle results", t, func() {
		So(model.ResultWin.Valid(), ShouldBeTrue)
		So(model.ResultLoss.Valid(), ShouldBeTrue)
		So(model.Result("winner").Valid(), ShouldBeFalse)
		So(model.ResultWin.String(), ShouldEqual, "win")
	})
}
