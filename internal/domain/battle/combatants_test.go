package battle_test

import (
	"errors"
	"testing"

	"github.com/okian/mealmax/internal/domain/battle"
	"github.com/okian/mealmax/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func spaghetti() model.Meal {
	return model.Meal{ID: 1, Name: "Spaghetti", Cuisine: "Italian", Price: 10.0, Difficulty: model.DifficultyLow}
}

func pizza() model.Meal {
	return model.Meal{ID: 2, Name: "Pizza", Cuisine: "Italian", Price: 15.0, Difficulty: model.DifficultyMedium}
}

func sushi() model.Meal {
	return model.Meal{ID: 3, Name: "Sushi", Cuisine: "Japanese", Price: 20.0, Difficulty: model.DifficultyHigh}
}

func TestCombatants(t *testing.T) {
	Convey("Given an empty staging area", t, func() {
		c := battle.NewCombatants()
		So(c.Len(), ShouldEqual, 0)

		Convey("When two meals are added", func() {
			So(c.Add(spaghetti()), ShouldBeNil)
			So(c.Add(pizza()), ShouldBeNil)

			Convey("Then both are listed in staging order", func() {
				So(c.List(), ShouldResemble, []model.Meal{spaghetti(), pizza()})
			})

			Convey("Then a third add is rejected with the capacity message", func() {
				err := c.Add(sushi())
				So(errors.Is(err, battle.ErrCombatantsFull), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "Combatant list is full, cannot add more combatants.")
				So(c.Len(), ShouldEqual, 2)
				So(c.List()[1], ShouldResemble, pizza())
			})

			Convey("Then mutating the listed snapshot leaves the staging area intact", func() {
				list := c.List()
				list[0].Name = "Changed"
				So(c.List()[0].Name, ShouldEqual, "Spaghetti")
			})

			Convey("Then clear empties it and repeated clear is harmless", func() {
				c.Clear()
				So(c.Len(), ShouldEqual, 0)
				c.Clear()
				So(c.List(), ShouldBeEmpty)
				So(c.Add(sushi()), ShouldBeNil)
			})
		})

		Convey("When the same meal is staged twice", func() {
			So(c.Add(spaghetti()), ShouldBeNil)
			So(c.Add(spaghetti()), ShouldBeNil)

			Convey("Then both entries are kept", func() {
				So(c.Len(), ShouldEqual, 2)
			})
		})
	})
}
