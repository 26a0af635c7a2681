// Package battle stages two meals and resolves a battle between them.
package battle

import (
	"sync"

	"github.com/okian/mealmax/internal/domain/model"
)

// MaxCombatants is the size of a full staging area.
const MaxCombatants = 2

// Combatants is the staging area for one battle session.
type Combatants struct {
	mu    sync.Mutex
	meals []model.Meal
}

// NewCombatants returns an empty staging area.
func NewCombatants() *Combatants {
	return &Combatants{meals: make([]model.Meal, 0, MaxCombatants)}
}

// Add stages meal. The same meal may be staged twice.
func (c *Combatants) Add(meal model.Meal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.meals) >= MaxCombatants {
		return ErrCombatantsFull
	}
	c.meals = append(c.meals, meal)
	return nil
}

// Clear empties the staging area.
func (c *Combatants) Clear() {
	c.mu.Lock()
	c.meals = c.meals[:0]
	c.mu.Unlock()
}

// List returns a snapshot of the staged meals in staging order.
func (c *Combatants) List() []model.Meal {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Meal, len(c.meals))
	copy(out, c.meals)
	return out
}

// Len returns the number of staged meals.
func (c *Combatants) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.meals)
}

// pair returns both staged meals or ErrNotEnoughCombatants.
func (c *Combatants) pair() (model.Meal, model.Meal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.meals) != MaxCombatants {
		return model.Meal{}, model.Meal{}, ErrNotEnoughCombatants
	}
	return c.meals[0], c.meals[1], nil
}

// removeAt drops the meal at index i if present.
func (c *Combatants) removeAt(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i < 0 || i >= len(c.meals) {
		return
	}
	c.meals = append(c.meals[:i], c.meals[i+1:]...)
}
