// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Difficulty is the preparation tier of a meal.
type Difficulty string

// Known difficulty tiers. MED is the stored spelling of the medium tier.
const (
	DifficultyLow    Difficulty = "LOW"
	DifficultyMedium Difficulty = "MED"
	DifficultyHigh   Difficulty = "HIGH"
)

// ParseDifficulty accepts LOW, MED, MEDIUM or HIGH in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return DifficultyLow, nil
	case "MED", "MEDIUM":
		return DifficultyMedium, nil
	case "HIGH":
		return DifficultyHigh, nil
	}
	return "", fmt.Errorf("%w: %s (must be 'LOW', 'MED', or 'HIGH')", ErrInvalidDifficulty, s)
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyLow, DifficultyMedium, DifficultyHigh:
		return true
	}
	return false
}

func (d Difficulty) String() string { return string(d) }

// Meal is a catalog record that can be staged for battle.
type Meal struct {
	ID         int64      `json:"id"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
	Deleted    bool       `json:"-"`
}

// Result is the outcome recorded against a meal after a battle.
type Result string

// Battle results.
const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// Valid reports whether r is win or loss.
func (r Result) Valid() bool {
	return r == ResultWin || r == ResultLoss
}

func (r Result) String() string { return string(r) }
