// Package types contains common types used across the application
package types

import (
	"errors"
	"fmt"
	"strings"
)

// SortBy selects the leaderboard ordering.
type SortBy string

// Supported leaderboard orderings.
const (
	SortByWins   SortBy = "wins"
	SortByWinPct SortBy = "win_pct"
)

// ErrInvalidSortBy reports an unknown leaderboard ordering.
var ErrInvalidSortBy = errors.New("invalid sort_by parameter")

// ParseSortBy maps a query value onto a SortBy; empty means wins.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(strings.TrimSpace(s)) {
	case "", SortByWins:
		return SortByWins, nil
	case SortByWinPct:
		return SortByWinPct, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSortBy, s)
}

// LeaderboardEntry represents a leaderboard row
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	ID         int64   `json:"id"`
	Meal       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
	Battles    int     `json:"battles"`
	Wins       int     `json:"wins"`
	WinPct     float64 `json:"win_pct"`
}
