package model

import "time"

// BattleRecord is the persisted summary of one resolved battle.
type BattleRecord struct {
	BattleID    string    `json:"battle_id"`
	WinnerID    int64     `json:"winner_id"`
	WinnerName  string    `json:"winner"`
	WinnerScore float64   `json:"winner_score"`
	LoserID     int64     `json:"loser_id"`
	LoserName   string    `json:"loser"`
	LoserScore  float64   `json:"loser_score"`
	Delta       float64   `json:"delta"`
	Draw        float64   `json:"draw"`
	Upset       bool      `json:"upset"`
	ResolvedAt  time.Time `json:"resolved_at"`
}
