package model

import "errors"

// Sentinel kinds for model validation.
var (
	ErrInvalidDifficulty = errors.New("invalid difficulty provided")
)
