package repository

import (
	"errors"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/internal/domain/types"
)

// Sentinel kinds for catalog errors. Messages are phrased to complete a
// sentence such as "meal with ID 4 not found".
var (
	ErrNotFound       = errors.New("not found")
	ErrDeleted        = errors.New("has been deleted")
	ErrDuplicateMeal  = errors.New("already exists")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrInvalidName    = errors.New("meal name must not be empty")
	ErrInvalidResult  = errors.New("invalid result")
	ErrInvalidLimit   = errors.New("invalid limit")
	ErrNotConfigured  = errors.New("storage is not configured")
	ErrSchemaRequired = errors.New("schema script is empty")

	ErrInvalidDifficulty = model.ErrInvalidDifficulty
	ErrInvalidSortBy     = types.ErrInvalidSortBy
)
