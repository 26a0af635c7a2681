package api

import (
	"errors"
	"net/http"

	"github.com/okian/mealmax/internal/adapters/repository"
	service "github.com/okian/mealmax/internal/app"
	"github.com/okian/mealmax/internal/domain/battle"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeds maximum")
)

// Error tags a failure with the handler operation and a sentinel kind.
type Error struct {
	Op   string
	Kind error
	Err  error
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) *Error {
	return &Error{Op: op, Kind: kind}
}

// Wrap tags err with op, keeping err's own kind.
func Wrap(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	return e.Op + ": " + e.message()
}

// message is the text shown to clients.
func (e *Error) message() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Kind != nil:
		return e.Kind.Error()
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classify maps an error onto an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, battle.ErrCombatantsFull):
		return http.StatusConflict, "combatants_full"
	case errors.Is(err, battle.ErrNotEnoughCombatants):
		return http.StatusConflict, "not_enough_combatants"
	case errors.Is(err, service.ErrNothingToRetry):
		return http.StatusConflict, "nothing_to_retry"
	case errors.Is(err, service.ErrPendingStats):
		return http.StatusConflict, "pending_stats"
	case errors.Is(err, repository.ErrDuplicateMeal):
		return http.StatusConflict, "duplicate_meal"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrDeleted):
		return http.StatusGone, "deleted"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidPrice),
		errors.Is(err, repository.ErrInvalidDifficulty),
		errors.Is(err, repository.ErrInvalidName),
		errors.Is(err, repository.ErrInvalidResult),
		errors.Is(err, repository.ErrInvalidSortBy),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusTooManyRequests, "too_many_sessions"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
