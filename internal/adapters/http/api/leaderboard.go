package api

import (
	"context"
	"net/http"

	"github.com/okian/mealmax/internal/domain/types"
	"github.com/okian/mealmax/pkg/logger"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, sortBy types.SortBy, limit int) ([]types.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
	logger   logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int, l logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
		logger:   l,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?sort=wins|win_pct&limit=N.
// sort_by is accepted as an alias of sort.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"

	q := r.URL.Query()
	raw := q.Get("sort")
	if raw == "" {
		raw = q.Get("sort_by")
	}
	sortBy, err := types.ParseSortBy(raw)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}

	n, err := parseLimit(op, r, h.maxLimit, h.maxLimit)
	if err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}

	entries, err := h.deps.Leaderboard(r.Context(), sortBy, n)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
