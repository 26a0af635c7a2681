// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/mealmax/pkg/logger"
)

const (
	defaultMaxLimit     = 100
	defaultHistoryLimit = 50
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MealDependencies
	LeaderboardDependencies
	BattleDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	mealsHandler       *MealsHandler
	leaderboardHandler *LeaderboardHandler
	battlesHandler     *BattlesHandler

	maxLimit int
	logger   logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxLimit caps the limit accepted by list endpoints.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxLimit: defaultMaxLimit,
		logger:   logger.GetOrNop().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.mealsHandler = NewMealsHandler(deps, s.logger)
	s.leaderboardHandler = NewLeaderboardHandler(deps, s.maxLimit, s.logger)
	s.battlesHandler = NewBattlesHandler(deps, s.maxLimit, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /meals", MetricsMiddleware(s.mealsHandler.HandleCreate, "meals"))
	mux.HandleFunc("DELETE /meals", MetricsMiddleware(s.mealsHandler.HandleClear, "meals"))
	mux.HandleFunc("GET /meals/{id}", MetricsMiddleware(s.mealsHandler.HandleGetByID, "meal"))
	mux.HandleFunc("DELETE /meals/{id}", MetricsMiddleware(s.mealsHandler.HandleDelete, "meal"))
	mux.HandleFunc("GET /meals/by-name/{name}", MetricsMiddleware(s.mealsHandler.HandleGetByName, "meal_by_name"))

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))

	mux.HandleFunc("POST /battles", MetricsMiddleware(s.battlesHandler.HandleNew, "battles"))
	mux.HandleFunc("GET /battles/history", MetricsMiddleware(s.battlesHandler.HandleHistory, "battle_history"))
	mux.HandleFunc("DELETE /battles/{id}", MetricsMiddleware(s.battlesHandler.HandleEnd, "battle"))
	mux.HandleFunc("POST /battles/{id}/combatants", MetricsMiddleware(s.battlesHandler.HandlePrep, "combatants"))
	mux.HandleFunc("GET /battles/{id}/combatants", MetricsMiddleware(s.battlesHandler.HandleList, "combatants"))
	mux.HandleFunc("DELETE /battles/{id}/combatants", MetricsMiddleware(s.battlesHandler.HandleClear, "combatants"))
	mux.HandleFunc("POST /battles/{id}/resolve", MetricsMiddleware(s.battlesHandler.HandleResolve, "resolve"))
	mux.HandleFunc("POST /battles/{id}/retry", MetricsMiddleware(s.battlesHandler.HandleRetry, "retry"))
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		msg = apiErr.message()
	case err != nil:
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err, logs server-side failures and writes the error body.
func fail(ctx context.Context, l logger.Logger, w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(ctx, "request failed", logger.Error(err))
	}
	writeError(w, status, code, err)
}

// parseLimit reads ?limit=, falling back to def and rejecting values
// outside [1, maxLimit].
func parseLimit(op string, r *http.Request, def, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer"))
	}
	if n > maxLimit {
		return 0, NewKind(op, ErrLimitExceeded)
	}
	return n, nil
}
