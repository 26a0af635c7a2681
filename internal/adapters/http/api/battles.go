package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/logger"
)

// BattleDependencies defines the battle session operations.
type BattleDependencies interface {
	NewBattle(ctx context.Context) (string, error)
	EndBattle(ctx context.Context, battleID string) error
	PrepCombatant(ctx context.Context, battleID string, mealID int64) error
	Combatants(ctx context.Context, battleID string) ([]model.Meal, error)
	ClearCombatants(ctx context.Context, battleID string) error
	Battle(ctx context.Context, battleID string) (model.BattleRecord, error)
	RetryStats(ctx context.Context, battleID string) (model.BattleRecord, error)
	History(ctx context.Context, limit int) ([]model.BattleRecord, error)
}

// BattlesHandler handles battle session requests.
type BattlesHandler struct {
	deps     BattleDependencies
	maxLimit int
	logger   logger.Logger
}

// NewBattlesHandler creates a new battles handler.
func NewBattlesHandler(deps BattleDependencies, maxLimit int, l logger.Logger) *BattlesHandler {
	return &BattlesHandler{deps: deps, maxLimit: maxLimit, logger: l}
}

type newBattleResponse struct {
	BattleID string `json:"battle_id"`
}

type prepRequest struct {
	MealID int64 `json:"meal_id"`
}

type battleResponse struct {
	Winner string             `json:"winner"`
	Battle model.BattleRecord `json:"battle"`
}

// HandleNew handles POST /battles.
func (h *BattlesHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	const op = "api.new_battle"

	id, err := h.deps.NewBattle(r.Context())
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, newBattleResponse{BattleID: id})
}

// HandleEnd handles DELETE /battles/{id}.
func (h *BattlesHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	const op = "api.end_battle"

	if err := h.deps.EndBattle(r.Context(), r.PathValue("id")); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "battle ended"})
}

// HandlePrep handles POST /battles/{id}/combatants.
func (h *BattlesHandler) HandlePrep(w http.ResponseWriter, r *http.Request) {
	const op = "api.prep_combatant"

	var req prepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.MealID < 1 {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, errors.New("missing meal_id")))
		return
	}

	if err := h.deps.PrepCombatant(r.Context(), r.PathValue("id"), req.MealID); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}

	combatants, err := h.deps.Combatants(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, combatants)
}

// HandleList handles GET /battles/{id}/combatants.
func (h *BattlesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_combatants"

	combatants, err := h.deps.Combatants(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, combatants)
}

// HandleClear handles DELETE /battles/{id}/combatants.
func (h *BattlesHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_combatants"

	if err := h.deps.ClearCombatants(r.Context(), r.PathValue("id")); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "combatants cleared"})
}

// HandleResolve handles POST /battles/{id}/resolve.
func (h *BattlesHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	const op = "api.resolve_battle"

	rec, err := h.deps.Battle(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, battleResponse{Winner: rec.WinnerName, Battle: rec})
}

// HandleRetry handles POST /battles/{id}/retry.
func (h *BattlesHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	const op = "api.retry_battle"

	rec, err := h.deps.RetryStats(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, battleResponse{Winner: rec.WinnerName, Battle: rec})
}

// HandleHistory handles GET /battles/history?limit=N.
func (h *BattlesHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.battle_history"

	n, err := parseLimit(op, r, min(defaultHistoryLimit, h.maxLimit), h.maxLimit)
	if err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	recs, err := h.deps.History(r.Context(), n)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
