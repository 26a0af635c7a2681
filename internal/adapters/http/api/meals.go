package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/mealmax/internal/domain/model"
	"github.com/okian/mealmax/pkg/logger"
)

// MealDependencies defines the catalog operations used by MealsHandler.
type MealDependencies interface {
	CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (model.Meal, error)
	DeleteMeal(ctx context.Context, id int64) error
	GetMealByID(ctx context.Context, id int64) (model.Meal, error)
	GetMealByName(ctx context.Context, name string) (model.Meal, error)
	ClearMeals(ctx context.Context) error
}

// MealsHandler handles catalog requests.
type MealsHandler struct {
	deps   MealDependencies
	logger logger.Logger
}

// NewMealsHandler creates a new meals handler.
func NewMealsHandler(deps MealDependencies, l logger.Logger) *MealsHandler {
	return &MealsHandler{deps: deps, logger: l}
}

// createMealRequest mirrors the OpenAPI schema for POST /meals.
type createMealRequest struct {
	Meal       string  `json:"meal"`
	Cuisine    string  `json:"cuisine"`
	Price      float64 `json:"price"`
	Difficulty string  `json:"difficulty"`
}

func (c createMealRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Meal) == "":
		return errors.New("missing meal")
	case strings.TrimSpace(c.Cuisine) == "":
		return errors.New("missing cuisine")
	case strings.TrimSpace(c.Difficulty) == "":
		return errors.New("missing difficulty")
	}
	return nil
}

// HandleCreate handles POST /meals.
func (h *MealsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_meal"

	var req createMealRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		fail(r.Context(), h.logger, w, WrapKind(op, ErrBadRequest, err))
		return
	}

	meal, err := h.deps.CreateMeal(r.Context(), req.Meal, req.Cuisine, req.Price, req.Difficulty)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

// HandleGetByID handles GET /meals/{id}.
func (h *MealsHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_meal"

	id, err := pathID(op, r)
	if err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	meal, err := h.deps.GetMealByID(r.Context(), id)
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// HandleGetByName handles GET /meals/by-name/{name}.
func (h *MealsHandler) HandleGetByName(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_meal_by_name"

	meal, err := h.deps.GetMealByName(r.Context(), r.PathValue("name"))
	if err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

// HandleDelete handles DELETE /meals/{id}.
func (h *MealsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_meal"

	id, err := pathID(op, r)
	if err != nil {
		fail(r.Context(), h.logger, w, err)
		return
	}
	if err := h.deps.DeleteMeal(r.Context(), id); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "meal deleted"})
}

// HandleClear handles DELETE /meals.
func (h *MealsHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	const op = "api.clear_meals"

	if err := h.deps.ClearMeals(r.Context()); err != nil {
		fail(r.Context(), h.logger, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "meals cleared"})
}

func pathID(op string, r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, WrapKind(op, ErrBadRequest, errors.New("id must be a positive integer"))
	}
	return id, nil
}
