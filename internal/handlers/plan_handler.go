package handlers

import (
	"net/http"

	"github.com/nekto007/language-learning-tool/internal/middleware"
	"github.com/nekto007/language-learning-tool/internal/service"
	"github.com/nekto007/language-learning-tool/internal/webutil"
)

type PlanHandler struct {
	plans *service.PlanService
	users *service.UserService
}

func NewPlanHandler(plans *service.PlanService, users *service.UserService) *PlanHandler {
	return &PlanHandler{plans: plans, users: users}
}

// DailyPlan handles GET /api/v1/daily-plan.
func (h *PlanHandler) DailyPlan(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	plan, err := h.plans.DailyPlan(r.Context(), user)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, plan)
}

// Streak handles GET /api/v1/streak.
func (h *PlanHandler) Streak(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	streak, err := h.plans.Streak(r.Context(), user)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, streak)
}
