// Package handlers exposes the HTTP surface: lesson runtime, SRS sessions,
// the daily plan, reading progress and the admin authoring endpoints.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/nekto007/language-learning-tool/internal/middleware"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/service"
	"github.com/nekto007/language-learning-tool/internal/webutil"

	"github.com/go-chi/chi/v5"
)

// parseUintParam reads a numeric chi path parameter.
func parseUintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, model.NewAppError("INVALID_PARAM", "Invalid "+name, name, model.ErrInvalidInput)
	}
	return uint(value), nil
}

type LessonHandler struct {
	lessons *service.LessonService
	users   *service.UserService
}

func NewLessonHandler(lessons *service.LessonService, users *service.UserService) *LessonHandler {
	return &LessonHandler{lessons: lessons, users: users}
}

// GetContent handles GET /api/v1/lesson/{lesson_id}.
func (h *LessonHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	lessonID, err := parseUintParam(r, "lesson_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	content, err := h.lessons.Content(r.Context(), userID, lessonID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, content)
}

// Complete handles POST /api/v1/lesson/{lesson_id}/complete.
func (h *LessonHandler) Complete(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	lessonID, err := parseUintParam(r, "lesson_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	var req model.CompleteLessonRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if err := h.lessons.Complete(r.Context(), user, lessonID, req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, model.CompleteLessonResponse{Success: true})
}

// Schedule handles GET /api/v1/courses/{course_id}/schedule.
func (h *LessonHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	courseID, err := parseUintParam(r, "course_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	schedule, err := h.lessons.Schedule(r.Context(), courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, schedule)
}

// Enroll handles POST /api/v1/courses/{course_id}/enroll.
func (h *LessonHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	courseID, err := parseUintParam(r, "course_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	enrollment, err := h.lessons.Enroll(r.Context(), userID, courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, model.EnrollResponse{
		Success:      true,
		EnrollmentID: enrollment.EnrollmentID,
	})
}
