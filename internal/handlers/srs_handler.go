package handlers

import (
	"net/http"

	"github.com/nekto007/language-learning-tool/internal/middleware"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/service"
	"github.com/nekto007/language-learning-tool/internal/webutil"
)

type SRSHandler struct {
	srs    *service.SRSService
	review *service.ReviewService
	users  *service.UserService
}

func NewSRSHandler(srs *service.SRSService, review *service.ReviewService, users *service.UserService) *SRSHandler {
	return &SRSHandler{srs: srs, review: review, users: users}
}

// GetSession handles GET /api/srs/session/{lesson_id}.
func (h *SRSHandler) GetSession(w http.ResponseWriter, r *http.Request) {
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

	session, err := h.srs.BuildSession(r.Context(), userID, lessonID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, session)
}

// Grade handles POST /api/srs/grade.
func (h *SRSHandler) Grade(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	var req model.GradeRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.srs.Grade(r.Context(), userID, req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// AddCard handles POST /api/srs/add-card.
func (h *SRSHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	var req model.AddCardRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.srs.AddCard(r.Context(), userID, req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}

// DueCounts handles GET /api/srs/counts.
func (h *SRSHandler) DueCounts(w http.ResponseWriter, r *http.Request) {
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

	counts, err := h.review.DueCounts(r.Context(), user)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, counts)
}
