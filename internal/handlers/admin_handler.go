package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/nekto007/language-learning-tool/internal/middleware"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/schema"
	"github.com/nekto007/language-learning-tool/internal/service"
	"github.com/nekto007/language-learning-tool/internal/webutil"
)

// AdminHandler covers the authoring endpoints behind RequireAdmin.
type AdminHandler struct {
	admin    *service.CourseAdminService
	importer *schema.Importer
}

func NewAdminHandler(admin *service.CourseAdminService, importer *schema.Importer) *AdminHandler {
	return &AdminHandler{admin: admin, importer: importer}
}

// CreateCourse handles POST /api/v1/admin/courses.
func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.CreateCourseRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.admin.Create(r.Context(), req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusCreated, resp)
}

// ListCourses handles GET /api/v1/admin/courses?active=true.
func (h *AdminHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	courses, err := h.admin.List(r.Context(), activeOnly)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /api/v1/admin/courses/{course_id}.
func (h *AdminHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	courseID, err := parseUintParam(r, "course_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	course, err := h.admin.Get(r.Context(), courseID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, course)
}

// UpdateCourse handles PATCH /api/v1/admin/courses/{course_id}.
func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	courseID, err := parseUintParam(r, "course_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	var req model.UpdateCourseRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	course, err := h.admin.Update(r.Context(), courseID, req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, course)
}

// BulkAction handles POST /api/v1/admin/courses/bulk.
func (h *AdminHandler) BulkAction(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	var req model.BulkCourseActionRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.admin.Bulk(r.Context(), req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// ExportSchema handles GET /api/v1/admin/books/{book_id}/schema and returns
// the stored block layout as YAML.
func (h *AdminHandler) ExportSchema(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	bookID, err := parseUintParam(r, "book_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	exported, err := h.importer.Export(r.Context(), bookID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	data, err := schema.Marshal(exported)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportSchema handles PUT /api/v1/admin/books/{book_id}/schema. The body is
// YAML or JSON; the layout is validated before anything is replaced.
func (h *AdminHandler) ImportSchema(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	bookID, err := parseUintParam(r, "book_id")
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, 1<<20)
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		webutil.HandleError(w, logger, model.NewAppError("INVALID_BODY", "Request body too large or unreadable", "", model.ErrInvalidInput))
		return
	}

	parsed, err := schema.Parse(data)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	if err := h.importer.Import(r.Context(), bookID, parsed); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
