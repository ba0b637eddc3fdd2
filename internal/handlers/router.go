package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nekto007/language-learning-tool/internal/config"
	appmiddleware "github.com/nekto007/language-learning-tool/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Lesson   *LessonHandler
	SRS      *SRSHandler
	Plan     *PlanHandler
	Grammar  *GrammarHandler
	Progress *ProgressHandler
	Admin    *AdminHandler
}

// NewRouter wires middleware and routes. Everything is behind JWT auth; the
// admin subtree additionally requires an admin user.
func NewRouter(cfg *config.Config, logger *slog.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	auth := appmiddleware.JWTAuth(cfg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth)

		r.Get("/daily-plan", h.Plan.DailyPlan)
		r.Get("/streak", h.Plan.Streak)

		r.Route("/lesson/{lesson_id}", func(r chi.Router) {
			r.Get("/", h.Lesson.GetContent)
			r.Post("/complete", h.Lesson.Complete)
		})
		r.Post("/courses/{course_id}/enroll", h.Lesson.Enroll)
		r.Get("/courses/{course_id}/schedule", h.Lesson.Schedule)

		r.Route("/grammar", func(r chi.Router) {
			r.Post("/answer", h.Grammar.Answer)
			r.Get("/{slug}", h.Grammar.GetTopic)
			r.Post("/{slug}/theory-complete", h.Grammar.CompleteTheory)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(appmiddleware.RequireAdmin(cfg))

			r.Post("/courses", h.Admin.CreateCourse)
			r.Get("/courses", h.Admin.ListCourses)
			r.Post("/courses/bulk", h.Admin.BulkAction)
			r.Get("/courses/{course_id}", h.Admin.GetCourse)
			r.Patch("/courses/{course_id}", h.Admin.UpdateCourse)
			r.Get("/books/{book_id}/schema", h.Admin.ExportSchema)
			r.Put("/books/{book_id}/schema", h.Admin.ImportSchema)
		})
	})

	r.Route("/api/srs", func(r chi.Router) {
		r.Use(auth)

		r.Get("/session/{lesson_id}", h.SRS.GetSession)
		r.Post("/grade", h.SRS.Grade)
		r.Post("/add-card", h.SRS.AddCard)
		r.Get("/counts", h.SRS.DueCounts)
	})

	r.With(auth).Patch("/api/progress", h.Progress.UpdateReading)

	return r
}
