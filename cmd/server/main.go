package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekto007/language-learning-tool/internal/cache"
	"github.com/nekto007/language-learning-tool/internal/config"
	"github.com/nekto007/language-learning-tool/internal/coursegen"
	"github.com/nekto007/language-learning-tool/internal/handlers"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/scheduler"
	"github.com/nekto007/language-learning-tool/internal/schema"
	"github.com/nekto007/language-learning-tool/internal/service"
	"github.com/nekto007/language-learning-tool/internal/slicer"
	"github.com/nekto007/language-learning-tool/internal/tasks"
	"github.com/nekto007/language-learning-tool/internal/vocab"

	"github.com/lmittmann/tint"
)

func main() {
	cfg, err := config.Load("./configs")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	logger.Info("Starting", "app", config.AppName, "version", config.AppVersion)

	db, err := repository.NewDB(cfg.Database.URL, logger)
	if err != nil {
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		logger.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.App.DefaultTimezone)
	if err != nil {
		logger.Error("Invalid default timezone", "timezone", cfg.App.DefaultTimezone, "error", err)
		os.Exit(1)
	}

	// repositories
	bookRepo := repository.NewGormBookRepository()
	blockRepo := repository.NewGormBlockRepository()
	wordRepo := repository.NewGormWordRepository()
	taskRepo := repository.NewGormTaskRepository()
	courseRepo := repository.NewGormCourseRepository()
	lessonRepo := repository.NewGormLessonRepository()
	progressRepo := repository.NewGormProgressRepository()
	srsRepo := repository.NewGormSRSRepository()
	grammarRepo := repository.NewGormGrammarRepository()
	userRepo := repository.NewGormUserRepository(cfg.App.DefaultTimezone)

	// course compilation pipeline
	taskSvc := tasks.NewService(db, blockRepo, taskRepo, logger)
	importer := schema.NewImporter(db, bookRepo, blockRepo, logger)
	generator := coursegen.NewGenerator(
		db, bookRepo, blockRepo, courseRepo, importer,
		vocab.NewExtractor(db, blockRepo, wordRepo),
		taskSvc,
		slicer.NewSlicer(blockRepo, lessonRepo, taskRepo, taskSvc, logger, loc),
		logger,
	)

	// application services
	users := service.NewUserService(db, userRepo)
	availability := service.NewAvailabilityService(db, lessonRepo, progressRepo, logger)
	lessons := service.NewLessonService(db, lessonRepo, progressRepo, courseRepo, srsRepo, userRepo, availability, logger)
	srsSvc := service.NewSRSService(db, lessonRepo, srsRepo, wordRepo, logger)
	review := service.NewReviewService(db, srsRepo, grammarRepo, logger)
	plans := service.NewPlanService(db, courseRepo, lessonRepo, progressRepo, grammarRepo, srsRepo, bookRepo, blockRepo, review, logger)
	progress := service.NewProgressService(db, bookRepo, progressRepo, userRepo, logger)
	grammar := service.NewGrammarService(db, grammarRepo, userRepo, logger)
	admin := service.NewCourseAdminService(db, courseRepo, lessonRepo, generator, logger)

	planCache := cache.New(time.Duration(cfg.App.CacheTTLSeconds) * time.Second)
	jobs := scheduler.New(cfg, db, userRepo, plans, planCache, logger)
	if err := jobs.Start(); err != nil {
		logger.Error("Failed to start background jobs", "error", err)
		os.Exit(1)
	}
	defer jobs.Stop()

	router := handlers.NewRouter(cfg, logger, handlers.Handlers{
		Lesson:   handlers.NewLessonHandler(lessons, users),
		SRS:      handlers.NewSRSHandler(srsSvc, review, users),
		Plan:     handlers.NewPlanHandler(plans, users),
		Grammar:  handlers.NewGrammarHandler(grammar, users),
		Progress: handlers.NewProgressHandler(progress),
		Admin:    handlers.NewAdminHandler(admin, importer),
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// newLogger builds the process logger: colorized text in development, JSON
// otherwise, controlled by APP_ENV.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if os.Getenv("APP_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
