// Package scheduler runs the background jobs: the hourly plan precompute that
// feeds notification delivery, and cache maintenance.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekto007/language-learning-tool/internal/cache"
	"github.com/nekto007/language-learning-tool/internal/config"
	"github.com/nekto007/language-learning-tool/internal/repository"
	"github.com/nekto007/language-learning-tool/internal/service"

	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// activeUserWindow bounds the plan precompute to users seen recently.
const activeUserWindow = 7 * 24 * time.Hour

type Scheduler struct {
	cron     *gocron.Scheduler
	cfg      *config.Config
	db       *gorm.DB
	userRepo repository.UserRepository
	plans    *service.PlanService
	plansTTL *cache.Cache
	logger   *slog.Logger
}

func New(cfg *config.Config, db *gorm.DB, userRepo repository.UserRepository, plans *service.PlanService, planCache *cache.Cache, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		cfg:      cfg,
		db:       db,
		userRepo: userRepo,
		plans:    plans,
		plansTTL: planCache,
		logger:   logger,
	}
}

// Start registers the jobs and runs them in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.Every(1).Hour().Do(s.precomputePlans); err != nil {
		return fmt.Errorf("schedule plan precompute: %w", err)
	}
	if _, err := s.cron.Every(10).Minutes().Do(s.sweepCache); err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}
	s.cron.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// precomputePlans refreshes cached daily plans for recently active users whose
// local clock is inside the notification window. The notification sender reads
// these snapshots instead of recomputing per delivery.
func (s *Scheduler) precomputePlans() {
	ctx := context.Background()
	users, err := s.userRepo.ListActive(ctx, s.db, time.Now().Add(-activeUserWindow))
	if err != nil {
		s.logger.Error("plan precompute: list users", "error", err)
		return
	}

	refreshed := 0
	for _, user := range users {
		localHour := time.Now().In(user.Location()).Hour()
		if localHour < s.cfg.App.NotificationStartHour || localHour >= s.cfg.App.NotificationEndHour {
			continue
		}
		plan, err := s.plans.DailyPlan(ctx, user)
		if err != nil {
			s.logger.Warn("plan precompute failed", "user_id", user.UserID.String(), "error", err)
			continue
		}
		s.plansTTL.Set("plan:"+user.UserID.String(), plan)
		refreshed++
	}
	s.logger.Info("plan precompute done", "users", len(users), "refreshed", refreshed)
}

func (s *Scheduler) sweepCache() {
	if removed := s.plansTTL.Sweep(); removed > 0 {
		s.logger.Debug("cache sweep", "removed", removed)
	}
}
