package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressService records free reading outside any course.
type ProgressService struct {
	db           *gorm.DB
	bookRepo     repository.BookRepository
	progressRepo repository.ProgressRepository
	userRepo     repository.UserRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewProgressService(db *gorm.DB, bookRepo repository.BookRepository, progressRepo repository.ProgressRepository, userRepo repository.UserRepository, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		db:           db,
		bookRepo:     bookRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// UpdateReading moves the user's reading offset inside a chapter. The chapter
// must belong to the named book.
func (s *ProgressService) UpdateReading(ctx context.Context, userID uuid.UUID, req model.UpdateReadingProgressRequest) (*model.UpdateReadingProgressResponse, error) {
	if req.OffsetPct < 0 || req.OffsetPct > 100 {
		return nil, fmt.Errorf("offset %.2f out of range: %w", req.OffsetPct, model.ErrInvalidInput)
	}
	chapter, err := s.bookRepo.FindChapterByID(ctx, s.db, req.ChapterID)
	if err != nil {
		return nil, err
	}
	if chapter.BookID != req.BookID {
		return nil, fmt.Errorf("chapter %d does not belong to book %d: %w", req.ChapterID, req.BookID, model.ErrInvalidInput)
	}

	progress := &model.ReadingProgress{
		UserID:    userID,
		BookID:    req.BookID,
		ChapterID: req.ChapterID,
		OffsetPct: req.OffsetPct,
		UpdatedAt: s.now(),
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.progressRepo.UpsertReadingProgress(ctx, tx, progress); err != nil {
			return err
		}
		return s.userRepo.TouchLastActive(ctx, tx, userID, s.now())
	}); err != nil {
		return nil, err
	}

	return &model.UpdateReadingProgressResponse{Success: true, OffsetPct: progress.OffsetPct}, nil
}
