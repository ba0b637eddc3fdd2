package service

import (
	"context"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService resolves per-user settings rows for the handlers.
type UserService struct {
	db       *gorm.DB
	userRepo repository.UserRepository
}

func NewUserService(db *gorm.DB, userRepo repository.UserRepository) *UserService {
	return &UserService{db: db, userRepo: userRepo}
}

// Get loads the user's settings, creating the row with defaults on first
// contact. The id itself comes from the verified token.
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.FindOrCreate(ctx, s.db, userID)
}
