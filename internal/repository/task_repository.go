package repository

import (
	"context"
	"errors"

	"github.com/nekto007/language-learning-tool/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository interface {
	// Upsert replaces the payload when a (block, type) task already exists;
	// standalone tasks (BlockID nil) are always inserted fresh.
	Upsert(ctx context.Context, tx *gorm.DB, task *model.Task) error
	FindByID(ctx context.Context, db *gorm.DB, taskID uint) (*model.Task, error)
	FindByBlock(ctx context.Context, db *gorm.DB, blockID uint) ([]*model.Task, error)
	FindByBlockAndType(ctx context.Context, db *gorm.DB, blockID uint, taskType string) (*model.Task, error)
}

type gormTaskRepository struct{}

func NewGormTaskRepository() TaskRepository {
	return &gormTaskRepository{}
}

func (r *gormTaskRepository) Upsert(ctx context.Context, tx *gorm.DB, task *model.Task) error {
	if task.BlockID == nil {
		return tx.WithContext(ctx).Create(task).Error
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "block_id"}, {Name: "task_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload"}),
		}).
		Create(task).Error
}

func (r *gormTaskRepository) FindByID(ctx context.Context, db *gorm.DB, taskID uint) (*model.Task, error) {
	var task model.Task
	result := db.WithContext(ctx).First(&task, taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

func (r *gormTaskRepository) FindByBlock(ctx context.Context, db *gorm.DB, blockID uint) ([]*model.Task, error) {
	var tasks []*model.Task
	result := db.WithContext(ctx).Where("block_id = ?", blockID).Find(&tasks)
	return tasks, result.Error
}

func (r *gormTaskRepository) FindByBlockAndType(ctx context.Context, db *gorm.DB, blockID uint, taskType string) (*model.Task, error) {
	var task model.Task
	result := db.WithContext(ctx).
		Where("block_id = ? AND task_type = ?", blockID, taskType).
		First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}
