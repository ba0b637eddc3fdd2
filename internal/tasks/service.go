package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/repository"

	"gorm.io/gorm"
)

// Service generates and persists the fixed task set of every block.
type Service struct {
	db        *gorm.DB
	blockRepo repository.BlockRepository
	taskRepo  repository.TaskRepository
	generator *Generator
	logger    *slog.Logger
}

func NewService(db *gorm.DB, blockRepo repository.BlockRepository, taskRepo repository.TaskRepository, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		blockRepo: blockRepo,
		taskRepo:  taskRepo,
		generator: NewGenerator(),
		logger:    logger,
	}
}

// GenerateForBlock builds all block task types and upserts them in one
// transaction. Regeneration replaces payloads in place, so task ids referenced
// by lessons stay stable.
func (s *Service) GenerateForBlock(ctx context.Context, blockID uint) error {
	block, err := s.blockRepo.FindByID(ctx, s.db, blockID)
	if err != nil {
		return fmt.Errorf("load block %d: %w", blockID, err)
	}
	in, err := s.buildInput(ctx, block)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, taskType := range model.BlockTaskTypes {
			payload, err := s.generator.Generate(taskType, in)
			if err != nil {
				return err
			}
			raw, err := Marshal(payload)
			if err != nil {
				return fmt.Errorf("marshal %s payload: %w", taskType, err)
			}
			id := block.BlockID
			task := &model.Task{BlockID: &id, TaskType: taskType, Payload: raw}
			if err := s.taskRepo.Upsert(ctx, tx, task); err != nil {
				return fmt.Errorf("store %s task: %w", taskType, err)
			}
		}
		return nil
	})
}

// GenerateForBook runs task generation over every block. One broken block
// does not abort the others.
func (s *Service) GenerateForBook(ctx context.Context, bookID uint) error {
	blocks, err := s.blockRepo.FindByBook(ctx, s.db, bookID)
	if err != nil {
		return err
	}
	var failed int
	for _, block := range blocks {
		if err := s.GenerateForBlock(ctx, block.BlockID); err != nil {
			failed++
			s.logger.WarnContext(ctx, "task generation failed for block",
				slog.Uint64("block_id", uint64(block.BlockID)),
				slog.Int("block_num", block.BlockNum),
				slog.Any("error", err),
			)
		}
	}
	if failed == len(blocks) && len(blocks) > 0 {
		return fmt.Errorf("task generation failed for all %d blocks: %w", failed, model.ErrInternalServer)
	}
	return nil
}

// CreateStandalone builds a task not bound to a block, used by daily slices
// for comprehension and cloze practice days.
func (s *Service) CreateStandalone(ctx context.Context, tx *gorm.DB, taskType string, in Input) (*model.Task, error) {
	payload, err := s.generator.Generate(taskType, in)
	if err != nil {
		return nil, err
	}
	raw, err := Marshal(payload)
	if err != nil {
		return nil, err
	}
	task := &model.Task{TaskType: taskType, Payload: raw}
	if err := s.taskRepo.Upsert(ctx, tx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) buildInput(ctx context.Context, block *model.Block) (Input, error) {
	chapters, err := s.blockRepo.FindChapters(ctx, s.db, block.BlockID)
	if err != nil {
		return Input{}, fmt.Errorf("load block chapters: %w", err)
	}
	if len(chapters) == 0 {
		return Input{}, fmt.Errorf("block %d has no chapters: %w", block.BlockID, model.ErrInvalidInput)
	}
	vocab, err := s.blockRepo.FindVocab(ctx, s.db, block.BlockID)
	if err != nil {
		return Input{}, fmt.Errorf("load block vocabulary: %w", err)
	}

	var sb strings.Builder
	for _, ch := range chapters {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(ch.TextRaw)
	}

	return Input{
		BlockID:    block.BlockID,
		GrammarKey: block.GrammarKey,
		Text:       sb.String(),
		Vocab:      vocab,
	}, nil
}
