package model

import (
	"time"

	"gorm.io/datatypes"
)

// Task types produced by the generators.
const (
	TaskVocabulary       = "vocabulary"
	TaskReadingPassage   = "reading_passage"
	TaskReadingMCQ       = "reading_mcq"
	TaskMatchHeadings    = "match_headings"
	TaskOpenCloze        = "open_cloze"
	TaskWordFormation    = "word_formation"
	TaskKeywordTransform = "keyword_transform"
	TaskGrammarSheet     = "grammar_sheet"
	TaskFinalTest        = "final_test"
)

// BlockTaskTypes is the full set generated for every block, in build order.
var BlockTaskTypes = []string{
	TaskVocabulary,
	TaskReadingPassage,
	TaskReadingMCQ,
	TaskMatchHeadings,
	TaskOpenCloze,
	TaskWordFormation,
	TaskKeywordTransform,
	TaskGrammarSheet,
	TaskFinalTest,
}

// Task stores one generated exercise payload. Block-anchored tasks are unique
// per (block, type); standalone tasks (BlockID nil) belong to a single
// DailyLesson and are linked only through DailyLesson.TaskID.
type Task struct {
	TaskID    uint           `gorm:"primaryKey" json:"task_id"`
	BlockID   *uint          `gorm:"uniqueIndex:idx_block_task_type" json:"block_id,omitempty"`
	TaskType  string         `gorm:"not null;uniqueIndex:idx_block_task_type" json:"task_type"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (Task) TableName() string { return "tasks" }
