package model

import (
	"time"

	"gorm.io/datatypes"
)

// Book is an uploaded source book. Stats may be refreshed after import but the
// chapter text underneath is never rewritten.
type Book struct {
	BookID       uint      `gorm:"primaryKey" json:"book_id"`
	Title        string    `gorm:"not null" json:"title"`
	Author       string    `json:"author"`
	Level        Level     `gorm:"type:varchar(2);not null;default:'B1'" json:"level"`
	TotalWords   int       `gorm:"not null;default:0" json:"total_words"`
	ChapterCount int       `gorm:"not null;default:0" json:"chapter_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Chapters []Chapter `gorm:"foreignKey:BookID" json:"-"`
}

func (Book) TableName() string { return "books" }

// Chapter text is the source of truth for all downstream generation.
// Immutable once imported.
type Chapter struct {
	ChapterID uint   `gorm:"primaryKey" json:"chapter_id"`
	BookID    uint   `gorm:"not null;uniqueIndex:idx_book_chap" json:"book_id"`
	ChapNum   int    `gorm:"not null;uniqueIndex:idx_book_chap" json:"chap_num"`
	Title     string `json:"title"`
	TextRaw   string `gorm:"type:text;not null" json:"-"`
	Words     int    `gorm:"not null;default:0" json:"words"`
}

func (Chapter) TableName() string { return "chapters" }

// Block groups consecutive chapters for vocabulary extraction and task
// generation. Blocks are rebuilt atomically when a schema is (re)imported.
type Block struct {
	BlockID    uint   `gorm:"primaryKey" json:"block_id"`
	BookID     uint   `gorm:"not null;uniqueIndex:idx_book_block" json:"book_id"`
	BlockNum   int    `gorm:"not null;uniqueIndex:idx_book_block" json:"block_num"`
	GrammarKey string `json:"grammar_key"`
	FocusVocab string `json:"focus_vocab"`

	Chapters []Chapter `gorm:"many2many:block_chapters;foreignKey:BlockID;joinForeignKey:BlockID;References:ChapterID;joinReferences:ChapterID" json:"-"`
}

func (Block) TableName() string { return "blocks" }

// BlockChapter is the explicit join row so imports can manage it directly.
type BlockChapter struct {
	BlockID   uint `gorm:"primaryKey"`
	ChapterID uint `gorm:"primaryKey"`
}

func (BlockChapter) TableName() string { return "block_chapters" }

// BlockVocab is one selected vocabulary entry of a block.
type BlockVocab struct {
	BlockVocabID uint `gorm:"primaryKey" json:"block_vocab_id"`
	BlockID      uint `gorm:"not null;uniqueIndex:idx_block_word" json:"block_id"`
	WordID       uint `gorm:"not null;uniqueIndex:idx_block_word" json:"word_id"`
	Frequency    int  `gorm:"not null;default:1" json:"frequency"`

	Word *Word `gorm:"foreignKey:WordID;references:WordID" json:"-"`
}

func (BlockVocab) TableName() string { return "block_vocab" }

// Word is the global catalogue entry, shared across books.
type Word struct {
	WordID        uint           `gorm:"primaryKey" json:"word_id"`
	English       string         `gorm:"not null;uniqueIndex" json:"english"`
	Russian       string         `gorm:"not null" json:"russian"`
	Level         Level          `gorm:"type:varchar(2);not null;default:'A1'" json:"level"`
	POS           string         `json:"pos,omitempty"`
	Examples      datatypes.JSON `json:"examples,omitempty"`
	Pronunciation string         `json:"pronunciation,omitempty"`
	AudioURL      string         `json:"audio_url,omitempty"`
}

func (Word) TableName() string { return "words" }
