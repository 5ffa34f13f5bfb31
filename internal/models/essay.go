package models

import "time"

// EssayStatus enumerates the lifecycle states of an essay.
const (
	EssayStatusDraft      = "DRAFT"
	EssayStatusInProgress = "IN_PROGRESS"
	EssayStatusCompleted  = "COMPLETED"
)

// EssayPrompt is the read-only prompt an essay answers.
type EssayPrompt struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	PromptText string    `gorm:"type:text" json:"prompt_text"`
	WordLimit  int       `gorm:"not null" json:"word_limit"`
	Program    string    `gorm:"size:255" json:"program"`
	DegreeType string    `gorm:"size:64" json:"degree_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Essay is a user's live draft for a prompt. There is at most one per (user, prompt).
type Essay struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;uniqueIndex:idx_essay_user_prompt" json:"user_id"`
	PromptID             uint       `gorm:"not null;uniqueIndex:idx_essay_user_prompt" json:"prompt_id"`
	Content              string     `gorm:"type:text" json:"content"`
	WordCount            int        `gorm:"not null;default:0" json:"word_count"`
	CompletionPercentage float64    `gorm:"not null;default:0" json:"completion_percentage"`
	IsCompleted          bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt          *time.Time `json:"completed_at"`
	Status               string     `gorm:"size:16;not null;default:'DRAFT'" json:"status"`
	LastModified         time.Time  `json:"last_modified"`
	LastAutoSaved        *time.Time `json:"last_auto_saved"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// EssayVersion is an immutable snapshot of essay content.
type EssayVersion struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	EssayID                 uint      `gorm:"not null;index:idx_version_essay_ts" json:"essay_id"`
	Content                 string    `gorm:"type:text" json:"content"`
	WordCount               int       `gorm:"not null;default:0" json:"word_count"`
	Label                   string    `gorm:"size:255" json:"label"`
	IsAutoSave              bool      `gorm:"not null;default:false" json:"is_auto_save"`
	ChangesSinceLastVersion string    `gorm:"size:128" json:"changes_since_last_version"`
	Timestamp               time.Time `gorm:"not null;index:idx_version_essay_ts" json:"timestamp"`
}

// CompletionEvent is an append-only record of an essay crossing the completion threshold.
type CompletionEvent struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	EssayID               uint      `gorm:"not null;index" json:"essay_id"`
	UserID                uint      `gorm:"not null" json:"user_id"`
	WordCountAtCompletion int       `gorm:"not null" json:"word_count_at_completion"`
	WordLimit             int       `gorm:"not null" json:"word_limit"`
	CompletionMethod      string    `gorm:"size:16;not null" json:"completion_method"`
	Timestamp             time.Time `gorm:"not null" json:"timestamp"`
}

// Completion methods recorded on CompletionEvent.
const (
	CompletionMethodAuto   = "AUTO"
	CompletionMethodManual = "MANUAL"
)
