package dto

import (
	"time"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// EssaySaveRequest is the payload for saving or auto-saving essay content.
type EssaySaveRequest struct {
	PromptID uint   `json:"prompt_id" validate:"required,gt=0"`
	Content  string `json:"content" validate:"max=200000"`
}

// EssayVersionCreateRequest is the payload for an explicit "save version".
type EssayVersionCreateRequest struct {
	Content *string `json:"content" validate:"omitempty,max=200000"`
	Label   string  `json:"label" validate:"max=120"`
}

// EssayResponse represents an essay to API consumers.
type EssayResponse struct {
	ID                   uint       `json:"id"`
	UserID               uint       `json:"user_id"`
	PromptID             uint       `json:"prompt_id"`
	Content              string     `json:"content"`
	WordCount            int        `json:"word_count"`
	CompletionPercentage float64    `json:"completion_percentage"`
	IsCompleted          bool       `json:"is_completed"`
	CompletedAt          *time.Time `json:"completed_at"`
	Status               string     `json:"status"`
	LastModified         time.Time  `json:"last_modified"`
	LastAutoSaved        *time.Time `json:"last_auto_saved"`
	CreatedAt            time.Time  `json:"created_at"`
}

// EssayVersionResponse represents an immutable essay snapshot.
type EssayVersionResponse struct {
	ID                      uint      `json:"id"`
	EssayID                 uint      `json:"essay_id"`
	Content                 string    `json:"content"`
	WordCount               int       `json:"word_count"`
	Label                   string    `json:"label"`
	IsAutoSave              bool      `json:"is_auto_save"`
	ChangesSinceLastVersion string    `json:"changes_since_last_version"`
	Timestamp               time.Time `json:"timestamp"`
}

// CompletionEventResponse represents a completion log entry.
type CompletionEventResponse struct {
	ID                    uint      `json:"id"`
	WordCountAtCompletion int       `json:"word_count_at_completion"`
	WordLimit             int       `json:"word_limit"`
	CompletionMethod      string    `json:"completion_method"`
	Timestamp             time.Time `json:"timestamp"`
}

// EssaySaveResponse is returned by every content mutation.
type EssaySaveResponse struct {
	Essay               EssayResponse         `json:"essay"`
	Version             *EssayVersionResponse `json:"version,omitempty"`
	VersionCreated      bool                  `json:"version_created"`
	CompletionEvaluated bool                  `json:"completion_evaluated"`
	CompletionChanged   bool                  `json:"completion_changed"`
}

// EssayDetailResponse bundles an essay with its completion history.
type EssayDetailResponse struct {
	Essay            EssayResponse             `json:"essay"`
	LatestVersion    *EssayVersionResponse     `json:"latest_version,omitempty"`
	CompletionEvents []CompletionEventResponse `json:"completion_events"`
}

// NewEssayResponse converts an essay model into a DTO.
func NewEssayResponse(essay models.Essay) EssayResponse {
	return EssayResponse{
		ID:                   essay.ID,
		UserID:               essay.UserID,
		PromptID:             essay.PromptID,
		Content:              essay.Content,
		WordCount:            essay.WordCount,
		CompletionPercentage: essay.CompletionPercentage,
		IsCompleted:          essay.IsCompleted,
		CompletedAt:          essay.CompletedAt,
		Status:               essay.Status,
		LastModified:         essay.LastModified,
		LastAutoSaved:        essay.LastAutoSaved,
		CreatedAt:            essay.CreatedAt,
	}
}

// NewEssayVersionResponse converts a version model into a DTO.
func NewEssayVersionResponse(version models.EssayVersion) EssayVersionResponse {
	return EssayVersionResponse{
		ID:                      version.ID,
		EssayID:                 version.EssayID,
		Content:                 version.Content,
		WordCount:               version.WordCount,
		Label:                   version.Label,
		IsAutoSave:              version.IsAutoSave,
		ChangesSinceLastVersion: version.ChangesSinceLastVersion,
		Timestamp:               version.Timestamp,
	}
}

// NewCompletionEventResponse converts a completion event into a DTO.
func NewCompletionEventResponse(event models.CompletionEvent) CompletionEventResponse {
	return CompletionEventResponse{
		ID:                    event.ID,
		WordCountAtCompletion: event.WordCountAtCompletion,
		WordLimit:             event.WordLimit,
		CompletionMethod:      event.CompletionMethod,
		Timestamp:             event.Timestamp,
	}
}
