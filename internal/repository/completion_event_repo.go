package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// CompletionEventWriter appends completion events. The log is insert-only.
type CompletionEventWriter interface {
	Append(ctx context.Context, event *models.CompletionEvent) error
}

// CompletionEventRepository exposes the completion log. It deliberately has
// no update or delete operations.
type CompletionEventRepository interface {
	CompletionEventWriter
	ListByEssay(ctx context.Context, essayID uint) ([]models.CompletionEvent, error)
}

type completionEventRepository struct {
	db *gorm.DB
}

// NewCompletionEventRepository instantiates the repository.
func NewCompletionEventRepository(db *gorm.DB) CompletionEventRepository {
	return &completionEventRepository{db: db}
}

func (r *completionEventRepository) Append(ctx context.Context, event *models.CompletionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *completionEventRepository) ListByEssay(ctx context.Context, essayID uint) ([]models.CompletionEvent, error) {
	var events []models.CompletionEvent
	if err := r.db.WithContext(ctx).
		Where("essay_id = ?", essayID).
		Order("timestamp DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
