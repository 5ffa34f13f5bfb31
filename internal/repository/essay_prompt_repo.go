package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// EssayPromptRepository resolves prompt references. Prompts are read-only here.
type EssayPromptRepository interface {
	GetByID(ctx context.Context, id uint) (models.EssayPrompt, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]models.EssayPrompt, error)
}

// NewEssayPromptRepository constructs a prompt repository.
func NewEssayPromptRepository(db *gorm.DB) EssayPromptRepository {
	return &essayPromptRepository{db: db}
}

type essayPromptRepository struct {
	db *gorm.DB
}

func (r *essayPromptRepository) GetByID(ctx context.Context, id uint) (models.EssayPrompt, error) {
	var prompt models.EssayPrompt
	if err := r.db.WithContext(ctx).First(&prompt, id).Error; err != nil {
		return models.EssayPrompt{}, err
	}
	return prompt, nil
}

func (r *essayPromptRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]models.EssayPrompt, error) {
	result := make(map[uint]models.EssayPrompt, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var prompts []models.EssayPrompt
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&prompts).Error; err != nil {
		return nil, err
	}
	for _, prompt := range prompts {
		result[prompt.ID] = prompt
	}
	return result, nil
}
