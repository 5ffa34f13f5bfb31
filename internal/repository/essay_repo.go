package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// EssayRepository defines data operations for essays.
type EssayRepository interface {
	GetByID(ctx context.Context, id uint) (models.Essay, error)
	GetByUserAndPrompt(ctx context.Context, userID, promptID uint) (models.Essay, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Essay, error)
	Create(ctx context.Context, essay *models.Essay) error
	Update(ctx context.Context, essay *models.Essay) error
}

type essayRepository struct {
	db *gorm.DB
}

// NewEssayRepository instantiates the repository.
func NewEssayRepository(db *gorm.DB) EssayRepository {
	return &essayRepository{db: db}
}

func (r *essayRepository) GetByID(ctx context.Context, id uint) (models.Essay, error) {
	var essay models.Essay
	if err := r.db.WithContext(ctx).First(&essay, id).Error; err != nil {
		return models.Essay{}, err
	}
	return essay, nil
}

func (r *essayRepository) GetByUserAndPrompt(ctx context.Context, userID, promptID uint) (models.Essay, error) {
	var essay models.Essay
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("prompt_id = ?", promptID).
		First(&essay).Error
	if err != nil {
		return models.Essay{}, err
	}
	return essay, nil
}

func (r *essayRepository) ListByUser(ctx context.Context, userID uint) ([]models.Essay, error) {
	var essays []models.Essay
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_modified DESC").
		Find(&essays).Error; err != nil {
		return nil, err
	}
	return essays, nil
}

func (r *essayRepository) Create(ctx context.Context, essay *models.Essay) error {
	return r.db.WithContext(ctx).Create(essay).Error
}

func (r *essayRepository) Update(ctx context.Context, essay *models.Essay) error {
	return r.db.WithContext(ctx).Save(essay).Error
}
