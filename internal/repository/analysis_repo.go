package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// AnalysisScope identifies the content an analysis applies to. A nil VersionID
// means the live essay content.
type AnalysisScope struct {
	EssayID   uint
	VersionID *uint
}

// AIAnalysisRepository persists analysis attempts. Rows are only removed
// together with the version they are scoped to.
type AIAnalysisRepository interface {
	Create(ctx context.Context, result *models.AIAnalysisResult) error
	LatestCompleted(ctx context.Context, scope AnalysisScope, since time.Time) (models.AIAnalysisResult, error)
	ListByEssay(ctx context.Context, essayID uint, limit int) ([]models.AIAnalysisResult, error)
	// CountAnalyzedVersions counts versions holding at least one usable
	// (completed or fallback) analysis. Failed audit rows are ignored.
	CountAnalyzedVersions(ctx context.Context, essayID uint) (int64, error)
	DeleteByVersion(ctx context.Context, versionID uint) error
}

type aiAnalysisRepository struct {
	db *gorm.DB
}

// NewAIAnalysisRepository instantiates the repository.
func NewAIAnalysisRepository(db *gorm.DB) AIAnalysisRepository {
	return &aiAnalysisRepository{db: db}
}

func (r *aiAnalysisRepository) Create(ctx context.Context, result *models.AIAnalysisResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

// LatestCompleted returns the newest completed result for scope created at or
// after since. A zero since disables the freshness bound.
func (r *aiAnalysisRepository) LatestCompleted(ctx context.Context, scope AnalysisScope, since time.Time) (models.AIAnalysisResult, error) {
	query := r.db.WithContext(ctx).
		Where("essay_id = ?", scope.EssayID).
		Where("status = ?", models.AnalysisStatusCompleted)

	if scope.VersionID != nil {
		query = query.Where("essay_version_id = ?", *scope.VersionID)
	} else {
		query = query.Where("essay_version_id IS NULL")
	}

	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var result models.AIAnalysisResult
	if err := query.Order("created_at DESC").Order("id DESC").First(&result).Error; err != nil {
		return models.AIAnalysisResult{}, err
	}
	return result, nil
}

func (r *aiAnalysisRepository) ListByEssay(ctx context.Context, essayID uint, limit int) ([]models.AIAnalysisResult, error) {
	query := r.db.WithContext(ctx).
		Where("essay_id = ?", essayID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []models.AIAnalysisResult
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *aiAnalysisRepository) CountAnalyzedVersions(ctx context.Context, essayID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.AIAnalysisResult{}).
		Where("essay_id = ?", essayID).
		Where("essay_version_id IS NOT NULL").
		Where("status <> ?", models.AnalysisStatusFailed).
		Distinct("essay_version_id").
		Count(&total).Error
	return total, err
}

func (r *aiAnalysisRepository) DeleteByVersion(ctx context.Context, versionID uint) error {
	return r.db.WithContext(ctx).
		Where("essay_version_id = ?", versionID).
		Delete(&models.AIAnalysisResult{}).Error
}
