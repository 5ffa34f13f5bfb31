package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-essay-api/internal/models"
)

// VersionStats summarises the versions stored for an essay.
type VersionStats struct {
	Total  int64
	Auto   int64
	Manual int64
}

// EssayVersionRepository persists immutable essay snapshots. There is no
// update operation.
type EssayVersionRepository interface {
	Create(ctx context.Context, version *models.EssayVersion) error
	GetByID(ctx context.Context, id uint) (models.EssayVersion, error)
	Latest(ctx context.Context, essayID uint) (models.EssayVersion, error)
	List(ctx context.Context, essayID uint, limit int) ([]models.EssayVersion, error)
	Count(ctx context.Context, essayID uint) (int64, error)
	Stats(ctx context.Context, essayID uint) (VersionStats, error)
	Delete(ctx context.Context, id uint) error
}

type essayVersionRepository struct {
	db *gorm.DB
}

// NewEssayVersionRepository instantiates the repository.
func NewEssayVersionRepository(db *gorm.DB) EssayVersionRepository {
	return &essayVersionRepository{db: db}
}

func (r *essayVersionRepository) Create(ctx context.Context, version *models.EssayVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *essayVersionRepository) GetByID(ctx context.Context, id uint) (models.EssayVersion, error) {
	var version models.EssayVersion
	if err := r.db.WithContext(ctx).First(&version, id).Error; err != nil {
		return models.EssayVersion{}, err
	}
	return version, nil
}

func (r *essayVersionRepository) Latest(ctx context.Context, essayID uint) (models.EssayVersion, error) {
	var version models.EssayVersion
	err := r.db.WithContext(ctx).
		Where("essay_id = ?", essayID).
		Order("timestamp DESC").
		Order("id DESC").
		First(&version).Error
	if err != nil {
		return models.EssayVersion{}, err
	}
	return version, nil
}

func (r *essayVersionRepository) List(ctx context.Context, essayID uint, limit int) ([]models.EssayVersion, error) {
	query := r.db.WithContext(ctx).
		Where("essay_id = ?", essayID).
		Order("timestamp DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var versions []models.EssayVersion
	if err := query.Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *essayVersionRepository) Count(ctx context.Context, essayID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.EssayVersion{}).
		Where("essay_id = ?", essayID).
		Count(&total).Error
	return total, err
}

func (r *essayVersionRepository) Stats(ctx context.Context, essayID uint) (VersionStats, error) {
	var rows []struct {
		IsAutoSave bool
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.EssayVersion{}).
		Select("is_auto_save, COUNT(*) AS total").
		Where("essay_id = ?", essayID).
		Group("is_auto_save").
		Scan(&rows).Error
	if err != nil {
		return VersionStats{}, err
	}

	stats := VersionStats{}
	for _, row := range rows {
		if row.IsAutoSave {
			stats.Auto += row.Total
		} else {
			stats.Manual += row.Total
		}
		stats.Total += row.Total
	}
	return stats, nil
}

func (r *essayVersionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.EssayVersion{}, id).Error
}
