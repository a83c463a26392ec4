package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/screencraft/engine/internal/models"
	appErr "github.com/screencraft/engine/pkg/errors"
)

type GenerationRepository interface {
	BaseRepository[models.GenerationRun]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GenerationRun, error)
	UpdateStatus(ctx context.Context, runID uuid.UUID, status string) error
}

type generationRepository struct {
	BaseRepository[models.GenerationRun]
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) GenerationRepository {
	return &generationRepository{BaseRepository: NewBaseRepository[models.GenerationRun](db), db: db}
}

func (r *generationRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GenerationRun, error) {
	var out []models.GenerationRun
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list generation runs failed")
	}
	return out, nil
}

func (r *generationRepository) UpdateStatus(ctx context.Context, runID uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.GenerationRun{}).Where("id = ?", runID).Update("status", status)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update run status failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "generation run not found")
	}
	return nil
}
