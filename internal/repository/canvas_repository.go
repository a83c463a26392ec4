package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/screencraft/engine/internal/models"
	appErr "github.com/screencraft/engine/pkg/errors"
)

type CanvasRepository interface {
	BaseRepository[models.Canvas]
	GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Canvas) error
	GetOrCreateByProject(ctx context.Context, projectID uuid.UUID, dest *models.Canvas) error
	ReplaceArtifacts(ctx context.Context, projectID uuid.UUID, artifacts datatypes.JSON, expectedVersion int) error
}

type canvasRepository struct {
	BaseRepository[models.Canvas]
	db *gorm.DB
}

func NewCanvasRepository(db *gorm.DB) CanvasRepository {
	return &canvasRepository{BaseRepository: NewBaseRepository[models.Canvas](db), db: db}
}

func (r *canvasRepository) GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Canvas) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return appErr.New(appErr.CodeNotFound, "canvas not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get canvas failed")
	}
	return nil
}

// GetOrCreateByProject loads the project's canvas, creating an empty one on
// first access. The unique project_id index makes concurrent creates safe.
func (r *canvasRepository) GetOrCreateByProject(ctx context.Context, projectID uuid.UUID, dest *models.Canvas) error {
	err := r.GetByProject(ctx, projectID, dest)
	if err == nil || !appErr.IsCode(err, appErr.CodeNotFound) {
		return err
	}
	fresh := models.Canvas{ProjectID: projectID, Artifacts: datatypes.JSON([]byte("[]")), Version: 1}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create canvas failed")
	}
	return r.GetByProject(ctx, projectID, dest)
}

// ReplaceArtifacts swaps the whole artifact collection in one write. The
// version check rejects interleaving writers so no reader ever observes a
// partially merged list; callers retry with a fresh read on conflict.
func (r *canvasRepository) ReplaceArtifacts(ctx context.Context, projectID uuid.UUID, artifacts datatypes.JSON, expectedVersion int) error {
	res := r.db.WithContext(ctx).Model(&models.Canvas{}).
		Where("project_id = ? AND version = ?", projectID, expectedVersion).
		Updates(map[string]interface{}{
			"artifacts": artifacts,
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "replace canvas failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeConflict, "canvas modified by a concurrent writer")
	}
	return nil
}
