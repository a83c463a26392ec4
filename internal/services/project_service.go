package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/screencraft/engine/internal/design"
	"github.com/screencraft/engine/internal/models"
	"github.com/screencraft/engine/internal/repository"
	appErr "github.com/screencraft/engine/pkg/errors"
	"github.com/screencraft/engine/pkg/logger"
)

// Service interface and related DTOs
type ProjectService interface {
	// Project CRUD
	CreateProject(ctx context.Context, userID uuid.UUID, input *CreateProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, userID uuid.UUID, filters *ProjectFilters) ([]models.Project, error)
	UpdateProject(ctx context.Context, projectID, userID uuid.UUID, updates *UpdateProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error

	// Canvas access
	GetCanvas(ctx context.Context, projectID, userID uuid.UUID) (*CanvasData, error)
}

type CreateProjectInput struct {
	Name        string
	Description string
	Settings    map[string]interface{}
}

type UpdateProjectInput struct {
	Description *string
	Settings    map[string]interface{}
	Archived    *bool
}

type ProjectFilters struct {
	Archived bool
	Page     int
	PageSize int
}

// CanvasData is the decoded canvas document returned to callers.
type CanvasData struct {
	ProjectID uuid.UUID         `json:"project_id"`
	Version   int               `json:"version"`
	Artifacts []design.Artifact `json:"artifacts"`
}

type projectService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	canvasRepo  repository.CanvasRepository
}

func NewProjectService(db *gorm.DB, projectRepo repository.ProjectRepository, canvasRepo repository.CanvasRepository) ProjectService {
	return &projectService{db: db, projectRepo: projectRepo, canvasRepo: canvasRepo}
}

// Ensure interfaces are satisfied at compile time
var _ ProjectService = (*projectService)(nil)

// CreateProject creates a new project for the given user.
func (s *projectService) CreateProject(ctx context.Context, userID uuid.UUID, input *CreateProjectInput) (*models.Project, error) {
	logger.L().Info("create project called", zap.String("user_id", userID.String()), zap.String("name", input.Name))

	var settings datatypes.JSON
	if input.Settings != nil {
		b, err := json.Marshal(input.Settings)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid settings json")
		}
		settings = datatypes.JSON(b)
	}

	p := &models.Project{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Settings:    settings,
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.L().Info("project created", zap.String("project_id", p.ID.String()), zap.String("user_id", userID.String()))
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return &p, nil
}

func (s *projectService) ListProjects(ctx context.Context, userID uuid.UUID, filters *ProjectFilters) ([]models.Project, error) {
	// repository handles user filtering
	return s.projectRepo.ListByUser(ctx, userID)
}

func (s *projectService) UpdateProject(ctx context.Context, projectID, userID uuid.UUID, updates *UpdateProjectInput) (*models.Project, error) {
	p, err := s.GetProject(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	if updates.Description != nil {
		p.Description = *updates.Description
	}
	if updates.Archived != nil {
		p.Archived = *updates.Archived
	}
	if updates.Settings != nil {
		b, err := json.Marshal(updates.Settings)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid settings json")
		}
		p.Settings = datatypes.JSON(b)
	}

	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) DeleteProject(ctx context.Context, projectID, userID uuid.UUID) error {
	if _, err := s.GetProject(ctx, projectID, userID); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, projectID)
}

// GetCanvas returns the project's current artifact collection, creating an
// empty canvas on first access.
func (s *projectService) GetCanvas(ctx context.Context, projectID, userID uuid.UUID) (*CanvasData, error) {
	if _, err := s.GetProject(ctx, projectID, userID); err != nil {
		return nil, err
	}

	var c models.Canvas
	if err := s.canvasRepo.GetOrCreateByProject(ctx, projectID, &c); err != nil {
		return nil, err
	}

	artifacts := []design.Artifact{}
	if len(c.Artifacts) > 0 {
		if err := json.Unmarshal(c.Artifacts, &artifacts); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "decode canvas artifacts failed")
		}
	}

	return &CanvasData{ProjectID: projectID, Version: c.Version, Artifacts: artifacts}, nil
}
