package services

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/screencraft/engine/internal/design"
	"github.com/screencraft/engine/internal/ledger"
	"github.com/screencraft/engine/internal/models"
	"github.com/screencraft/engine/internal/repository"
	appErr "github.com/screencraft/engine/pkg/errors"
	"github.com/screencraft/engine/pkg/logger"
	"github.com/screencraft/engine/pkg/utils"
)

// TaskTypeGenerate is the asynq task type for generation runs.
const TaskTypeGenerate = "generation:run"

// mergeRetries bounds how often a finished run re-reads the canvas after a
// concurrent-writer conflict before giving up.
const mergeRetries = 3

// GenerationService owns the lifecycle of generation runs: creation and
// pre-authorization on the request path, and the atomic
// parse-merge-debit commit on the worker path.
type GenerationService interface {
	StartGeneration(ctx context.Context, projectID, userID uuid.UUID, input *StartGenerationInput) (*models.GenerationRun, error)
	GetRun(ctx context.Context, runID, userID uuid.UUID) (*models.GenerationRun, error)
	ListRuns(ctx context.Context, projectID, userID uuid.UUID) ([]models.GenerationRun, error)

	// Worker-side transitions
	MarkStreaming(ctx context.Context, runID uuid.UUID) error
	CompleteRun(ctx context.Context, runID uuid.UUID, rawOutput string) error
	FailRun(ctx context.Context, runID uuid.UUID, reason string) error
}

type StartGenerationInput struct {
	Prompt string
}

// GeneratePayload is the asynq task payload.
type GeneratePayload struct {
	RunID string `json:"run_id"`
}

type generationService struct {
	db          *gorm.DB
	projectRepo repository.ProjectRepository
	runRepo     repository.GenerationRepository
	ledgerSvc   *ledger.Service
	asynqClient *asynq.Client
}

func NewGenerationService(db *gorm.DB, projectRepo repository.ProjectRepository, runRepo repository.GenerationRepository, ledgerSvc *ledger.Service, client *asynq.Client) GenerationService {
	return &generationService{db: db, projectRepo: projectRepo, runRepo: runRepo, ledgerSvc: ledgerSvc, asynqClient: client}
}

var _ GenerationService = (*generationService)(nil)

// StartGeneration verifies ownership, pre-authorizes the run against the
// credit minimum (the actual charge happens at completion), records the run
// and enqueues it for the worker.
func (s *generationService) StartGeneration(ctx context.Context, projectID, userID uuid.UUID, input *StartGenerationInput) (*models.GenerationRun, error) {
	logger.L().Info("start generation", zap.String("project_id", projectID.String()), zap.String("user_id", userID.String()))

	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}

	led, err := s.ledgerSvc.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if led.Balance < ledger.MinimumBalance {
		return nil, ledger.ErrInsufficientCredits
	}

	run := &models.GenerationRun{
		ProjectID: projectID,
		UserID:    userID,
		Prompt:    input.Prompt,
		Status:    models.RunStatusPending,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	pb, err := json.Marshal(GeneratePayload{RunID: run.ID.String()})
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "marshal task payload failed")
	}
	task := asynq.NewTask(TaskTypeGenerate, pb)
	if s.asynqClient == nil {
		logger.L().Warn("asynq client not configured, skipping enqueue", zap.String("run_id", run.ID.String()))
	} else {
		if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
			return nil, appErr.Wrap(err, appErr.CodeUnavailable, "enqueue generation failed")
		}
	}

	return run, nil
}

func (s *generationService) GetRun(ctx context.Context, runID, userID uuid.UUID) (*models.GenerationRun, error) {
	var run models.GenerationRun
	if err := s.runRepo.GetByID(ctx, runID, &run); err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own run")
	}
	return &run, nil
}

func (s *generationService) ListRuns(ctx context.Context, projectID, userID uuid.UUID) ([]models.GenerationRun, error) {
	var p models.Project
	if err := s.projectRepo.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return s.runRepo.ListByProject(ctx, projectID)
}

func (s *generationService) MarkStreaming(ctx context.Context, runID uuid.UUID) error {
	return s.runRepo.UpdateStatus(ctx, runID, models.RunStatusStreaming)
}

// CompleteRun commits a finished generation: parse the final output, merge
// the artifacts into the project canvas, and debit the run's cost, all in
// one transaction. A conflict with a concurrent canvas writer rolls the
// whole commit back and retries with a fresh read. A run already in a
// terminal state is left untouched, so redelivered tasks have no effect.
func (s *generationService) CompleteRun(ctx context.Context, runID uuid.UUID, rawOutput string) error {
	var lastErr error
	for attempt := 0; attempt < mergeRetries; attempt++ {
		err := s.tryCompleteRun(ctx, runID, rawOutput)
		if err == nil {
			return nil
		}
		if appErr.IsCode(err, appErr.CodeConflict) {
			logger.L().Warn("canvas merge conflict, retrying", zap.String("run_id", runID.String()), zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			return s.finishWithoutMerge(ctx, runID, models.RunStatusInsufficientCredits, "balance fell below the minimum before completion")
		}
		return err
	}
	return lastErr
}

func (s *generationService) tryCompleteRun(ctx context.Context, runID uuid.UUID, rawOutput string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var run models.GenerationRun
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&run, "id = ?", runID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErr.New(appErr.CodeNotFound, "generation run not found")
			}
			return appErr.Wrap(err, appErr.CodeInternal, "load run failed")
		}
		if terminal(run.Status) {
			return nil
		}

		artifacts := design.ExtractArtifacts(rawOutput)
		prose := design.StripArtifacts(rawOutput)

		canvasRepo := repository.NewCanvasRepository(tx)
		var c models.Canvas
		if err := canvasRepo.GetOrCreateByProject(ctx, run.ProjectID, &c); err != nil {
			return err
		}
		existing := []design.Artifact{}
		if len(c.Artifacts) > 0 {
			if err := json.Unmarshal(c.Artifacts, &existing); err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "decode canvas artifacts failed")
			}
		}

		merged := design.Merge(existing, artifacts)
		b, err := json.Marshal(merged)
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "encode canvas artifacts failed")
		}
		if err := canvasRepo.ReplaceArtifacts(ctx, run.ProjectID, datatypes.JSON(b), c.Version); err != nil {
			return err
		}

		if _, err := s.ledgerSvc.WithTx(tx).Debit(ctx, run.UserID, ledger.GenerationCost); err != nil {
			return err
		}

		sum := utils.SumSHA256([]byte(rawOutput))
		run.Status = models.RunStatusCompleted
		run.RawOutput = rawOutput
		run.OutputChecksum = hex.EncodeToString(sum[:])
		run.Prose = prose
		run.CreditsCharged = ledger.GenerationCost
		if err := tx.Save(&run).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "save run failed")
		}

		logger.L().Info("generation run completed",
			zap.String("run_id", runID.String()),
			zap.Int("artifacts", len(artifacts)),
			zap.Int("canvas_size", len(merged)),
		)
		return nil
	})
}

func (s *generationService) FailRun(ctx context.Context, runID uuid.UUID, reason string) error {
	return s.finishWithoutMerge(ctx, runID, models.RunStatusFailed, reason)
}

// finishWithoutMerge moves a non-terminal run into a terminal state with no
// canvas or ledger effect.
func (s *generationService) finishWithoutMerge(ctx context.Context, runID uuid.UUID, status, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var run models.GenerationRun
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&run, "id = ?", runID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErr.New(appErr.CodeNotFound, "generation run not found")
			}
			return appErr.Wrap(err, appErr.CodeInternal, "load run failed")
		}
		if terminal(run.Status) {
			return nil
		}
		run.Status = status
		run.Error = reason
		if err := tx.Save(&run).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "save run failed")
		}
		return nil
	})
}

func terminal(status string) bool {
	switch status {
	case models.RunStatusCompleted, models.RunStatusFailed, models.RunStatusInsufficientCredits:
		return true
	}
	return false
}
