package tasks

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/screencraft/engine/internal/ai"
	"github.com/screencraft/engine/internal/design"
	"github.com/screencraft/engine/internal/models"
	"github.com/screencraft/engine/internal/repository"
	"github.com/screencraft/engine/internal/services"
	"github.com/screencraft/engine/internal/status"
	"github.com/screencraft/engine/pkg/logger"
)

// progressInterval throttles live-preview publishes during streaming.
const progressInterval = 250 * time.Millisecond

// GenerateTaskHandler runs one generation turn end to end: stream the model
// output, publish live partial artifacts, then hand the final text to the
// generation service for the atomic parse-merge-debit commit.
type GenerateTaskHandler struct {
	genSvc    services.GenerationService
	runRepo   repository.GenerationRepository
	aiClient  ai.Client
	publisher status.Publisher
}

func NewGenerateTaskHandler(genSvc services.GenerationService, runRepo repository.GenerationRepository, aiClient ai.Client, publisher status.Publisher) *GenerateTaskHandler {
	return &GenerateTaskHandler{genSvc: genSvc, runRepo: runRepo, aiClient: aiClient, publisher: publisher}
}

func (h *GenerateTaskHandler) HandleGenerate(ctx context.Context, t *asynq.Task) error {
	var p services.GeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid generate task payload", zap.Error(err))
		return err
	}
	id, err := uuid.Parse(p.RunID)
	if err != nil {
		logger.L().Error("invalid run id in task", zap.Error(err))
		return err
	}

	logger.L().Info("handling generation task", zap.String("run_id", id.String()))

	var run models.GenerationRun
	if err := h.runRepo.GetByID(ctx, id, &run); err != nil {
		logger.L().Error("get run failed", zap.Error(err))
		return err
	}

	if err := h.genSvc.MarkStreaming(ctx, id); err != nil {
		logger.L().Error("mark streaming failed", zap.Error(err))
	}

	channel := status.RunChannel(id.String())
	h.publish(ctx, channel, "started", map[string]any{"run_id": id.String()})

	var buf strings.Builder
	lastPublish := time.Time{}
	full, streamErr := h.aiClient.StreamGenerate(ctx, run.Prompt, func(delta string) error {
		buf.WriteString(delta)
		if time.Since(lastPublish) < progressInterval {
			return nil
		}
		lastPublish = time.Now()
		text := buf.String()
		h.publish(ctx, channel, "progress", map[string]any{
			"artifacts": design.ExtractArtifacts(text),
			"prose":     design.StripArtifacts(text),
		})
		return nil
	})
	if streamErr != nil {
		logger.L().Error("model stream failed", zap.String("run_id", id.String()), zap.Error(streamErr))
		if err := h.genSvc.FailRun(ctx, id, streamErr.Error()); err != nil {
			logger.L().Error("fail run failed", zap.Error(err))
		}
		h.publish(ctx, channel, "failed", map[string]any{"error": streamErr.Error()})
		return streamErr
	}

	// Completion is idempotent: a redelivered task finds the run terminal
	// and commits nothing.
	if err := h.genSvc.CompleteRun(ctx, id, full); err != nil {
		logger.L().Error("complete run failed", zap.String("run_id", id.String()), zap.Error(err))
		h.publish(ctx, channel, "failed", map[string]any{"error": err.Error()})
		return err
	}

	h.publish(ctx, channel, "completed", map[string]any{
		"artifacts": design.ExtractArtifacts(full),
		"prose":     design.StripArtifacts(full),
	})
	return nil
}

// publish is best-effort; a pub/sub failure never fails the run.
func (h *GenerateTaskHandler) publish(ctx context.Context, channel, topic string, data any) {
	if h.publisher == nil {
		return
	}
	_ = h.publisher.Publish(ctx, channel, topic, data)
}
