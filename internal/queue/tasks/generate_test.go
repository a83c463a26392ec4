package tasks

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/screencraft/engine/internal/models"
	"github.com/screencraft/engine/internal/services"
	"github.com/screencraft/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by tasks)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// Mock implementations
type mockGenerationService struct {
	mock.Mock
}

func (m *mockGenerationService) StartGeneration(ctx context.Context, projectID, userID uuid.UUID, input *services.StartGenerationInput) (*models.GenerationRun, error) {
	args := m.Called(ctx, projectID, userID, input)
	if v := args.Get(0); v != nil {
		return v.(*models.GenerationRun), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationService) GetRun(ctx context.Context, runID, userID uuid.UUID) (*models.GenerationRun, error) {
	args := m.Called(ctx, runID, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.GenerationRun), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationService) ListRuns(ctx context.Context, projectID, userID uuid.UUID) ([]models.GenerationRun, error) {
	args := m.Called(ctx, projectID, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.GenerationRun), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationService) MarkStreaming(ctx context.Context, runID uuid.UUID) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

func (m *mockGenerationService) CompleteRun(ctx context.Context, runID uuid.UUID, rawOutput string) error {
	args := m.Called(ctx, runID, rawOutput)
	return args.Error(0)
}

func (m *mockGenerationService) FailRun(ctx context.Context, runID uuid.UUID, reason string) error {
	args := m.Called(ctx, runID, reason)
	return args.Error(0)
}

type mockGenerationRepository struct {
	mock.Mock
}

func (m *mockGenerationRepository) Create(ctx context.Context, obj *models.GenerationRun) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockGenerationRepository) GetByID(ctx context.Context, id any, dest *models.GenerationRun) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.GenerationRun)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockGenerationRepository) Update(ctx context.Context, obj *models.GenerationRun) error {
	args := m.Called(ctx, obj)
	return args.Error(0)
}

func (m *mockGenerationRepository) Delete(ctx context.Context, id any) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockGenerationRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GenerationRun, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.GenerationRun), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerationRepository) UpdateStatus(ctx context.Context, runID uuid.UUID, status string) error {
	args := m.Called(ctx, runID, status)
	return args.Error(0)
}

type mockAIClient struct {
	mock.Mock
	output string
}

func (m *mockAIClient) StreamGenerate(ctx context.Context, prompt string, onDelta func(delta string) error) (string, error) {
	args := m.Called(ctx, prompt)
	if onDelta != nil && m.output != "" {
		_ = onDelta(m.output)
	}
	return args.String(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
	events []string
}

func (m *mockPublisher) Publish(ctx context.Context, channel, topic string, data any) error {
	m.events = append(m.events, topic)
	args := m.Called(ctx, channel, topic, data)
	return args.Error(0)
}

func newGenerateTask(t *testing.T, runID uuid.UUID) *asynq.Task {
	t.Helper()
	pb, err := json.Marshal(services.GeneratePayload{RunID: runID.String()})
	require.NoError(t, err)
	return asynq.NewTask(services.TaskTypeGenerate, pb)
}

func TestHandleGenerateCompletesRun(t *testing.T) {
	runID := uuid.New()
	output := `Done! <artifact title="Home" type="web"><html></html></artifact>`

	run := &models.GenerationRun{ID: runID, Prompt: "landing page", Status: models.RunStatusPending}

	genSvc := &mockGenerationService{}
	genSvc.On("MarkStreaming", mock.Anything, runID).Return(nil)
	genSvc.On("CompleteRun", mock.Anything, runID, output).Return(nil)

	runRepo := &mockGenerationRepository{}
	runRepo.On("GetByID", mock.Anything, runID, mock.Anything).Return(nil, run)

	aiClient := &mockAIClient{output: output}
	aiClient.On("StreamGenerate", mock.Anything, "landing page").Return(output, nil)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := NewGenerateTaskHandler(genSvc, runRepo, aiClient, pub)
	err := h.HandleGenerate(context.Background(), newGenerateTask(t, runID))
	require.NoError(t, err)

	genSvc.AssertExpectations(t)
	runRepo.AssertExpectations(t)
	aiClient.AssertExpectations(t)
	require.Contains(t, pub.events, "started")
	require.Contains(t, pub.events, "completed")
}

func TestHandleGenerateStreamFailureFailsRun(t *testing.T) {
	runID := uuid.New()
	run := &models.GenerationRun{ID: runID, Prompt: "landing page", Status: models.RunStatusPending}

	genSvc := &mockGenerationService{}
	genSvc.On("MarkStreaming", mock.Anything, runID).Return(nil)
	genSvc.On("FailRun", mock.Anything, runID, mock.Anything).Return(nil)

	runRepo := &mockGenerationRepository{}
	runRepo.On("GetByID", mock.Anything, runID, mock.Anything).Return(nil, run)

	aiClient := &mockAIClient{}
	aiClient.On("StreamGenerate", mock.Anything, "landing page").Return("", context.DeadlineExceeded)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	h := NewGenerateTaskHandler(genSvc, runRepo, aiClient, pub)
	err := h.HandleGenerate(context.Background(), newGenerateTask(t, runID))
	require.Error(t, err)

	genSvc.AssertExpectations(t)
	genSvc.AssertNotCalled(t, "CompleteRun", mock.Anything, mock.Anything, mock.Anything)
	require.Contains(t, pub.events, "failed")
}

func TestHandleGenerateBadPayload(t *testing.T) {
	h := NewGenerateTaskHandler(&mockGenerationService{}, &mockGenerationRepository{}, &mockAIClient{}, nil)

	err := h.HandleGenerate(context.Background(), asynq.NewTask(services.TaskTypeGenerate, []byte("not json")))
	require.Error(t, err)

	pb, _ := json.Marshal(services.GeneratePayload{RunID: "not-a-uuid"})
	err = h.HandleGenerate(context.Background(), asynq.NewTask(services.TaskTypeGenerate, pb))
	require.Error(t, err)
}
