package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/screencraft/engine/internal/api/middleware"
	"github.com/screencraft/engine/internal/api/types"
	"github.com/screencraft/engine/internal/ledger"
	"github.com/screencraft/engine/internal/models"
	"github.com/screencraft/engine/internal/services"
)

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

func generationsRouter(svc services.GenerationService, userID uuid.UUID) http.Handler {
	h := NewGenerationsHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID.String())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/projects/{id}/generations", h.Create)
	r.Get("/generations/{id}", h.Get)
	return r
}

func TestCreateGenerationAccepted(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()
	run := &models.GenerationRun{ID: uuid.New(), ProjectID: projectID, UserID: userID, Status: models.RunStatusPending}

	svc := &mockGenerationService{}
	svc.On("StartGeneration", mock.Anything, projectID, userID, &services.StartGenerationInput{Prompt: "a landing page"}).Return(run, nil)

	body := strings.NewReader(`{"prompt":"a landing page"}`)
	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID.String()+"/generations", body)
	rr := httptest.NewRecorder()
	generationsRouter(svc, userID).ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestCreateGenerationInsufficientCredits(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()

	svc := &mockGenerationService{}
	svc.On("StartGeneration", mock.Anything, projectID, userID, mock.Anything).Return(nil, ledger.ErrInsufficientCredits)

	body := strings.NewReader(`{"prompt":"a landing page"}`)
	req := httptest.NewRequest(http.MethodPost, "/projects/"+projectID.String()+"/generations", body)
	rr := httptest.NewRecorder()
	generationsRouter(svc, userID).ServeHTTP(rr, req)

	require.Equal(t, http.StatusPaymentRequired, rr.Code)
	var resp types.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "insufficient_credits", resp.Error.Code)
}

func TestCreateGenerationRejectsEmptyPrompt(t *testing.T) {
	svc := &mockGenerationService{}
	req := httptest.NewRequest(http.MethodPost, "/projects/"+uuid.NewString()+"/generations", strings.NewReader(`{"prompt":""}`))
	rr := httptest.NewRecorder()
	generationsRouter(svc, uuid.New()).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "StartGeneration", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetGenerationRun(t *testing.T) {
	userID := uuid.New()
	runID := uuid.New()
	run := &models.GenerationRun{ID: runID, UserID: userID, Status: models.RunStatusCompleted}

	svc := &mockGenerationService{}
	svc.On("GetRun", mock.Anything, runID, userID).Return(run, nil)

	req := httptest.NewRequest(http.MethodGet, "/generations/"+runID.String(), nil)
	rr := httptest.NewRecorder()
	generationsRouter(svc, userID).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
