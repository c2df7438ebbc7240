package get

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kseleznyov/crypto-checkout/internal/models"
	services "github.com/kseleznyov/crypto-checkout/internal/services/checkout"
)

// MockService реализует интерфейс get.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Snapshot(id string) (models.SessionSnapshot, error) {
	args := m.Called(id)
	return args.Get(0).(models.SessionSnapshot), args.Error(1)
}

func TestGetHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное чтение сессии",
			sessionID: "sess-1",
			setupMock: func(m *MockService) {
				m.On("Snapshot", "sess-1").Return(models.SessionSnapshot{
					ID:            "sess-1",
					Brand:         "alpha",
					Phase:         models.PhaseSelecting,
					PlanID:        "pro",
					PreviewAmount: "0.00041461",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"phase":"selecting"`,
		},
		{
			name:      "сессия не найдена",
			sessionID: "missing",
			setupMock: func(m *MockService) {
				m.On("Snapshot", "missing").
					Return(models.SessionSnapshot{}, services.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"session not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/sessions/"+tt.sessionID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.sessionID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
