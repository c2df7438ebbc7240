package begin

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
	"github.com/kseleznyov/crypto-checkout/internal/session"
)

// MockService реализует интерфейс begin.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) BeginCheckout(ctx context.Context, id string) (models.SessionSnapshot, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.SessionSnapshot), args.Error(1)
}

func TestBeginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		sessionID      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешная фиксация",
			sessionID: "sess-1",
			setupMock: func(m *MockService) {
				m.On("BeginCheckout", mock.Anything, "sess-1").Return(models.SessionSnapshot{
					ID:           "sess-1",
					Phase:        models.PhasePaying,
					LockedAmount: "0.00041461",
					Address:      "bc1-addr",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"locked_amount":"0.00041461"`,
		},
		{
			name:      "сессия не найдена",
			sessionID: "missing",
			setupMock: func(m *MockService) {
				m.On("BeginCheckout", mock.Anything, "missing").
					Return(models.SessionSnapshot{}, services.ErrSessionNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"session not found"`,
		},
		{
			name:      "провал guard-проверки email",
			sessionID: "sess-1",
			setupMock: func(m *MockService) {
				m.On("BeginCheckout", mock.Anything, "sess-1").Return(models.SessionSnapshot{
					ID:            "sess-1",
					Phase:         models.PhaseSelecting,
					StatusMessage: "Enter a valid email address to receive your key.",
				}, session.ErrInvalidEmail)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"Enter a valid email address to receive your key."`,
		},
		{
			name:      "пул адресов исчерпан",
			sessionID: "sess-1",
			setupMock: func(m *MockService) {
				m.On("BeginCheckout", mock.Anything, "sess-1").Return(models.SessionSnapshot{
					ID:            "sess-1",
					Phase:         models.PhaseSelecting,
					StatusMessage: "No payment address is available right now. Try again later.",
				}, session.ErrPoolExhausted)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"No payment address is available right now. Try again later."`,
		},
		{
			name:      "сетевой сбой при фиксации",
			sessionID: "sess-1",
			setupMock: func(m *MockService) {
				m.On("BeginCheckout", mock.Anything, "sess-1").Return(models.SessionSnapshot{
					ID:            "sess-1",
					Phase:         models.PhaseSelecting,
					StatusMessage: "Something went wrong. Please try again.",
				}, session.ErrTransportFailure)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `"error":"Something went wrong. Please try again."`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/sessions/"+tt.sessionID+"/checkout", nil)
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
