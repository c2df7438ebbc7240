package setemail

import (
	"bytes"
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
)

// MockService реализует интерфейс setemail.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) SetEmail(id, email string) (models.SessionSnapshot, error) {
	args := m.Called(id, email)
	return args.Get(0).(models.SessionSnapshot), args.Error(1)
}

func TestSetEmailHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "валидный email",
			body: `{"email":"buyer@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("SetEmail", "sess-1", "buyer@example.com").Return(models.SessionSnapshot{
					ID:    "sess-1",
					Phase: models.PhaseSelecting,
					Email: "buyer@example.com",
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"email":"buyer@example.com"`,
		},
		{
			name:           "невалидный email",
			body:           `{"email":"not-an-email"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Email must be a valid email address",
		},
		{
			name:           "некорректный JSON",
			body:           "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/sessions/sess-1/email", bytes.NewBufferString(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "sess-1")
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
