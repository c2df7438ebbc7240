// Package create реализует HTTP-обработчик создания сессии оформления.
//
// Handler принимает ключ бренда из URL и необязательный идентификатор плана
// в теле запроса, создает сессию через сервис и возвращает её снимок.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kseleznyov/crypto-checkout/internal/http/response"
	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	"github.com/kseleznyov/crypto-checkout/internal/models"
	services "github.com/kseleznyov/crypto-checkout/internal/services/checkout"
)

// Request — тело запроса на создание сессии.
type Request struct {
	PlanID string `json:"plan_id,omitempty"`
}

// Handler управляет HTTP-запросами на создание сессий оформления.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики сессий оформления
}

// Service описывает интерфейс бизнес-логики создания сессии.
type Service interface {
	CreateSession(ctx context.Context, brandKey, planID string) (models.SessionSnapshot, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать сессию оформления
// @Description Создает сессию оформления для бренда. Тело с plan_id необязательно.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param brand path string true "Ключ бренда"
// @Param request body Request false "Начальный выбор плана"
// @Success 200 {object} map[string]any "Снимок созданной сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Бренд не найден"
// @Failure 422 {object} response.ErrorResponse "Неизвестный план"
// @Router /brands/{brand}/sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	brandKey := chi.URLParam(r, "brand")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	snap, err := h.service.CreateSession(r.Context(), brandKey, req.PlanID)
	if err != nil {
		if errors.Is(err, services.ErrBrandNotFound) {
			log.Error("brand not found", slog.String("brand", brandKey))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("brand not found"))
			return
		}
		log.Error("failed to create session", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown plan"))
		return
	}

	log.Info("success to create session", slog.String("session_id", snap.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": snap,
	}))
}
