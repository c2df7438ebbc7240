// Package selectasset реализует HTTP-обработчик выбора платёжного актива.
//
// Смена актива сбрасывает выбранную сеть: сети предыдущего актива не имеют
// смысла для нового.
package selectasset

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kseleznyov/crypto-checkout/internal/http/response"
	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	"github.com/kseleznyov/crypto-checkout/internal/models"
	services "github.com/kseleznyov/crypto-checkout/internal/services/checkout"
	"github.com/kseleznyov/crypto-checkout/internal/session"
)

// Request — тело запроса на выбор актива.
type Request struct {
	Asset string `json:"asset" validate:"required"`
}

// Handler обрабатывает запросы на выбор платёжного актива в сессии.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики сессий оформления
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выбора актива.
type Service interface {
	SelectAsset(ctx context.Context, id, assetID string) (models.SessionSnapshot, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Выбрать платёжный актив
// @Description Выбирает актив в сессии и сбрасывает выбранную сеть.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор сессии"
// @Param request body Request true "Идентификатор актива"
// @Success 200 {object} map[string]any "Снимок сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 422 {object} response.ErrorResponse "Неизвестный актив"
// @Router /sessions/{id}/asset [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.selectasset"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	snap, err := h.service.SelectAsset(r.Context(), chi.URLParam(r, "id"), req.Asset)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, session.ErrUnknownAsset):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown asset"))
		default:
			log.Error("failed to select asset", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not select asset"))
		}
		return
	}

	log.Info("success to select asset", slog.String("asset", req.Asset))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": snap,
	}))
}
