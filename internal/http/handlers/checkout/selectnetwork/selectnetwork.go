// Package selectnetwork реализует HTTP-обработчик выбора сети актива.
package selectnetwork

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

// Request — тело запроса на выбор сети.
type Request struct {
	Network string `json:"network" validate:"required"`
}

// Handler обрабатывает запросы на выбор сети в сессии.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики сессий оформления
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выбора сети.
type Service interface {
	SelectNetwork(ctx context.Context, id, network string) (models.SessionSnapshot, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Выбрать сеть актива
// @Description Выбирает сеть для активов с несколькими сетями (например, USDT).
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор сессии"
// @Param request body Request true "Имя сети"
// @Success 200 {object} map[string]any "Снимок сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 422 {object} response.ErrorResponse "Сеть не поддерживается активом"
// @Router /sessions/{id}/network [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.selectnetwork"
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

	snap, err := h.service.SelectNetwork(r.Context(), chi.URLParam(r, "id"), req.Network)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, session.ErrUnknownNetwork):
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("network is not supported by selected asset"))
		default:
			log.Error("failed to select network", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not select network"))
		}
		return
	}

	log.Info("success to select network", slog.String("network", req.Network))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": snap,
	}))
}
