// Package setemail реализует HTTP-обработчик ввода email покупателя.
//
// Email проверяется валидатором на входе; окончательная проверка происходит
// при фиксации оформления. В фазе оплаты изменение email игнорируется —
// ключ уйдёт на адрес, согласованный в момент фиксации.
package setemail

import (
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
)

// Request — тело запроса с email покупателя.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Handler обрабатывает запросы на сохранение email в сессии.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики сессий оформления
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики сохранения email.
type Service interface {
	SetEmail(id, email string) (models.SessionSnapshot, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Сохранить email покупателя
// @Description Сохраняет email для доставки ключа. В фазе оплаты вызов игнорируется.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор сессии"
// @Param request body Request true "Email покупателя"
// @Success 200 {object} map[string]any "Снимок сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации email"
// @Router /sessions/{id}/email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.setemail"
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

	snap, err := h.service.SetEmail(chi.URLParam(r, "id"), req.Email)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
			return
		}
		log.Error("failed to set email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not set email"))
		return
	}

	log.Info("success to set email")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": snap,
	}))
}
