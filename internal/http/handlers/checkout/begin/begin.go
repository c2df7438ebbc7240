// Package begin реализует HTTP-обработчик фиксации оформления.
//
// Фиксация атомарна: либо сессия переходит в фазу оплаты с зафиксированной
// суммой и выданным адресом, либо возвращается в фазу выбора с понятным
// покупателю сообщением статуса. Частично зафиксированных состояний не бывает.
package begin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kseleznyov/crypto-checkout/internal/http/response"
	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	"github.com/kseleznyov/crypto-checkout/internal/models"
	services "github.com/kseleznyov/crypto-checkout/internal/services/checkout"
	"github.com/kseleznyov/crypto-checkout/internal/session"
)

// Handler обрабатывает запросы на фиксацию оформления.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики сессий оформления
}

// Service описывает интерфейс бизнес-логики фиксации оформления.
type Service interface {
	BeginCheckout(ctx context.Context, id string) (models.SessionSnapshot, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Зафиксировать оформление
// @Description Фиксирует сумму по текущему курсу и выдаёт платёжный адрес. При провале guard-проверок сессия остаётся в фазе выбора.
// @Tags Sessions
// @Produce  json
// @Param id path string true "Идентификатор сессии"
// @Success 200 {object} map[string]any "Снимок сессии в фазе оплаты"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 409 {object} response.ErrorResponse "Нет курса или свободного адреса"
// @Failure 422 {object} response.ErrorResponse "Провал guard-проверки"
// @Router /sessions/{id}/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.begin"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	snap, err := h.service.BeginCheckout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
			return
		}

		// Снимок после провала несёт пользовательское сообщение статуса,
		// его и отдаём клиенту.
		msg := snap.StatusMessage
		if msg == "" {
			msg = "could not begin checkout"
		}
		log.Error("failed to begin checkout", sl.Err(err))
		switch {
		case errors.Is(err, session.ErrRateUnavailable),
			errors.Is(err, session.ErrPoolExhausted):
			w.WriteHeader(http.StatusConflict)
		case errors.Is(err, session.ErrTransportFailure):
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		render.JSON(w, r, response.Error(msg))
		return
	}

	log.Info("success to lock checkout",
		slog.String("session_id", snap.ID),
		slog.String("amount", snap.LockedAmount),
		slog.String("address", snap.Address))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": snap,
	}))
}
