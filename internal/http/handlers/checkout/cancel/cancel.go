// Package cancel реализует HTTP-обработчик отмены оформления.
//
// Отмена возвращает сессию в фазу выбора с сохранением сделанного выбора;
// выданный адрес освобождается. Тот же обработчик служит сбросом после
// истечения платёжного окна.
package cancel

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
)

// Handler обрабатывает запросы на отмену оформления.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики сессий оформления
}

// Service описывает интерфейс бизнес-логики отмены оформления.
type Service interface {
	Cancel(ctx context.Context, id string) (models.SessionSnapshot, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить оформление
// @Description Возвращает сессию в фазу выбора и освобождает платёжный адрес.
// @Tags Sessions
// @Produce  json
// @Param id path string true "Идентификатор сессии"
// @Success 200 {object} map[string]any "Снимок сессии в фазе выбора"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Router /sessions/{id}/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	snap, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
			return
		}
		log.Error("failed to cancel checkout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel checkout"))
		return
	}

	log.Info("success to cancel checkout", slog.String("session_id", snap.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": snap,
	}))
}
