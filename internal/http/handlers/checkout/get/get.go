// Package get реализует HTTP-обработчик получения снимка сессии оформления.
package get

import (
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

// Handler обрабатывает запросы на получение состояния сессии по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики сессий оформления
}

// Service описывает интерфейс бизнес-логики чтения снимка сессии.
type Service interface {
	Snapshot(id string) (models.SessionSnapshot, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить состояние сессии
// @Description Возвращает снимок сессии: фазу, выбор, сумму, адрес и остаток окна оплаты.
// @Tags Sessions
// @Produce  json
// @Param id path string true "Идентификатор сессии"
// @Success 200 {object} map[string]any "Снимок сессии"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Router /sessions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	snap, err := h.service.Snapshot(id)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
			return
		}
		log.Error("failed to read session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read session"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": snap,
	}))
}
