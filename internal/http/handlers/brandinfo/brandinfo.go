// Package brandinfo реализует HTTP-обработчик каталога бренда: планы,
// принимаемые активы и оформление витрины. Витрина рендерит себя по этим
// данным, код страницы один на все бренды.
package brandinfo

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kseleznyov/crypto-checkout/internal/brand"
	"github.com/kseleznyov/crypto-checkout/internal/http/response"
	"github.com/kseleznyov/crypto-checkout/internal/lib/sl"
	services "github.com/kseleznyov/crypto-checkout/internal/services/checkout"
)

// Handler обрабатывает запросы на получение каталога бренда.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики сессий оформления
}

// Service описывает интерфейс бизнес-логики чтения каталога бренда.
type Service interface {
	BrandCatalog(brandKey string) (brand.Brand, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить каталог бренда
// @Description Возвращает планы, активы и оформление витрины бренда.
// @Tags Brands
// @Produce  json
// @Param brand path string true "Ключ бренда"
// @Success 200 {object} map[string]any "Каталог бренда"
// @Failure 404 {object} response.ErrorResponse "Бренд не найден"
// @Router /brands/{brand} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.brandinfo"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := chi.URLParam(r, "brand")

	b, err := h.service.BrandCatalog(key)
	if err != nil {
		if errors.Is(err, services.ErrBrandNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("brand not found"))
			return
		}
		log.Error("failed to read brand catalog", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read brand catalog"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"brand": b,
	}))
}
