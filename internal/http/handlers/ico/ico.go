// Package ico реализует HTTP-обработчик поиска фирмы в бизнес-регистре.
//
// Единственный JSON-эндпоинт страничного приложения: форма первого шага
// онбординга дергает его, чтобы подставить данные фирмы по IČO.
package ico

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/http/response"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
)

// Service описывает вызов бизнес-регистра.
type Service interface {
	ICODetails(ctx context.Context, ico string) (*backendapi.ICODetails, error)
}

// Request — параметры поиска.
//
// IČO — число из 6-8 цифр.
type Request struct {
	ICO string `validate:"required,numeric,min=6,max=8"`
}

// Handler обрабатывает поиск по IČO.
type Handler struct {
	log      *slog.Logger
	backend  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, backend Service) *Handler {
	return &Handler{
		log:      log,
		backend:  backend,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ico"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, ok := middlewarectx.SessionFromContext(r.Context()); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("not authenticated"))
		return
	}

	req := Request{ICO: chi.URLParam(r, "ico")}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	details, err := h.backend.ICODetails(r.Context(), req.ICO)
	if err != nil {
		if errors.Is(err, backendapi.ErrTransport) {
			log.Error("registry unreachable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("registry unavailable"))
			return
		}
		log.Warn("company not found", slog.String("ico", req.ICO), sl.Err(err))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("company not found"))
		return
	}

	log.Info("company found", slog.String("ico", req.ICO))
	render.JSON(w, r, response.OKWithData(details))
}
