// Package list реализует HTTP-обработчик страницы документов.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Service описывает вызовы бэкенда для страницы документов.
type Service interface {
	ListDocuments(ctx context.Context, token string) ([]models.Document, error)
}

// View — данные страницы документов.
type View struct {
	Documents []models.Document
}

// Handler отображает список документов.
type Handler struct {
	log     *slog.Logger
	render  *web.Renderer
	backend Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer, backend Service) *Handler {
	return &Handler{log: log, render: render, backend: backend}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.documents.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	page := web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "documents.title",
		User:     &sess.User,
	}

	docs, err := h.backend.ListDocuments(r.Context(), sess.Token)
	if err != nil {
		log.Error("failed to list documents", sl.Err(err))
		if errors.Is(err, backendapi.ErrTransport) {
			page.Error = "upload.error_connection"
		} else {
			page.Error = "upload.error_upload"
		}
	}
	page.Data = View{Documents: docs}

	h.render.Render(w, http.StatusOK, "documents.html", page)
}
