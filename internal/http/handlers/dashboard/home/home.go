// Package home реализует HTTP-обработчик главного экрана дашборда.
//
// Список документов подтягивается с бэкенда, но его недоступность не
// валит экран: карточка просто показывает пустое состояние.
package home

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Service описывает вызовы бэкенда для дашборда.
type Service interface {
	ListDocuments(ctx context.Context, token string) ([]models.Document, error)
}

// View — данные дашборда для шаблона.
type View struct {
	Documents        []models.Document
	ChatCount        int
	DeclarationCount int
}

// Handler отображает дашборд.
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
	const op = "handlers.dashboard.home"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	docs, err := h.backend.ListDocuments(r.Context(), sess.Token)
	if err != nil {
		// карточка документов переживает недоступный бэкенд
		log.Warn("failed to list documents", sl.Err(err))
		docs = nil
	}

	chatCount := 0
	for _, msg := range sess.Chat {
		if msg.Role == models.RoleUser {
			chatCount++
		}
	}

	h.render.Render(w, http.StatusOK, "dashboard.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "dashboard.title",
		User:     &sess.User,
		Data: View{
			Documents: docs,
			ChatCount: chatCount,
		},
	})
}
