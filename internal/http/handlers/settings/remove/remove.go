// Package remove реализует HTTP-обработчик удаления аккаунта.
//
// Успешное удаление необратимо: бэкенд стирает данные, сессия и cookie
// уничтожаются, пользователю показывается сводка удалённого. Ошибка
// удаления оставляет аккаунт и сессию нетронутыми.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Service описывает вызов удаления аккаунта.
type Service interface {
	DeleteAccount(ctx context.Context, token string) (*backendapi.DeleteResult, error)
}

// View — сводка удалённых данных для шаблона.
type View struct {
	Documents    int
	ChatMessages int
}

// Handler удаляет аккаунт.
type Handler struct {
	log     *slog.Logger
	render  *web.Renderer
	backend Service
	store   session.Store
	codec   *session.Codec
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer, backend Service, store session.Store, codec *session.Codec) *Handler {
	return &Handler{log: log, render: render, backend: backend, store: store, codec: codec}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	result, err := h.backend.DeleteAccount(r.Context(), sess.Token)
	if err != nil {
		log.Error("account deletion failed", sl.Err(err), slog.Int("user_id", sess.User.ID))
		errKey := "settings.delete_error"
		if errors.Is(err, backendapi.ErrTransport) {
			errKey = "settings.connection_error"
		}
		http.Redirect(w, r, "/settings?err="+errKey, http.StatusSeeOther)
		return
	}

	if err := h.store.Clear(r.Context(), sess.ID); err != nil {
		log.Error("failed to clear session", sl.Err(err))
	}
	h.codec.DropCookie(w)

	log.Info("account deleted",
		slog.Int("user_id", sess.User.ID),
		slog.Int("documents", result.DataDeleted.Documents),
		slog.Int("chat_messages", result.DataDeleted.ChatMessages),
	)

	h.render.Render(w, http.StatusOK, "deleted.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "settings.delete_success",
		Data: View{
			Documents:    result.DataDeleted.Documents,
			ChatMessages: result.DataDeleted.ChatMessages,
		},
	})
}
