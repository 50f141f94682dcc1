// Package logout реализует HTTP-обработчик выхода из приложения.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/session"
)

// Handler стирает сессию и cookie.
type Handler struct {
	log   *slog.Logger
	store session.Store
	codec *session.Codec
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, store session.Store, codec *session.Codec) *Handler {
	return &Handler{log: log, store: store, codec: codec}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if id, ok := h.codec.IDFromRequest(r); ok {
		if err := h.store.Clear(r.Context(), id); err != nil {
			// cookie всё равно стирается, запись доживёт до TTL
			log.Error("failed to clear session", sl.Err(err))
		}
	}
	h.codec.DropCookie(w)

	log.Info("logout")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
