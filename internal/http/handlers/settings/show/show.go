// Package show реализует HTTP-обработчик страницы настроек и приватности.
package show

import (
	"log/slog"
	"net/http"

	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Handler отображает настройки.
type Handler struct {
	log    *slog.Logger
	render *web.Renderer
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer) *Handler {
	return &Handler{log: log, render: render}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.render.Render(w, http.StatusOK, "settings.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "settings.title",
		User:     &sess.User,
		Error:    r.URL.Query().Get("err"),
	})
}
