// Package pages реализует HTTP-обработчики статических страниц:
// лендинга и юридических текстов (условия, приватность, cookies, GDPR).
package pages

import (
	"log/slog"
	"net/http"

	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Handler отображает статические страницы.
type Handler struct {
	log    *slog.Logger
	render *web.Renderer
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer) *Handler {
	return &Handler{log: log, render: render}
}

// Home отображает лендинг.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "home.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "home.title",
	})
}

// Static возвращает обработчик юридической страницы по префиксу ключей
// локализации, например "pages.terms".
func (h *Handler) Static(keyPrefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := web.Page{
			Lang:     middlewarectx.LangFromContext(r.Context()),
			TitleKey: keyPrefix + ".title",
			Data:     keyPrefix,
		}
		if sess, ok := middlewarectx.SessionFromContext(r.Context()); ok {
			page.User = &sess.User
		}
		h.render.Render(w, http.StatusOK, "page.html", page)
	}
}
