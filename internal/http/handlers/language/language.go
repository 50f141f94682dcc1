// Package language реализует HTTP-обработчик переключателя языка.
//
// Выбранный язык хранится в отдельной cookie и не привязан к сессии:
// переключатель работает и на публичных страницах. Неподдерживаемый тег
// тихо откатывается к языку по умолчанию.
package language

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/i18n"
)

// Handler сохраняет выбранный язык в cookie.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.language"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	lang := i18n.Normalize(r.PostFormValue("language"))
	http.SetCookie(w, &http.Cookie{
		Name:     i18n.CookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	log.Info("language switched", slog.String("language", lang))

	target := r.Header.Get("Referer")
	if target == "" || !strings.HasPrefix(target, "/") && !sameHost(r, target) {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// sameHost не даёт Referer увести редирект на чужой хост.
func sameHost(r *http.Request, target string) bool {
	return strings.HasPrefix(target, "http://"+r.Host+"/") ||
		strings.HasPrefix(target, "https://"+r.Host+"/")
}
