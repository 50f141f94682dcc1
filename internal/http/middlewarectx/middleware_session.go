// Package middlewarectx содержит HTTP middleware приложения: загрузку
// сессии, гейт онбординга, определение языка и ограничение частоты
// запросов к формам аутентификации.
//
// SessionMiddleware загружает серверную сессию по запечатанной cookie.
// Отсутствующая, испорченная или истёкшая сессия — не ошибка, а обычный
// редирект на /login: защищённый экран при этом не рендерится вовсе.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/i18n"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/onboarding"
	"github.com/taxa-sk/taxa-web/internal/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SessionKey — ключ сессии в контексте.
	SessionKey Key = "session"
	// LangKey — ключ активного языка в контексте.
	LangKey Key = "lang"
)

// SessionFromContext возвращает сессию, положенную SessionMiddleware.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(*session.Session)
	return sess, ok
}

// LangFromContext возвращает активный язык; без middleware — язык по
// умолчанию.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(LangKey).(string); ok {
		return lang
	}
	return i18n.DefaultLanguage
}

// SessionMiddleware возвращает middleware, загружающее сессию из хранилища
// по запечатанной cookie. Токен с истёкшим exp считается отсутствующей
// сессией: запись чистится и пользователь уходит на /login.
func SessionMiddleware(store session.Store, codec *session.Codec, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, ok := codec.IDFromRequest(r)
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			sess, ok, err := store.Load(r.Context(), id)
			if err != nil {
				log.Error("session store unavailable", sl.Err(err))
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !ok {
				codec.DropCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			if session.TokenExpired(sess.Token) {
				log.Info("session token expired", slog.Int("user_id", sess.User.ID))
				if err := store.Clear(r.Context(), id); err != nil {
					log.Error("failed to clear expired session", sl.Err(err))
				}
				codec.DropCookie(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OnboardingGateMiddleware не пускает на дашборд, пока онбординг не
// завершён: пользователь с onboarding_completed < 3 уходит на /onboarding.
func OnboardingGateMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if sess.User.OnboardingCompleted < onboarding.CompletedCount {
				http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LanguageMiddleware кладёт активный язык из cookie в контекст запроса.
func LanguageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), LangKey, i18n.FromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
