// Package login реализует HTTP-обработчик экрана входа.
//
// GET рендерит форму, POST отправляет учетные данные бэкенду. При успехе
// создаётся серверная сессия, её идентификатор запечатывается в cookie,
// а пользователь уходит на дашборд или в мастер онбординга — в зависимости
// от того, закончен ли онбординг. Ошибки бэкенда переводятся в ключи
// локализации, форма рендерится заново с введённым e-mail.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/onboarding"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Service описывает вызов бэкенда для входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*backendapi.AuthResponse, error)
}

// Form — данные формы входа, возвращаемые в шаблон при ошибке.
type Form struct {
	Email    string
	Remember bool
}

// Handler обрабатывает экран входа.
type Handler struct {
	log         *slog.Logger
	render      *web.Renderer
	backend     Service
	store       session.Store
	codec       *session.Codec
	ttl         time.Duration
	rememberTTL time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer, backend Service, store session.Store, codec *session.Codec, ttl, rememberTTL time.Duration) *Handler {
	return &Handler{
		log:         log,
		render:      render,
		backend:     backend,
		store:       store,
		codec:       codec,
		ttl:         ttl,
		rememberTTL: rememberTTL,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if r.Method != http.MethodPost {
		h.show(w, r, http.StatusOK, Form{}, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.show(w, r, http.StatusBadRequest, Form{}, "auth.login.error_invalid")
		return
	}

	form := Form{
		Email:    r.PostFormValue("email"),
		Remember: r.PostFormValue("remember") != "",
	}

	auth, err := h.backend.Login(r.Context(), form.Email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, backendapi.ErrTransport) {
			log.Error("backend unreachable", sl.Err(err))
			h.show(w, r, http.StatusBadGateway, form, "auth.login.error_connection")
			return
		}
		log.Warn("login rejected", slog.String("email", form.Email), sl.Err(err))
		h.show(w, r, http.StatusUnauthorized, form,
			backendapi.UserMessage(err, "auth.login.error_invalid"))
		return
	}

	sess := session.New(auth.AccessToken, auth.User, form.Remember)
	if err := h.store.Save(r.Context(), sess); err != nil {
		log.Error("failed to save session", sl.Err(err))
		h.show(w, r, http.StatusServiceUnavailable, form, "auth.login.error_connection")
		return
	}

	ttl := h.ttl
	if form.Remember {
		ttl = h.rememberTTL
	}
	if err := h.codec.WriteCookie(w, sess.ID, ttl); err != nil {
		log.Error("failed to seal session cookie", sl.Err(err))
		h.show(w, r, http.StatusInternalServerError, form, "auth.login.error_connection")
		return
	}

	log.Info("login success", slog.Int("user_id", auth.User.ID), sl.Secret("token", auth.AccessToken))

	target := "/dashboard"
	if auth.User.OnboardingCompleted < onboarding.CompletedCount {
		target = "/onboarding"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, status int, form Form, errKey string) {
	h.render.Render(w, status, "login.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "auth.login.title",
		Error:    errKey,
		Data:     form,
	})
}
