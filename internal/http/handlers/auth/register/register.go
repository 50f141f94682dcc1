// Package register реализует HTTP-обработчик экрана регистрации.
//
// Несовпадение паролей — локальная проверка, запрос к бэкенду не уходит.
// Успешная регистрация сразу создаёт сессию и отправляет нового
// пользователя в мастер онбординга.
package register

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
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Service описывает вызов бэкенда для регистрации.
type Service interface {
	Register(ctx context.Context, name, email, password string) (*backendapi.AuthResponse, error)
}

// Form — данные формы регистрации, возвращаемые в шаблон при ошибке.
// Пароли в шаблон не возвращаются.
type Form struct {
	Name  string
	Email string
}

// Handler обрабатывает экран регистрации.
type Handler struct {
	log     *slog.Logger
	render  *web.Renderer
	backend Service
	store   session.Store
	codec   *session.Codec
	ttl     time.Duration
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer, backend Service, store session.Store, codec *session.Codec, ttl time.Duration) *Handler {
	return &Handler{
		log:     log,
		render:  render,
		backend: backend,
		store:   store,
		codec:   codec,
		ttl:     ttl,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
		h.show(w, r, http.StatusBadRequest, Form{}, "auth.register.error_registration")
		return
	}

	form := Form{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}
	password := r.PostFormValue("password")

	if password != r.PostFormValue("confirm_password") {
		log.Warn("password confirmation mismatch")
		h.show(w, r, http.StatusUnprocessableEntity, form, "auth.register.error_password_mismatch")
		return
	}

	auth, err := h.backend.Register(r.Context(), form.Name, form.Email, password)
	if err != nil {
		if errors.Is(err, backendapi.ErrTransport) {
			log.Error("backend unreachable", sl.Err(err))
			h.show(w, r, http.StatusBadGateway, form, "auth.register.error_connection")
			return
		}
		log.Warn("registration rejected", slog.String("email", form.Email), sl.Err(err))
		h.show(w, r, http.StatusUnprocessableEntity, form,
			backendapi.UserMessage(err, "auth.register.error_registration"))
		return
	}

	sess := session.New(auth.AccessToken, auth.User, false)
	if err := h.store.Save(r.Context(), sess); err != nil {
		log.Error("failed to save session", sl.Err(err))
		h.show(w, r, http.StatusServiceUnavailable, form, "auth.register.error_connection")
		return
	}
	if err := h.codec.WriteCookie(w, sess.ID, h.ttl); err != nil {
		log.Error("failed to seal session cookie", sl.Err(err))
		h.show(w, r, http.StatusInternalServerError, form, "auth.register.error_connection")
		return
	}

	log.Info("registration success", slog.Int("user_id", auth.User.ID))
	http.Redirect(w, r, "/onboarding", http.StatusSeeOther)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, status int, form Form, errKey string) {
	h.render.Render(w, status, "register.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "auth.register.title",
		Error:    errKey,
		Data:     form,
	})
}
