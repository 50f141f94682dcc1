// Package chat реализует HTTP-обработчик панели AI-ассистента.
//
// Переписка живёт в серверной сессии и строго append-only. Первая загрузка
// пустой переписки добавляет локализованное приветствие. Ошибки бэкенда
// не выбрасывают пользователя из переписки: вместо ответа ассистента
// в ленту добавляется локализованный текст ошибки, уже отправленное
// сообщение пользователя остаётся.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/i18n"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Service описывает вызов бэкенда для чата.
type Service interface {
	Chat(ctx context.Context, token, message string) (string, error)
}

// View — данные переписки для шаблона.
type View struct {
	Messages []models.ChatMessage
}

// Handler обрабатывает панель ассистента.
type Handler struct {
	log        *slog.Logger
	render     *web.Renderer
	translator *i18n.Translator
	backend    Service
	store      session.Store
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer, translator *i18n.Translator, backend Service, store session.Store) *Handler {
	return &Handler{
		log:        log,
		render:     render,
		translator: translator,
		backend:    backend,
		store:      store,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	lang := middlewarectx.LangFromContext(r.Context())

	if r.Method == http.MethodPost {
		h.send(w, r, log, sess, lang)
		return
	}

	// приветствие добавляется один раз в пустую переписку
	if len(sess.Chat) == 0 {
		sess.AppendChat(models.RoleAssistant, h.translator.T(lang, "ai.welcome"))
		if err := h.store.Save(r.Context(), sess); err != nil {
			log.Error("failed to save session", sl.Err(err))
		}
	}

	h.render.Render(w, http.StatusOK, "chat.html", web.Page{
		Lang:     lang,
		TitleKey: "ai.title",
		User:     &sess.User,
		Data:     View{Messages: sess.Chat},
	})
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request, log *slog.Logger, sess *session.Session, lang string) {
	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		// пустая отправка — no-op
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	sess.AppendChat(models.RoleUser, message)

	answer, err := h.backend.Chat(r.Context(), sess.Token, message)
	switch {
	case err == nil:
		sess.AppendChat(models.RoleAssistant, answer)
	case errors.Is(err, backendapi.ErrTransport):
		log.Error("assistant unreachable", sl.Err(err))
		sess.AppendChat(models.RoleAssistant, h.translator.T(lang, "ai.error_connection"))
	default:
		log.Error("assistant request failed", sl.Err(err))
		sess.AppendChat(models.RoleAssistant, h.translator.T(lang, "ai.error_retry"))
	}

	if err := h.store.Save(r.Context(), sess); err != nil {
		log.Error("failed to save session", sl.Err(err))
	}

	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}
