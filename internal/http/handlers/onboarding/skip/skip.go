// Package skip реализует HTTP-обработчик пропуска шага загрузки документов.
//
// Пропуск — тоже подтверждение шага: PATCH уходит, прогресс двигается.
package skip

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/onboarding"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// Service описывает шаг машины онбординга.
type Service interface {
	Skip(ctx context.Context, sess *session.Session) error
}

// View — данные шаблона второго шага.
type View struct {
	Step int
}

// Handler обрабатывает пропуск загрузки документов.
type Handler struct {
	log     *slog.Logger
	render  *web.Renderer
	machine Service
	store   session.Store
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer, machine Service, store session.Store) *Handler {
	return &Handler{log: log, render: render, machine: machine, store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.onboarding.skip"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.machine.Skip(r.Context(), sess); err != nil {
		errKey := "onboarding.error_update"
		if errors.Is(err, backendapi.ErrTransport) {
			errKey = "onboarding.error_connection"
		}
		h.render.Render(w, http.StatusBadGateway, "onboarding.html", web.Page{
			Lang:     middlewarectx.LangFromContext(r.Context()),
			TitleKey: "onboarding.step2_title",
			Error:    errKey,
			Data:     View{Step: onboarding.StepDocuments},
		})
		return
	}

	if err := h.store.Save(r.Context(), sess); err != nil {
		log.Error("failed to save session", sl.Err(err))
	}

	log.Info("documents step skipped", slog.Int("user_id", sess.User.ID))
	http.Redirect(w, r, "/onboarding?step=3", http.StatusSeeOther)
}
