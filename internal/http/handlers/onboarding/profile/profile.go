// Package profile реализует HTTP-обработчик отправки первого шага онбординга.
//
// Одна попытка на отправку: при любой ошибке форма рендерится заново
// с введёнными значениями, прогресс не меняется. Успешный PATCH двигает
// пользователя на шаг загрузки документов.
package profile

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
	SubmitProfile(ctx context.Context, sess *session.Session, form onboarding.ProfileForm) error
}

// View — повтор формы первого шага при ошибке.
type View struct {
	Step         int
	Phone        string
	ICO          string
	BusinessType string
	VATStatus    string
}

// Handler обрабатывает отправку профиля.
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
	const op = "handlers.onboarding.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.show(w, r, http.StatusBadRequest, onboarding.ProfileForm{}, "onboarding.error_required_fields")
		return
	}

	form := onboarding.ProfileForm{
		Phone:        r.PostFormValue("phone"),
		ICO:          r.PostFormValue("ico"),
		BusinessType: r.PostFormValue("business_type"),
		VATStatus:    r.PostFormValue("vat_status"),
	}

	if err := h.machine.SubmitProfile(r.Context(), sess, form); err != nil {
		switch {
		case errors.Is(err, onboarding.ErrMissingFields):
			h.show(w, r, http.StatusUnprocessableEntity, form, "onboarding.error_required_fields")
		case errors.Is(err, backendapi.ErrTransport):
			h.show(w, r, http.StatusBadGateway, form, "onboarding.error_connection")
		default:
			h.show(w, r, http.StatusUnprocessableEntity, form,
				backendapi.UserMessage(err, "onboarding.error_update"))
		}
		return
	}

	if err := h.store.Save(r.Context(), sess); err != nil {
		// прогресс уже записан бэкендом, устаревшая копия доедет при
		// следующем успешном сохранении
		log.Error("failed to save session", sl.Err(err))
	}

	log.Info("profile step done", slog.Int("user_id", sess.User.ID))
	http.Redirect(w, r, "/onboarding?step=2", http.StatusSeeOther)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, status int, form onboarding.ProfileForm, errKey string) {
	h.render.Render(w, status, "onboarding.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "onboarding.step1_title",
		Error:    errKey,
		Data: View{
			Step:         onboarding.StepProfile,
			Phone:        form.Phone,
			ICO:          form.ICO,
			BusinessType: form.BusinessType,
			VATStatus:    form.VATStatus,
		},
	})
}
