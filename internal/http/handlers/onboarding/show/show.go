// Package show реализует HTTP-обработчик отображения мастера онбординга.
//
// Видимый шаг приходит query-параметром step и зажимается по прогрессу,
// подтверждённому сервером. Запрос без параметра показывает первый шаг:
// после перезагрузки мастер визуально начинается сначала, введённые на
// первом шаге данные при этом подставляются из профиля. Пользователь с
// законченным онбордингом мастер больше не видит.
package show

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/onboarding"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// View — данные мастера для шаблона.
type View struct {
	Step         int
	Phone        string
	ICO          string
	BusinessType string
	VATStatus    string
}

// Handler отображает мастер онбординга.
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
	if sess.User.OnboardingCompleted >= onboarding.CompletedCount {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	requested, _ := strconv.Atoi(r.URL.Query().Get("step"))
	step := onboarding.VisibleStep(requested, sess.User.OnboardingCompleted)

	h.render.Render(w, http.StatusOK, "onboarding.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: titleKey(step),
		User:     &sess.User,
		Data: View{
			Step:         step,
			Phone:        sess.User.Phone,
			ICO:          sess.User.ICO,
			BusinessType: sess.User.BusinessType,
			VATStatus:    sess.User.VATStatus,
		},
	})
}

// titleKey подбирает заголовок страницы под видимый шаг мастера.
func titleKey(step int) string {
	switch step {
	case onboarding.StepDocuments:
		return "onboarding.step2_title"
	case onboarding.StepReview:
		return "onboarding.step3_title"
	default:
		return "onboarding.step1_title"
	}
}
