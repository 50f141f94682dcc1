// Package wizard реализует HTTP-обработчик локального мастера декларации.
//
// Мастер целиком живёт на клиентской стороне диалога: значения полей
// переносятся между шагами скрытыми полями формы, к бэкенду ничего
// не уходит. Расчёт — ориентировочная оценка по единой ставке.
package wizard

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/taxa-sk/taxa-web/internal/declaration"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// View — состояние мастера для шаблона.
type View struct {
	Step         int
	Year         string
	Years        []string
	Income       string
	Expenses     string
	TaxPaid      string
	EstimatedTax string
	Generated    bool
}

// Handler обрабатывает мастер декларации.
type Handler struct {
	log    *slog.Logger
	render *web.Renderer
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer) *Handler {
	return &Handler{log: log, render: render}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.declaration.wizard"

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	view := View{Step: 1, Years: lastYears(3), Year: strconv.Itoa(time.Now().Year() - 1)}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			view = h.advance(r, view)
		}
	}

	if view.Step == 3 {
		income := declaration.ParseAmount(view.Income)
		expenses := declaration.ParseAmount(view.Expenses)
		view.EstimatedTax = fmt.Sprintf("%.2f", declaration.Estimate(income, expenses))
	}

	if view.Generated {
		h.log.With(slog.String("op", op)).Info("declaration estimate generated",
			slog.Int("user_id", sess.User.ID),
			slog.String("year", view.Year),
		)
	}

	h.render.Render(w, http.StatusOK, "declaration.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "declaration.title",
		User:     &sess.User,
		Data:     view,
	})
}

// advance вычисляет следующий видимый шаг по отправленной форме.
func (h *Handler) advance(r *http.Request, view View) View {
	step, _ := strconv.Atoi(r.PostFormValue("step"))
	back := r.PostFormValue("back") != ""

	view.Year = r.PostFormValue("year")
	if view.Year == "" {
		view.Year = strconv.Itoa(time.Now().Year() - 1)
	}
	view.Income = r.PostFormValue("income")
	view.Expenses = r.PostFormValue("expenses")
	view.TaxPaid = r.PostFormValue("tax_paid")

	switch {
	case step == 1:
		view.Step = 2
	case step == 2 && back:
		view.Step = 1
	case step == 2:
		view.Step = 3
	case step == 3 && back:
		view.Step = 2
	case step == 3:
		view.Step = 3
		view.Generated = true
	default:
		view.Step = 1
	}
	return view
}

func lastYears(n int) []string {
	years := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		years = append(years, strconv.Itoa(time.Now().Year()-i))
	}
	return years
}
