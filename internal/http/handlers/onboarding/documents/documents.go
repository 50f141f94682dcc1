// Package documents реализует HTTP-обработчик второго шага онбординга.
//
// Выбранные файлы уходят бэкенду одним multipart-пакетом до подтверждения
// шага; отказ загрузки оставляет пользователя на втором шаге. Отправка
// формы без файлов эквивалентна пропуску.
package documents

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

// maxUploadBytes — предел размера multipart-формы в памяти.
const maxUploadBytes = 32 << 20

// Service описывает шаг машины онбординга.
type Service interface {
	SubmitDocuments(ctx context.Context, sess *session.Session, files []backendapi.StagedFile) error
}

// View — данные шаблона второго шага.
type View struct {
	Step int
}

// Handler обрабатывает загрузку документов в мастере.
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
	const op = "handlers.onboarding.documents"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.Error("failed to parse multipart form", sl.Err(err))
		h.show(w, r, http.StatusBadRequest, "onboarding.error_upload")
		return
	}

	var files []backendapi.StagedFile
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				log.Error("failed to open uploaded file", sl.Err(err), slog.String("filename", header.Filename))
				h.show(w, r, http.StatusBadRequest, "onboarding.error_upload")
				return
			}
			defer file.Close() //nolint:errcheck
			files = append(files, backendapi.StagedFile{Name: header.Filename, Reader: file})
		}
	}

	if err := h.machine.SubmitDocuments(r.Context(), sess, files); err != nil {
		switch {
		case errors.Is(err, onboarding.ErrUpload):
			h.show(w, r, http.StatusBadGateway, "onboarding.error_upload")
		case errors.Is(err, backendapi.ErrTransport):
			h.show(w, r, http.StatusBadGateway, "onboarding.error_connection")
		default:
			h.show(w, r, http.StatusUnprocessableEntity, "onboarding.error_update")
		}
		return
	}

	if err := h.store.Save(r.Context(), sess); err != nil {
		log.Error("failed to save session", sl.Err(err))
	}

	log.Info("documents step done", slog.Int("user_id", sess.User.ID), slog.Int("files", len(files)))
	http.Redirect(w, r, "/onboarding?step=3", http.StatusSeeOther)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, status int, errKey string) {
	h.render.Render(w, status, "onboarding.html", web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "onboarding.step2_title",
		Error:    errKey,
		Data:     View{Step: onboarding.StepDocuments},
	})
}
