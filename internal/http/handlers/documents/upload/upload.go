// Package upload реализует HTTP-обработчик страницы загрузки документов
// вне мастера онбординга.
//
// Как и в мастере, все выбранные файлы уходят одним multipart-пакетом.
package upload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// maxUploadBytes — предел размера multipart-формы в памяти.
const maxUploadBytes = 32 << 20

// Service описывает вызов загрузки документов.
type Service interface {
	UploadDocuments(ctx context.Context, token string, files []backendapi.StagedFile) error
}

// Handler обрабатывает страницу загрузки.
type Handler struct {
	log     *slog.Logger
	render  *web.Renderer
	backend Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, render *web.Renderer, backend Service) *Handler {
	return &Handler{log: log, render: render, backend: backend}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.documents.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		h.show(w, r, http.StatusOK, "", "")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		h.show(w, r, http.StatusBadRequest, "upload.error_upload", "")
		return
	}

	var files []backendapi.StagedFile
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			log.Error("failed to open uploaded file", sl.Err(err), slog.String("filename", header.Filename))
			h.show(w, r, http.StatusBadRequest, "upload.error_upload", "")
			return
		}
		defer file.Close() //nolint:errcheck
		files = append(files, backendapi.StagedFile{Name: header.Filename, Reader: file})
	}

	if len(files) == 0 {
		h.show(w, r, http.StatusUnprocessableEntity, "upload.error_upload", "")
		return
	}

	if err := h.backend.UploadDocuments(r.Context(), sess.Token, files); err != nil {
		log.Error("document batch upload failed", sl.Err(err), slog.Int("files", len(files)))
		if errors.Is(err, backendapi.ErrTransport) {
			h.show(w, r, http.StatusBadGateway, "upload.error_connection", "")
			return
		}
		h.show(w, r, http.StatusBadGateway, "upload.error_upload", "")
		return
	}

	log.Info("document batch uploaded", slog.Int("files", len(files)), slog.Int("user_id", sess.User.ID))
	h.show(w, r, http.StatusOK, "", "upload.success")
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, status int, errKey, flashKey string) {
	sess, _ := middlewarectx.SessionFromContext(r.Context())
	page := web.Page{
		Lang:     middlewarectx.LangFromContext(r.Context()),
		TitleKey: "upload.title",
		Error:    errKey,
		Flash:    flashKey,
	}
	if sess != nil {
		page.User = &sess.User
	}
	h.render.Render(w, status, "upload.html", page)
}
