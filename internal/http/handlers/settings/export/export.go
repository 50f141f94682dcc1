// Package export реализует HTTP-обработчик выгрузки данных пользователя.
//
// Выгрузка отдаётся браузеру как скачиваемый JSON-файл с датой в имени,
// тело ответа бэкенда не переформатируется.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
)

// Service описывает вызов выгрузки данных.
type Service interface {
	ExportData(ctx context.Context, token string) (backendapi.Export, error)
}

// Handler отдаёт выгрузку данных.
type Handler struct {
	log     *slog.Logger
	backend Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, backend Service) *Handler {
	return &Handler{log: log, backend: backend}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.export"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok := middlewarectx.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	data, err := h.backend.ExportData(r.Context(), sess.Token)
	if err != nil {
		log.Error("data export failed", sl.Err(err))
		errKey := "settings.export_error"
		if errors.Is(err, backendapi.ErrTransport) {
			errKey = "settings.connection_error"
		}
		http.Redirect(w, r, "/settings?err="+errKey, http.StatusSeeOther)
		return
	}

	filename := fmt.Sprintf("taxa-data-export-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write export", sl.Err(err))
		return
	}

	log.Info("data exported", slog.Int("user_id", sess.User.ID), slog.Int("bytes", len(data)))
}
