// Package web рендерит html-страницы приложения. Шаблоны встроены в
// бинарник; все видимые тексты подставляются через резолвер локализации
// функцией t, поэтому в шаблонах нет ни одной «зашитой» строки интерфейса.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/taxa-sk/taxa-web/internal/i18n"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/models"
)

//go:embed templates/*.html static/*
var assetsFS embed.FS

// Page — данные, общие для всех страниц. Конкретный экран кладёт своё
// в Data.
type Page struct {
	Lang     string
	TitleKey string
	User     *models.UserRecord
	Error    string
	Flash    string
	Data     any
}

// Renderer исполняет встроенные шаблоны.
type Renderer struct {
	log  *slog.Logger
	tmpl *template.Template
}

// New парсит встроенные шаблоны. Функция t — разрешение ключа локализации
// для языка запроса, languages — список языков переключателя.
func New(log *slog.Logger, translator *i18n.Translator) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"t":         translator.T,
		"languages": func() []string { return i18n.Languages },
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{log: log, tmpl: tmpl}, nil
}

// Render исполняет шаблон name в буфер и отдаёт его целиком. Ошибка
// исполнения не оставляет клиенту полстраницы.
func (rnd *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	const op = "web.Render"

	var buf bytes.Buffer
	if err := rnd.tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		rnd.log.Error("template execution failed",
			slog.String("op", op),
			slog.String("template", name),
			sl.Err(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		rnd.log.Error("failed to write response", slog.String("op", op), sl.Err(err))
	}
}

// StaticHandler отдаёт встроенные статические файлы (стили).
func StaticHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
