// Package i18n реализует резолвер локализации.
//
// Словари — вложенные JSON-объекты, по одному на язык, с одинаковым набором
// путей ключей. Разрешение ключа вида "auth.login.title" идёт по сегментам;
// неразрешённый ключ возвращается как есть — экран показывает сырой ключ,
// это допустимая деградация, а не ошибка.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage — язык по умолчанию.
const DefaultLanguage = "sk"

// CookieName — имя cookie с выбранным языком.
const CookieName = "language"

// Languages — поддерживаемые языки в порядке показа в переключателе.
var Languages = []string{"sk", "en", "uk", "ru", "hu"}

var supported = map[string]bool{
	"sk": true,
	"en": true,
	"uk": true,
	"ru": true,
	"hu": true,
}

// Translator держит активные словари. Чтение идёт из хендлеров на каждый
// рендер, перезагрузка из вотчера, отсюда RWMutex.
type Translator struct {
	mu    sync.RWMutex
	dicts map[string]map[string]any
}

// New загружает встроенные словари.
func New() (*Translator, error) {
	t := &Translator{dicts: make(map[string]map[string]any)}
	sub, err := fs.Sub(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	if err := t.loadFS(sub); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Translator) loadFS(fsys fs.FS) error {
	const op = "i18n.loadFS"
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	dicts := make(map[string]map[string]any)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(name, ".json")
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", op, name, err)
		}
		var dict map[string]any
		if err := json.Unmarshal(data, &dict); err != nil {
			return fmt.Errorf("%s: %s: %w", op, name, err)
		}
		dicts[lang] = dict
	}
	t.mu.Lock()
	for lang, dict := range dicts {
		t.dicts[lang] = dict
	}
	t.mu.Unlock()
	return nil
}

// ReloadDir перечитывает словари из каталога на диске. Используется
// вотчером в dev-режиме; встроенные словари остаются запасным вариантом.
func (t *Translator) ReloadDir(dir string) error {
	return t.loadFS(os.DirFS(dir))
}

// Supported сообщает, входит ли тег языка в поддерживаемый набор.
func Supported(lang string) bool {
	return supported[lang]
}

// Normalize возвращает lang, если он поддерживается, иначе язык по
// умолчанию. Сохранённый в cookie неподдерживаемый тег тихо откатывается.
func Normalize(lang string) string {
	if Supported(lang) {
		return lang
	}
	return DefaultLanguage
}

// FromRequest достаёт язык из cookie запроса.
func FromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return DefaultLanguage
	}
	return Normalize(cookie.Value)
}

// T разрешает dotted-ключ в строку активного словаря.
// Любой сбой на пути — отсутствующий сегмент, не-объект до конца пути,
// не-строка в листе — возвращает исходный ключ. Никогда не паникует
// и не возвращает пустую строку для непустого ключа.
func (t *Translator) T(lang, key string) string {
	t.mu.RLock()
	dict, ok := t.dicts[Normalize(lang)]
	t.mu.RUnlock()
	if !ok {
		return key
	}

	var current any = dict
	for _, segment := range strings.Split(key, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return key
		}
		current, ok = node[segment]
		if !ok {
			return key
		}
	}
	if s, ok := current.(string); ok {
		return s
	}
	return key
}

// KeyPaths возвращает все dotted-пути словаря. Нужен тестам, которые
// проверяют, что все языки покрывают один и тот же набор ключей.
func (t *Translator) KeyPaths(lang string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	dict, ok := t.dicts[lang]
	if !ok {
		return nil
	}
	var paths []string
	collectPaths("", dict, &paths)
	return paths
}

func collectPaths(prefix string, node map[string]any, out *[]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			collectPaths(full, child, out)
			continue
		}
		*out = append(*out, full)
	}
}
