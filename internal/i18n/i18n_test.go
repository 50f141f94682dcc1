package i18n

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

var languages = []string{"sk", "en", "uk", "ru", "hu"}

func TestAllDictionariesShareKeyPaths(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	reference := tr.KeyPaths("sk")
	require.NotEmpty(t, reference)
	sort.Strings(reference)

	for _, lang := range languages[1:] {
		paths := tr.KeyPaths(lang)
		sort.Strings(paths)
		assert.Equal(t, reference, paths, "dictionary %s diverges from sk", lang)
	}
}

func TestT_ResolvesEveryKeyInEveryLanguage(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	for _, lang := range languages {
		for _, key := range tr.KeyPaths(lang) {
			got := tr.T(lang, key)
			assert.NotEmpty(t, got, "%s/%s resolved to empty string", lang, key)
			assert.NotEqual(t, key, got, "%s/%s fell back to the raw key", lang, key)
		}
	}
}

func TestT_FallsBackToKey(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	tests := []struct {
		name string
		key  string
	}{
		{name: "missing leaf", key: "auth.login.no_such_key"},
		{name: "missing root", key: "nothing.here"},
		{name: "path through a string", key: "auth.login.title.deeper"},
		{name: "non-string leaf", key: "auth.login"},
		{name: "empty-ish key", key: "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tr.T("sk", tt.key))
		})
	}
}

func TestT_UnsupportedLanguageFallsBackToDefault(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, tr.T("sk", "auth.login.title"), tr.T("de", "auth.login.title"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "en", Normalize("en"))
	assert.Equal(t, "sk", Normalize("de"))
	assert.Equal(t, "sk", Normalize(""))
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, DefaultLanguage, FromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "hu"})
	assert.Equal(t, "hu", FromRequest(r))

	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(&http.Cookie{Name: CookieName, Value: "xx"})
	assert.Equal(t, DefaultLanguage, FromRequest(r2))
}

func TestReloadDir_OverridesEmbedded(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	dir := t.TempDir()
	writeLocale(t, dir, "sk.json", `{"auth":{"login":{"title":"Nové prihlásenie"}}}`)

	require.NoError(t, tr.ReloadDir(dir))
	assert.Equal(t, "Nové prihlásenie", tr.T("sk", "auth.login.title"))
	// остальные языки остаются из встроенных словарей
	assert.Equal(t, "Log in", tr.T("en", "auth.login.title"))
}
