package wizard

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/i18n"
	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	translator, err := i18n.New()
	require.NoError(t, err)
	render, err := web.New(newNoopLogger(), translator)
	require.NoError(t, err)
	return New(newNoopLogger(), render)
}

func withSession(req *http.Request) *http.Request {
	sess := session.New("tok", models.UserRecord{ID: 1, OnboardingCompleted: 3}, false)
	return req.WithContext(context.WithValue(req.Context(), middlewarectx.SessionKey, sess))
}

func postStep(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/declaration", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withSession(req)
}

func TestWizardHandler_ServeHTTP(t *testing.T) {
	t.Run("GET opens the first step", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandler(t).ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/declaration", nil)))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `name="year"`)
	})

	t.Run("second step estimates nineteen percent of the base", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandler(t).ServeHTTP(w, postStep(url.Values{
			"step":     {"2"},
			"year":     {"2025"},
			"income":   {"1000"},
			"expenses": {"400"},
			"tax_paid": {"0"},
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "114.00")
	})

	t.Run("negative base clamps the estimate to zero", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandler(t).ServeHTTP(w, postStep(url.Values{
			"step":     {"2"},
			"year":     {"2025"},
			"income":   {"100"},
			"expenses": {"500"},
		}))

		assert.Contains(t, w.Body.String(), "0.00")
	})

	t.Run("back from summary returns to amounts with values kept", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandler(t).ServeHTTP(w, postStep(url.Values{
			"step":     {"3"},
			"back":     {"1"},
			"year":     {"2025"},
			"income":   {"1000"},
			"expenses": {"400"},
		}))

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `name="income"`)
		assert.Contains(t, body, `value="1000"`)
	})

	t.Run("generate shows confirmation on the summary", func(t *testing.T) {
		w := httptest.NewRecorder()
		newHandler(t).ServeHTTP(w, postStep(url.Values{
			"step":     {"3"},
			"year":     {"2025"},
			"income":   {"1000"},
			"expenses": {"400"},
		}))

		assert.Contains(t, w.Body.String(), "Daňové priznanie bolo vygenerované!")
	})
}
