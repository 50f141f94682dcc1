package middlewarectx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/session"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// attachSession кладёт сессию в хранилище и ставит cookie на запрос.
func attachSession(t *testing.T, store session.Store, codec *session.Codec, r *http.Request, sess *session.Session) {
	t.Helper()
	require.NoError(t, store.Save(r.Context(), sess))

	rec := httptest.NewRecorder()
	require.NoError(t, codec.WriteCookie(rec, sess.ID, time.Hour))
	r.Header.Set("Cookie", rec.Header().Get("Set-Cookie"))
}

func expiredToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestSessionMiddleware(t *testing.T) {
	codec, err := session.NewCodec(testKeyHex)
	require.NoError(t, err)

	t.Run("no cookie redirects to login", func(t *testing.T) {
		store := session.NewMemoryStore()
		mw := SessionMiddleware(store, codec, newNoopLogger())

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		w := httptest.NewRecorder()

		called := false
		mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.False(t, called)
	})

	t.Run("unknown session id drops cookie and redirects", func(t *testing.T) {
		store := session.NewMemoryStore()
		mw := SessionMiddleware(store, codec, newNoopLogger())

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, codec.WriteCookie(rec, "gone", time.Hour))
		req.Header.Set("Cookie", rec.Header().Get("Set-Cookie"))

		w := httptest.NewRecorder()
		mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run without a session")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Contains(t, w.Header().Get("Set-Cookie"), session.CookieName+"=;")
	})

	t.Run("valid session reaches handler", func(t *testing.T) {
		store := session.NewMemoryStore()
		mw := SessionMiddleware(store, codec, newNoopLogger())

		sess := session.New("tok", models.UserRecord{ID: 7, Email: "jan@example.sk"}, false)
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		attachSession(t, store, codec, req, sess)

		w := httptest.NewRecorder()
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got, ok := SessionFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, 7, got.User.ID)
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("expired token clears session and redirects", func(t *testing.T) {
		store := session.NewMemoryStore()
		mw := SessionMiddleware(store, codec, newNoopLogger())

		sess := session.New(expiredToken(t), models.UserRecord{ID: 7}, false)
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		attachSession(t, store, codec, req, sess)

		w := httptest.NewRecorder()
		mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run with an expired token")
		})).ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		// запись стёрта из хранилища
		_, ok, err := store.Load(req.Context(), sess.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOnboardingGateMiddleware(t *testing.T) {
	mw := OnboardingGateMiddleware(newNoopLogger())

	run := func(completed int) *httptest.ResponseRecorder {
		sess := session.New("tok", models.UserRecord{ID: 1, OnboardingCompleted: completed}, false)
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req = req.WithContext(context.WithValue(req.Context(), SessionKey, sess))

		w := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(w, req)
		return w
	}

	t.Run("unfinished onboarding redirects to wizard", func(t *testing.T) {
		w := run(1)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/onboarding", w.Header().Get("Location"))
	})

	t.Run("finished onboarding passes through", func(t *testing.T) {
		w := run(3)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestLanguageMiddleware(t *testing.T) {
	t.Run("cookie language lands in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "language", Value: "uk"})

		w := httptest.NewRecorder()
		LanguageMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "uk", LangFromContext(r.Context()))
		})).ServeHTTP(w, req)
	})

	t.Run("missing cookie falls back to default", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		w := httptest.NewRecorder()
		LanguageMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "sk", LangFromContext(r.Context()))
		})).ServeHTTP(w, req)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := newNoopLogger()
	middleware := RateLimitMiddleware(logger)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("success")); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	})

	t.Run("allows requests within rate limit", func(t *testing.T) {
		originalLimiter := limiter
		limiter = rate.NewLimiter(10, 10)
		defer func() { limiter = originalLimiter }()

		req := httptest.NewRequest(http.MethodPost, "/login", nil)

		for range 10 {
			w := httptest.NewRecorder()
			middleware(testHandler).ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "success", w.Body.String())
		}
	})

	t.Run("blocks requests exceeding rate limit", func(t *testing.T) {
		originalLimiter := limiter
		limiter = rate.NewLimiter(1, 1)
		defer func() { limiter = originalLimiter }()

		req := httptest.NewRequest(http.MethodPost, "/login", nil)

		w := httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		middleware(testHandler).ServeHTTP(w, req)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, `"too many requests"`+"\n", w.Body.String())
	})
}
