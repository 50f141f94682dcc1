package profile

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
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/i18n"
	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/onboarding"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

type MachineMock struct {
	mock.Mock
}

func (m *MachineMock) SubmitProfile(ctx context.Context, sess *session.Session, form onboarding.ProfileForm) error {
	args := m.Called(ctx, sess, form)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newHandler(t *testing.T, machine Service) *Handler {
	t.Helper()
	translator, err := i18n.New()
	require.NoError(t, err)
	render, err := web.New(newNoopLogger(), translator)
	require.NoError(t, err)
	return New(newNoopLogger(), render, machine, session.NewMemoryStore())
}

func postForm(form url.Values) *http.Request {
	sess := session.New("tok", models.UserRecord{ID: 1}, false)
	req := httptest.NewRequest(http.MethodPost, "/onboarding/profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req.WithContext(context.WithValue(req.Context(), middlewarectx.SessionKey, sess))
}

func profileForm() url.Values {
	return url.Values{
		"phone":         {"+421900111222"},
		"ico":           {"12345678"},
		"business_type": {models.BusinessFlatRate},
		"vat_status":    {models.VATNonPayer},
	}
}

func TestProfileHandler_ServeHTTP(t *testing.T) {
	t.Run("acknowledged profile moves to documents step", func(t *testing.T) {
		machine := new(MachineMock)
		machine.On("SubmitProfile", mock.Anything, mock.Anything, onboarding.ProfileForm{
			Phone:        "+421900111222",
			ICO:          "12345678",
			BusinessType: models.BusinessFlatRate,
			VATStatus:    models.VATNonPayer,
		}).Return(nil).Once()
		handler := newHandler(t, machine)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(profileForm()))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/onboarding?step=2", w.Header().Get("Location"))
		machine.AssertExpectations(t)
	})

	t.Run("backend rejection shows server message", func(t *testing.T) {
		machine := new(MachineMock)
		machine.On("SubmitProfile", mock.Anything, mock.Anything, mock.Anything).
			Return(&backendapi.APIError{StatusCode: 422, Messages: []string{"IČO not found in registry"}}).Once()
		handler := newHandler(t, machine)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(profileForm()))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		// текст из detail важнее обобщённой строки
		assert.Contains(t, w.Body.String(), "IČO not found in registry")
		assert.NotContains(t, w.Body.String(), "Uloženie zlyhalo")
		// введённые значения возвращаются в форму
		assert.Contains(t, w.Body.String(), "+421900111222")
	})

	t.Run("rejection without detail falls back to localized text", func(t *testing.T) {
		machine := new(MachineMock)
		machine.On("SubmitProfile", mock.Anything, mock.Anything, mock.Anything).
			Return(&backendapi.APIError{StatusCode: 500}).Once()
		handler := newHandler(t, machine)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(profileForm()))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Uloženie zlyhalo")
	})

	t.Run("missing fields keep local error text", func(t *testing.T) {
		machine := new(MachineMock)
		machine.On("SubmitProfile", mock.Anything, mock.Anything, mock.Anything).
			Return(onboarding.ErrMissingFields).Once()
		handler := newHandler(t, machine)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{"phone": {"+421900111222"}}))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Vyplňte prosím povinné polia")
	})

	t.Run("unreachable backend shows connection error", func(t *testing.T) {
		machine := new(MachineMock)
		machine.On("SubmitProfile", mock.Anything, mock.Anything, mock.Anything).
			Return(backendapi.ErrTransport).Once()
		handler := newHandler(t, machine)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(profileForm()))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Chyba pripojenia")
	})
}
