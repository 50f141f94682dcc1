package onboarding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/session"
)

type BackendMock struct {
	mock.Mock

	// последовательность вызовов для проверки порядка upload -> patch
	calls []string
}

func (m *BackendMock) UpdateOnboarding(ctx context.Context, token string, patch map[string]any) (*models.UserRecord, error) {
	m.calls = append(m.calls, "patch")
	args := m.Called(ctx, token, patch)
	user, _ := args.Get(0).(*models.UserRecord)
	return user, args.Error(1)
}

func (m *BackendMock) UploadDocuments(ctx context.Context, token string, files []backendapi.StagedFile) error {
	m.calls = append(m.calls, "upload")
	args := m.Called(ctx, token, files)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newSession(completed int) *session.Session {
	return session.New("tok", models.UserRecord{
		ID:                  1,
		Email:               "jan@example.sk",
		OnboardingCompleted: completed,
	}, false)
}

func userWith(completed int) *models.UserRecord {
	return &models.UserRecord{
		ID:                  1,
		Email:               "jan@example.sk",
		OnboardingCompleted: completed,
	}
}

func validForm() ProfileForm {
	return ProfileForm{
		Phone:        "+421900111222",
		BusinessType: models.BusinessFlatRate,
		VATStatus:    models.VATNonPayer,
	}
}

func TestVisibleStep(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		completed int
		want      int
	}{
		{name: "fresh reload starts at one", requested: 0, completed: 2, want: 1},
		{name: "negative requested clamps to one", requested: -5, completed: 0, want: 1},
		{name: "cannot outrun acknowledgment", requested: 3, completed: 1, want: 2},
		{name: "step two after first ack", requested: 2, completed: 1, want: 2},
		{name: "review after second ack", requested: 3, completed: 2, want: 3},
		{name: "never beyond review", requested: 7, completed: 3, want: 3},
		{name: "back navigation allowed", requested: 1, completed: 2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibleStep(tt.requested, tt.completed))
		})
	}
}

func TestProfileForm_ExpenseTypeDerived(t *testing.T) {
	assert.Equal(t, "pausalne_vydavky", ProfileForm{BusinessType: models.BusinessFlatRate}.ExpenseType())
	assert.Equal(t, "skutocne_vydavky", ProfileForm{BusinessType: models.BusinessActualExpenses}.ExpenseType())
}

func TestSubmitProfile_SendsPatchAndMirrorsSession(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(0)

	backend.On("UpdateOnboarding", mock.Anything, "tok", map[string]any{
		"phone":                "+421900111222",
		"business_type":        "flat_rate",
		"expense_type":         "pausalne_vydavky",
		"vat_status":           "non_payer",
		"onboarding_completed": 1,
	}).Return(userWith(1), nil).Once()

	err := machine.SubmitProfile(context.Background(), sess, validForm())
	require.NoError(t, err)

	assert.Equal(t, 1, sess.User.OnboardingCompleted)
	backend.AssertExpectations(t)
}

func TestSubmitProfile_EmptyPhoneSentAsNull(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(0)

	form := validForm()
	form.Phone = ""

	backend.On("UpdateOnboarding", mock.Anything, "tok", mock.MatchedBy(func(patch map[string]any) bool {
		v, present := patch["phone"]
		return present && v == nil
	})).Return(userWith(1), nil).Once()

	require.NoError(t, machine.SubmitProfile(context.Background(), sess, form))
	backend.AssertExpectations(t)
}

func TestSubmitProfile_MissingBusinessTypeIsLocalError(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(0)

	form := validForm()
	form.BusinessType = ""

	err := machine.SubmitProfile(context.Background(), sess, form)
	assert.ErrorIs(t, err, ErrMissingFields)

	// никакого запроса, сессия не изменилась
	backend.AssertNotCalled(t, "UpdateOnboarding", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, sess.User.OnboardingCompleted)
}

func TestSubmitProfile_ServerRejectionLeavesSessionUntouched(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(0)

	backend.On("UpdateOnboarding", mock.Anything, "tok", mock.Anything).
		Return(nil, &backendapi.APIError{StatusCode: 422, Messages: []string{"invalid phone"}}).Once()

	err := machine.SubmitProfile(context.Background(), sess, validForm())
	require.Error(t, err)

	var apiErr *backendapi.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, sess.User.OnboardingCompleted)
}

func TestSubmitDocuments_UploadsBatchThenAcknowledges(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(1)

	files := []backendapi.StagedFile{
		{Name: "faktura1.pdf", Reader: strings.NewReader("one")},
		{Name: "faktura2.pdf", Reader: strings.NewReader("two")},
	}

	backend.On("UploadDocuments", mock.Anything, "tok", files).Return(nil).Once()
	backend.On("UpdateOnboarding", mock.Anything, "tok", map[string]any{
		"onboarding_completed": 2,
	}).Return(userWith(2), nil).Once()

	require.NoError(t, machine.SubmitDocuments(context.Background(), sess, files))

	// ровно один пакет, затем ровно один PATCH, в этом порядке
	assert.Equal(t, []string{"upload", "patch"}, backend.calls)
	assert.Equal(t, 2, sess.User.OnboardingCompleted)
	backend.AssertExpectations(t)
}

func TestSubmitDocuments_UploadFailureAbortsTransition(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(1)

	files := []backendapi.StagedFile{{Name: "faktura.pdf", Reader: strings.NewReader("x")}}

	backend.On("UploadDocuments", mock.Anything, "tok", files).
		Return(errors.New("507 insufficient storage")).Once()

	err := machine.SubmitDocuments(context.Background(), sess, files)
	assert.ErrorIs(t, err, ErrUpload)

	backend.AssertNotCalled(t, "UpdateOnboarding", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1, sess.User.OnboardingCompleted)
}

func TestSubmitDocuments_NoFilesGoesStraightToAck(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(1)

	backend.On("UpdateOnboarding", mock.Anything, "tok", map[string]any{
		"onboarding_completed": 2,
	}).Return(userWith(2), nil).Once()

	require.NoError(t, machine.SubmitDocuments(context.Background(), sess, nil))

	backend.AssertNotCalled(t, "UploadDocuments", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 2, sess.User.OnboardingCompleted)
}

func TestFullFlow_ExactPatchSequence(t *testing.T) {
	backend := new(BackendMock)
	machine := New(newNoopLogger(), backend)
	sess := newSession(0)

	var patches []map[string]any
	backend.On("UpdateOnboarding", mock.Anything, "tok", mock.Anything).
		Run(func(args mock.Arguments) {
			patches = append(patches, args.Get(2).(map[string]any))
		}).
		Return(userWith(1), nil).Once()
	backend.On("UpdateOnboarding", mock.Anything, "tok", mock.Anything).
		Run(func(args mock.Arguments) {
			patches = append(patches, args.Get(2).(map[string]any))
		}).
		Return(userWith(2), nil).Once()
	backend.On("UpdateOnboarding", mock.Anything, "tok", mock.Anything).
		Run(func(args mock.Arguments) {
			patches = append(patches, args.Get(2).(map[string]any))
		}).
		Return(userWith(3), nil).Once()

	ctx := context.Background()
	require.NoError(t, machine.SubmitProfile(ctx, sess, validForm()))
	assert.LessOrEqual(t, VisibleStep(2, sess.User.OnboardingCompleted), sess.User.OnboardingCompleted+1)

	require.NoError(t, machine.Skip(ctx, sess))
	assert.LessOrEqual(t, VisibleStep(3, sess.User.OnboardingCompleted), sess.User.OnboardingCompleted+1)

	require.NoError(t, machine.Complete(ctx, sess))
	assert.Equal(t, CompletedCount, sess.User.OnboardingCompleted)

	require.Len(t, patches, 3)
	assert.Equal(t, 1, patches[0]["onboarding_completed"])
	assert.Equal(t, map[string]any{"onboarding_completed": 2}, patches[1])
	assert.Equal(t, map[string]any{"onboarding_completed": 3}, patches[2])
	backend.AssertExpectations(t)
}
