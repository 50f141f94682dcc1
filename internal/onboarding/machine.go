// Package onboarding реализует машину состояний трёхшагового онбординга.
//
// Видимый шаг мастера — производная от подтверждённого сервером прогресса:
// он никогда не обгоняет onboarding_completed + 1. Каждый переход вперёд —
// ровно один PATCH к бэкенду; локальная копия пользователя в сессии
// перезаписывается только из успешного ответа сервера, так что клиентский
// счётчик прогресса не может уйти вперёд того, что сервер уже записал.
// Переход назад — чисто локальная навигация без обращения к серверу.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/lib/sl"
	"github.com/taxa-sk/taxa-web/internal/models"
	"github.com/taxa-sk/taxa-web/internal/session"
)

// Шаги мастера.
const (
	StepProfile   = 1
	StepDocuments = 2
	StepReview    = 3
)

// CompletedCount — значение onboarding_completed, при котором онбординг
// закончен и мастер больше не показывается.
const CompletedCount = 3

// ErrMissingFields — не заполнены обязательные поля первого шага.
// Локальная ошибка валидации, запрос к серверу не отправляется.
var ErrMissingFields = errors.New("required onboarding fields missing")

// ErrUpload маркирует отказ загрузки пакета документов на втором шаге.
// Переход прерывается до PATCH, подтверждение шага не отправляется.
var ErrUpload = errors.New("document batch upload failed")

// Backend — вызовы бэкенда, нужные машине.
type Backend interface {
	UpdateOnboarding(ctx context.Context, token string, patch map[string]any) (*models.UserRecord, error)
	UploadDocuments(ctx context.Context, token string, files []backendapi.StagedFile) error
}

// Machine продвигает онбординг одного пользователя.
type Machine struct {
	log      *slog.Logger
	backend  Backend
	validate *validator.Validate
}

// New создаёт машину онбординга.
func New(log *slog.Logger, backend Backend) *Machine {
	return &Machine{
		log:      log,
		backend:  backend,
		validate: validator.New(),
	}
}

// VisibleStep вычисляет шаг, который можно показать.
// Запрошенный шаг зажимается в [1, completed+1] и не выходит за третий:
// сервер открывает шаги, клиент их только запрашивает. Запрос без
// параметра шага (requested <= 0) всегда показывает первый шаг —
// наблюдаемое поведение «мастер визуально начинается сначала».
func VisibleStep(requested, completed int) int {
	if requested < StepProfile {
		return StepProfile
	}
	max := completed + 1
	if max > StepReview {
		max = StepReview
	}
	if requested > max {
		return max
	}
	return requested
}

// ProfileForm — данные первого шага. BusinessType и ExpenseType выводятся
// из одного выбора между двумя взаимоисключающими режимами, поэтому
// валидируется только BusinessType.
type ProfileForm struct {
	Phone        string `validate:"omitempty,max=32"`
	ICO          string `validate:"omitempty,numeric"`
	BusinessType string `validate:"required,oneof=flat_rate actual_expenses"`
	VATStatus    string `validate:"required,oneof=non_payer payer"`
}

// ExpenseType возвращает производный режим расходов.
func (f ProfileForm) ExpenseType() string {
	if f.BusinessType == models.BusinessFlatRate {
		return "pausalne_vydavky"
	}
	return "skutocne_vydavky"
}

// SubmitProfile выполняет переход Step1 -> Step2.
// Одна попытка на клик: при любой ошибке пользователь остаётся на первом
// шаге, сессия не меняется.
func (m *Machine) SubmitProfile(ctx context.Context, sess *session.Session, form ProfileForm) error {
	const op = "onboarding.SubmitProfile"
	log := m.log.With(slog.String("op", op), slog.Int("user_id", sess.User.ID))

	if err := m.validate.Struct(form); err != nil {
		log.Warn("profile form validation failed", sl.Err(err))
		return ErrMissingFields
	}

	patch := map[string]any{
		"phone":                nil,
		"business_type":        form.BusinessType,
		"expense_type":         form.ExpenseType(),
		"vat_status":           form.VATStatus,
		"onboarding_completed": 1,
	}
	if form.Phone != "" {
		patch["phone"] = form.Phone
	}
	if form.ICO != "" {
		patch["ico"] = form.ICO
	}

	updated, err := m.backend.UpdateOnboarding(ctx, sess.Token, patch)
	if err != nil {
		log.Error("profile update rejected", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	sess.User = *updated
	log.Info("profile step acknowledged", slog.Int("onboarding_completed", updated.OnboardingCompleted))
	return nil
}

// SubmitDocuments выполняет переход Step2 -> Step3.
// Если файлы есть, сначала уходит один multipart-пакет; его отказ прерывает
// переход до отправки PATCH. Затем подтверждается второй шаг.
func (m *Machine) SubmitDocuments(ctx context.Context, sess *session.Session, files []backendapi.StagedFile) error {
	const op = "onboarding.SubmitDocuments"
	log := m.log.With(slog.String("op", op), slog.Int("user_id", sess.User.ID))

	if len(files) > 0 {
		if err := m.backend.UploadDocuments(ctx, sess.Token, files); err != nil {
			log.Error("document batch upload failed", sl.Err(err), slog.Int("files", len(files)))
			return fmt.Errorf("%w: %w", ErrUpload, err)
		}
		log.Info("document batch uploaded", slog.Int("files", len(files)))
	}

	return m.acknowledge(ctx, sess, 2, op)
}

// Skip пропускает загрузку документов и сразу подтверждает второй шаг.
func (m *Machine) Skip(ctx context.Context, sess *session.Session) error {
	return m.acknowledge(ctx, sess, 2, "onboarding.Skip")
}

// Complete выполняет переход Step3 -> Completed. После успеха вызывающая
// сторона навсегда уводит пользователя на дашборд.
func (m *Machine) Complete(ctx context.Context, sess *session.Session) error {
	return m.acknowledge(ctx, sess, 3, "onboarding.Complete")
}

func (m *Machine) acknowledge(ctx context.Context, sess *session.Session, step int, op string) error {
	log := m.log.With(slog.String("op", op), slog.Int("user_id", sess.User.ID))

	updated, err := m.backend.UpdateOnboarding(ctx, sess.Token, map[string]any{
		"onboarding_completed": step,
	})
	if err != nil {
		log.Error("step acknowledgment rejected", sl.Err(err), slog.Int("step", step))
		return fmt.Errorf("%s: %w", op, err)
	}

	sess.User = *updated
	log.Info("step acknowledged", slog.Int("onboarding_completed", updated.OnboardingCompleted))
	return nil
}
