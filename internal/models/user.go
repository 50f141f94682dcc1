// Package models содержит доменные структуры клиентской части TAXA:
// профиль пользователя, документы и сообщения чата. Все данные этого вида
// принадлежат бэкенду; здесь хранится только их зеркальная копия,
// полученная из ответов API.
package models

// UserRecord представляет профиль пользователя, возвращаемый бэкендом.
// Поле OnboardingCompleted — авторитетный счётчик прогресса онбординга
// (0 — ничего не сделано, 3 — онбординг завершён). Клиент никогда не
// увеличивает его самостоятельно, а только копирует из ответа сервера.
type UserRecord struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	BusinessType        string `json:"business_type,omitempty"`
	ExpenseType         string `json:"expense_type,omitempty"`
	VATStatus           string `json:"vat_status,omitempty"`
	ICO                 string `json:"ico,omitempty"`
	OnboardingCompleted int    `json:"onboarding_completed"`
}

// Значения business_type, выбираемые на первом шаге онбординга.
const (
	BusinessFlatRate       = "flat_rate"
	BusinessActualExpenses = "actual_expenses"
)

// Значения vat_status.
const (
	VATNonPayer = "non_payer"
	VATPayer    = "payer"
)
