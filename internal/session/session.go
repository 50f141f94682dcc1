// Package session реализует серверное хранилище сессий.
//
// Сессия — пара «токен бэкенда + зеркальная копия профиля пользователя»
// плюс переписка с ассистентом. Запись и очистка выполняются только через
// интерфейс Store: экраны не трогают хранилище напрямую. Отсутствие сессии —
// нормальная ветка (редирект на /login), а не ошибка.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taxa-sk/taxa-web/internal/models"
)

// Session — состояние одного вошедшего пользователя.
// Token и User пишутся вместе одним значением, промежуточного состояния
// «есть токен, нет пользователя» не существует.
type Session struct {
	ID        string               `json:"id"`
	Token     string               `json:"token"`
	User      models.UserRecord    `json:"user"`
	Remember  bool                 `json:"remember"`
	Chat      []models.ChatMessage `json:"chat,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// Store — контракт хранилища сессий.
//
// Load возвращает (nil, false, nil), если сессии нет либо запись не
// разобралась: обе ситуации равнозначны «не залогинен».
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Load(ctx context.Context, id string) (*Session, bool, error)
	Clear(ctx context.Context, id string) error
}

// New создаёт сессию с новым идентификатором.
func New(token string, user models.UserRecord, remember bool) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		Remember:  remember,
		CreatedAt: time.Now().UTC(),
	}
}

// AppendChat добавляет сообщение в переписку. Только добавление:
// существующие сообщения не меняются и не удаляются.
func (s *Session) AppendChat(role, content string) {
	s.Chat = append(s.Chat, models.ChatMessage{Role: role, Content: content})
}
