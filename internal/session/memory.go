package session

import (
	"context"
	"sync"

	"github.com/taxa-sk/taxa-web/internal/models"
)

// MemoryStore — хранилище сессий в памяти процесса. Используется в тестах
// как подмена RedisStore за тем же интерфейсом.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sess
	// срез переписки копируется, чтобы запись не делила память с
	// копией вызывающего (RedisStore изолирует сериализацией)
	stored.Chat = append([]models.ChatMessage(nil), sess.Chat...)
	s.sessions[sess.ID] = stored
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false, nil
	}
	copied := sess
	copied.Chat = append([]models.ChatMessage(nil), sess.Chat...)
	return &copied, true, nil
}

// All возвращает копии всех записей. Вспомогательный метод для тестов.
func (s *MemoryStore) All() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	return all
}

func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
