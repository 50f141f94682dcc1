package models

// ChatMessage — одна запись в переписке с ассистентом.
// Переписка строго append-only: сообщения не редактируются и не удаляются.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Роли сообщений чата.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
