package backendapi

import (
	"encoding/json"
	"io"

	"github.com/taxa-sk/taxa-web/internal/models"
)

// AuthResponse — ответ бэкенда на логин и регистрацию.
type AuthResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type,omitempty"`
	User        models.UserRecord `json:"user"`
}

// StagedFile — один файл, подготовленный к отправке в multipart-пакете.
// Порядок файлов в пакете соответствует порядку добавления пользователем.
type StagedFile struct {
	Name   string
	Reader io.Reader
}

// ChatResponse — ответ эндпоинта /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// DeleteResult — ответ на удаление аккаунта: счётчики удалённых данных.
type DeleteResult struct {
	DataDeleted struct {
		Documents    int `json:"documents"`
		ChatMessages int `json:"chat_messages"`
	} `json:"data_deleted"`
}

// ICODetails — результат поиска в бизнес-регистре по IČO.
type ICODetails struct {
	ICO     string `json:"ico"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Legal   string `json:"legal_form,omitempty"`
}

// Export — выгрузка данных пользователя по GDPR, отдаётся как есть.
type Export = json.RawMessage
