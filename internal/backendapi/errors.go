package backendapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrTransport маркирует сетевые сбои: до сервера не достучались, либо
// ответ не удалось прочитать. Пользователю такие ошибки показываются
// только обобщённой локализованной строкой.
var ErrTransport = errors.New("backend unreachable")

// APIError — отклонённый сервером запрос. Бэкенд кладёт описание в поле
// detail: либо одной строкой, либо списком ошибок валидации полей.
// Оба варианта разбираются явно, см. detailPayload.
type APIError struct {
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Message возвращает первое человекочитаемое сообщение сервера
// или пустую строку, если сервер его не прислал.
func (e *APIError) Message() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return ""
}

// UserMessage возвращает текст для баннера ошибки: сообщение сервера,
// если отклонённый запрос его принёс, иначе fallback — ключ локализации
// обобщённой строки. Сетевые сбои сюда не попадают, они всегда
// показываются обобщённо.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}

// detailPayload покрывает оба формата поля detail.
type detailPayload struct {
	Detail json.RawMessage `json:"detail"`
}

type fieldError struct {
	Msg string `json:"msg"`
}

// decodeError читает тело не-OK ответа и строит APIError.
// Неразборчивое тело не считается отдельной ошибкой: возвращается
// APIError без сообщений, хендлер подставит локализованный текст.
func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var payload detailPayload
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return apiErr
	}

	// detail: "одно сообщение"
	var single string
	if err := json.Unmarshal(payload.Detail, &single); err == nil {
		if single != "" {
			apiErr.Messages = []string{single}
		}
		return apiErr
	}

	// detail: [{"msg": ...}, ...]
	var fields []fieldError
	if err := json.Unmarshal(payload.Detail, &fields); err == nil {
		for _, f := range fields {
			if f.Msg != "" {
				apiErr.Messages = append(apiErr.Messages, f.Msg)
			}
		}
	}
	return apiErr
}
