// Package backendapi реализует HTTP-клиент для TAXA backend API.
//
// Вся бизнес-логика (распознавание документов, ответы ассистента, расчёт
// налогов, хранение данных, выпуск токенов) живёт за этим API; клиент лишь
// переносит данные. Каждый вызов — один запрос без повторов и отмены:
// единственный таймаут задаётся транспортом http.Client.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taxa-sk/taxa-web/internal/models"
)

// Client — клиент TAXA backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент бэкенда. Нулевой таймаут заменяется на 10 секунд.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}

// Login выполняет вход. Бэкенд ожидает form-encoded тело с полем username,
// в которое кладётся email (контракт OAuth2 password-формы).
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out AuthResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register регистрирует нового пользователя. Свежая учётная запись
// возвращается с onboarding_completed = 0.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var out AuthResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOnboarding отправляет частичное обновление профиля и возвращает
// полного обновлённого пользователя. Состав patch определяет вызывающая
// сторона: сервер авторитетен для итогового onboarding_completed.
func (c *Client) UpdateOnboarding(ctx context.Context, token string, patch map[string]any) (*models.UserRecord, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, "/api/auth/onboarding", token, patch)
	if err != nil {
		return nil, err
	}
	var out models.UserRecord
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocuments отправляет все файлы одним multipart-пакетом в поле files.
// Пакет принимается или отклоняется целиком, пофайловой атрибуции ошибок нет.
func (c *Client) UploadDocuments(ctx context.Context, token string, files []StagedFile) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/documents/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req, nil)
}

// ListDocuments возвращает записи о загруженных документах.
func (c *Client) ListDocuments(ctx context.Context, token string) ([]models.Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/documents", token, nil)
	if err != nil {
		return nil, err
	}
	var out []models.Document
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chat отправляет сообщение ассистенту и возвращает текст ответа.
func (c *Client) Chat(ctx context.Context, token, message string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/chat", token, map[string]string{
		"message": message,
	})
	if err != nil {
		return "", err
	}
	var out ChatResponse
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// ExportData возвращает GDPR-выгрузку данных пользователя как есть.
func (c *Client) ExportData(ctx context.Context, token string) (Export, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/gdpr/my-data", token, nil)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return Export(out), nil
}

// DeleteAccount удаляет аккаунт и возвращает счётчики удалённых данных.
func (c *Client) DeleteAccount(ctx context.Context, token string) (*DeleteResult, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/api/gdpr/delete-account", token, nil)
	if err != nil {
		return nil, err
	}
	var out DeleteResult
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PrivacyInfo возвращает публичную справку о защите данных.
func (c *Client) PrivacyInfo(ctx context.Context) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/gdpr/privacy-info", "", nil)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ICODetails ищет предпринимателя в бизнес-регистре по IČO.
func (c *Client) ICODetails(ctx context.Context, ico string) (*ICODetails, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/ico/details/"+url.PathEscape(ico), "", nil)
	if err != nil {
		return nil, err
	}
	var out ICODetails
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
