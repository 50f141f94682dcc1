package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// CookieName — имя cookie с запечатанным идентификатором сессии.
const CookieName = "taxa_session"

var errBadCookie = errors.New("malformed session cookie")

// Codec запечатывает идентификатор сессии в cookie. В браузер уходит не
// сам идентификатор, а его шифртекст: подделать или перебрать ключ сессии
// снаружи нельзя.
type Codec struct {
	key []byte
}

// NewCodec принимает ключ — hex-строку из 64 символов (32 байта).
func NewCodec(keyHex string) (*Codec, error) {
	const op = "session.NewCodec"
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%s: key must be %d bytes", op, chacha20poly1305.KeySize)
	}
	return &Codec{key: key}, nil
}

// Seal шифрует идентификатор сессии для укладки в cookie.
func (c *Codec) Seal(id string) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(id), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open расшифровывает значение cookie обратно в идентификатор сессии.
func (c *Codec) Open(value string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", errBadCookie
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", errBadCookie
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	id, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errBadCookie
	}
	return string(id), nil
}

// WriteCookie ставит сессионную cookie. Срок совпадает со сроком записи
// в хранилище.
func (c *Codec) WriteCookie(w http.ResponseWriter, id string, ttl time.Duration) error {
	sealed, err := c.Seal(id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sealed,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// DropCookie стирает сессионную cookie.
func (c *Codec) DropCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// IDFromRequest достаёт идентификатор сессии из запроса.
// Отсутствие или порча cookie — обычное «не залогинен».
func (c *Codec) IDFromRequest(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	id, err := c.Open(cookie.Value)
	if err != nil {
		return "", false
	}
	return id, true
}
