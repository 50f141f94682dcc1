package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taxa-sk/taxa-web/internal/config"
)

const keyPrefix = "session:"

// RedisStore хранит сессии в redis одним JSON-значением на ключ.
// Одноключевая запись закрывает окно несогласованности между токеном
// и профилем: они либо есть оба, либо нет ни одного.
type RedisStore struct {
	db          *redis.Client
	ttl         time.Duration
	rememberTTL time.Duration
}

// NewRedisStore подключается к redis и проверяет соединение.
func NewRedisStore(ctx context.Context, cfg config.RedisConnection, ttl, rememberTTL time.Duration) (*RedisStore, error) {
	const op = "session.NewRedisStore"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RedisStore{db: db, ttl: ttl, rememberTTL: rememberTTL}, nil
}

// Save записывает сессию целиком. Срок жизни зависит от remember-me:
// обычная сессия живёт сутки, запомненная — тридцать дней.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	const op = "session.RedisStore.Save"
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ttl := s.ttl
	if sess.Remember {
		ttl = s.rememberTTL
	}
	if err := s.db.Set(ctx, keyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load читает сессию. Отсутствующий ключ и неразборчивая запись — это
// «absent», ошибкой считается только отказ самого redis.
func (s *RedisStore) Load(ctx context.Context, id string) (*Session, bool, error) {
	const op = "session.RedisStore.Load"
	val, err := s.db.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, false, nil
	}
	return &sess, true, nil
}

// Clear удаляет сессию. Удаление несуществующего ключа не ошибка.
func (s *RedisStore) Clear(ctx context.Context, id string) error {
	const op = "session.RedisStore.Clear"
	if err := s.db.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с redis.
func (s *RedisStore) Close() error {
	return s.db.Close()
}
