// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек приложения.
type Config struct {
	Env             string `yaml:"env" env-default:"local"`
	LocalesDir      string `yaml:"locales_dir"`
	HTTPServer      `yaml:"http_server"`
	Backend         `yaml:"backend"`
	RedisConnection `yaml:"redis_connection"`
	Session         `yaml:"session"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Backend структура для настройки клиента TAXA API.
type Backend struct {
	BaseURL        string        `yaml:"base_url" env-default:"http://localhost:8001"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Session структура для настройки серверной сессии.
// CookieKey — hex-строка из 64 символов (32 байта) для запечатывания cookie.
type Session struct {
	CookieKey   string        `yaml:"cookie_key"`
	TTL         time.Duration `yaml:"ttl" env-default:"24h"`
	RememberTTL time.Duration `yaml:"remember_ttl" env-default:"720h"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"LocalesDir: %s\n"+
			"Backend:\n"+
			"  BaseURL: %s\n"+
			"  RequestTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Session:\n"+
			"  TTL: %s\n"+
			"  RememberTTL: %s\n",
		c.Env,
		c.LocalesDir,
		c.BaseURL,
		c.RequestTimeout,
		c.AddressRedis,
		c.User,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.TimeoutRedis,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TTL,
		c.RememberTTL,
	)
}
