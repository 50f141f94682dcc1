package taxaweb

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/config"
	"github.com/taxa-sk/taxa-web/internal/i18n"
	"github.com/taxa-sk/taxa-web/internal/onboarding"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// App — собранное приложение с HTTP-сервером и хранилищем сессий.
type App struct {
	server *http.Server
	logger *slog.Logger
	store  *session.RedisStore
}

// New собирает приложение из конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	translator, err := i18n.New()
	if err != nil {
		return nil, err
	}
	if cfg.LocalesDir != "" {
		if err := translator.Watch(ctx, cfg.LocalesDir, logger); err != nil {
			return nil, err
		}
	}

	render, err := web.New(logger, translator)
	if err != nil {
		return nil, err
	}

	store, err := session.NewRedisStore(ctx, cfg.RedisConnection, cfg.Session.TTL, cfg.Session.RememberTTL)
	if err != nil {
		return nil, err
	}

	codec, err := session.NewCodec(cfg.Session.CookieKey)
	if err != nil {
		return nil, err
	}

	backend := backendapi.New(cfg.Backend.BaseURL, cfg.Backend.RequestTimeout)
	machine := onboarding.New(logger, backend)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, render, translator, backend, machine, store, codec, cfg)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		store:  store,
	}, nil
}

// Run запускает HTTP-сервер и корректно гасит его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.store.Close(); closeErr != nil {
			a.logger.Error("failed to close session store", slog.Any("err", closeErr))
		}
		return err
	}
}
