package i18n

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/taxa-sk/taxa-web/internal/lib/sl"
)

// Watch следит за каталогом словарей и перечитывает их при изменении.
// Используется в dev-режиме, когда locales_dir задан в конфиге: правка
// JSON-файла подхватывается без перезапуска. События дебаунсятся, пачка
// сохранений редактора приводит к одной перезагрузке.
func (t *Translator) Watch(ctx context.Context, dir string, log *slog.Logger) error {
	const op = "i18n.Watch"

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return err
	}

	log.Info("locale watcher started", slog.String("op", op), slog.String("dir", dir))

	go func() {
		defer func() { _ = fsw.Close() }()

		var pending *time.Timer
		reload := make(chan struct{}, 1)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Ext(event.Name) != ".json" {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(100*time.Millisecond, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case <-reload:
				if err := t.ReloadDir(dir); err != nil {
					log.Error("failed to reload locales", slog.String("op", op), sl.Err(err))
					continue
				}
				log.Info("locales reloaded", slog.String("op", op))
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Error("locale watcher error", slog.String("op", op), sl.Err(err))
			}
		}
	}()

	return nil
}
