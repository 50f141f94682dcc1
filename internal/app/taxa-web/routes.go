// Package taxaweb собирает приложение: маршруты, middleware и зависимости.
package taxaweb

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taxa-sk/taxa-web/internal/backendapi"
	"github.com/taxa-sk/taxa-web/internal/config"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/auth/login"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/auth/logout"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/auth/register"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/chat"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/dashboard/home"
	declarationwizard "github.com/taxa-sk/taxa-web/internal/http/handlers/declaration/wizard"
	documentslist "github.com/taxa-sk/taxa-web/internal/http/handlers/documents/list"
	documentsupload "github.com/taxa-sk/taxa-web/internal/http/handlers/documents/upload"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/ico"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/language"
	onboardingcomplete "github.com/taxa-sk/taxa-web/internal/http/handlers/onboarding/complete"
	onboardingdocuments "github.com/taxa-sk/taxa-web/internal/http/handlers/onboarding/documents"
	onboardingprofile "github.com/taxa-sk/taxa-web/internal/http/handlers/onboarding/profile"
	onboardingshow "github.com/taxa-sk/taxa-web/internal/http/handlers/onboarding/show"
	onboardingskip "github.com/taxa-sk/taxa-web/internal/http/handlers/onboarding/skip"
	"github.com/taxa-sk/taxa-web/internal/http/handlers/pages"
	settingsexport "github.com/taxa-sk/taxa-web/internal/http/handlers/settings/export"
	settingsremove "github.com/taxa-sk/taxa-web/internal/http/handlers/settings/remove"
	settingsshow "github.com/taxa-sk/taxa-web/internal/http/handlers/settings/show"
	"github.com/taxa-sk/taxa-web/internal/http/middlewarectx"
	"github.com/taxa-sk/taxa-web/internal/i18n"
	"github.com/taxa-sk/taxa-web/internal/onboarding"
	"github.com/taxa-sk/taxa-web/internal/session"
	"github.com/taxa-sk/taxa-web/internal/web"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	render *web.Renderer,
	translator *i18n.Translator,
	backend *backendapi.Client,
	machine *onboarding.Machine,
	store session.Store,
	codec *session.Codec,
	cfg *config.Config,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.LanguageMiddleware,
	)

	pagesHandler := pages.New(logger, render)

	// Открытые страницы
	r.Get("/", pagesHandler.Home)
	r.Get("/terms", pagesHandler.Static("pages.terms"))
	r.Get("/privacy", pagesHandler.Static("pages.privacy"))
	r.Get("/cookies", pagesHandler.Static("pages.cookies"))
	r.Get("/gdpr", pagesHandler.Static("pages.gdpr"))
	r.Post("/language", language.New(logger).ServeHTTP)

	loginHandler := login.New(logger, render, backend, store, codec, cfg.Session.TTL, cfg.Session.RememberTTL)
	registerHandler := register.New(logger, render, backend, store, codec, cfg.Session.TTL)
	r.Get("/login", loginHandler.ServeHTTP)
	r.Get("/register", registerHandler.ServeHTTP)
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/login", loginHandler.ServeHTTP)
		r.Post("/register", registerHandler.ServeHTTP)
	})

	// Группа с серверной сессией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.SessionMiddleware(store, codec, logger))

		r.Post("/logout", logout.New(logger, store, codec).ServeHTTP)

		r.Get("/onboarding", onboardingshow.New(logger, render).ServeHTTP)
		r.Post("/onboarding/profile", onboardingprofile.New(logger, render, machine, store).ServeHTTP)
		r.Post("/onboarding/documents", onboardingdocuments.New(logger, render, machine, store).ServeHTTP)
		r.Post("/onboarding/skip", onboardingskip.New(logger, render, machine, store).ServeHTTP)
		r.Post("/onboarding/complete", onboardingcomplete.New(logger, render, machine, store).ServeHTTP)

		r.Get("/api/ico/{ico}", ico.New(logger, backend).ServeHTTP)

		// Экраны, доступные только после онбординга
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OnboardingGateMiddleware(logger))

			r.Get("/dashboard", home.New(logger, render, backend).ServeHTTP)
			r.Get("/documents", documentslist.New(logger, render, backend).ServeHTTP)

			uploadHandler := documentsupload.New(logger, render, backend)
			r.Get("/upload", uploadHandler.ServeHTTP)
			r.Post("/upload", uploadHandler.ServeHTTP)

			chatHandler := chat.New(logger, render, translator, backend, store)
			r.Get("/chat", chatHandler.ServeHTTP)
			r.Post("/chat", chatHandler.ServeHTTP)

			wizardHandler := declarationwizard.New(logger, render)
			r.Get("/declaration", wizardHandler.ServeHTTP)
			r.Post("/declaration", wizardHandler.ServeHTTP)

			r.Get("/settings", settingsshow.New(logger, render).ServeHTTP)
			r.Get("/settings/export", settingsexport.New(logger, backend).ServeHTTP)
			r.Post("/settings/delete", settingsremove.New(logger, render, backend, store, codec).ServeHTTP)
		})
	})

	r.Handle("/static/*", web.StaticHandler())
	r.Handle("/metrics", promhttp.Handler())
}
