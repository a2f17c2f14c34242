// Package server assembles the Fiber application: template engine, session
// store, middleware chain and routes.
package server

import (
	"context"
	"net/http"

	"github.com/Ogyrecheg/yatube/internal/config"
	"github.com/Ogyrecheg/yatube/internal/handlers"
	"github.com/Ogyrecheg/yatube/internal/middleware"
	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/Ogyrecheg/yatube/web"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Options carries optional collaborators. Zero values select defaults.
type Options struct {
	Security *security.SecurityConfig // DefaultSecurityConfig when nil
	Alerter  security.Alerter         // log alerts when nil
	Views    fiber.Views              // NewViews(cfg.Templates.Dir, ...) when nil
}

// Server is the configured HTTP application.
type Server struct {
	App    *fiber.App
	cfg    *config.Config
	logger *security.Logger
	guard  *middleware.SecurityMiddleware
}

// New creates the application and registers all routes.
func New(cfg *config.Config, logger *security.Logger, opts Options) *Server {
	secCfg := opts.Security
	if secCfg == nil {
		secCfg = security.DefaultSecurityConfig()
	}
	views := opts.Views
	if views == nil {
		views = NewViews(cfg.Templates.Dir, !cfg.IsProduction())
	}

	app := fiber.New(fiber.Config{
		AppName:           "yatube",
		Views:             views,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
		UnescapePath:      true, // usernames may be non-ASCII
		ErrorHandler:      handlers.ErrorHandler(logger),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	})

	store := session.New(session.Config{
		Expiration:     cfg.Session.Expiration,
		KeyLookup:      "cookie:" + cfg.Session.CookieName,
		CookieSecure:   cfg.Session.Secure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookiePath:     "/",
	})

	guard := middleware.NewSecurityMiddleware(logger, secCfg, opts.Alerter)
	validator := security.NewValidationService(secCfg)

	s := &Server{App: app, cfg: cfg, logger: logger, guard: guard}

	app.Use(recover.New())
	app.Use(guard.RequestLogger())
	app.Use(guard.SecureHeaders(cfg.IsProduction()))
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))
	app.Use(middleware.LoadUser(store))
	app.Use(guard.SetCSRFToken(store))

	posts := handlers.NewPostHandler(logger, validator, guard.Monitor(), cfg.Pagination)
	auth := handlers.NewAuthHandler(store, guard, validator, logger, secCfg.BcryptCost)

	loginRequired := middleware.AuthRequired(store)
	csrf := guard.CSRFProtection(store)
	postLimit := guard.RateLimit(guard.PostLimiter(), "post")

	app.Get("/", posts.Index)
	app.Get("/group/:slug/", posts.GroupPosts)
	app.Get("/profile/:username/", posts.Profile)
	app.Get("/posts/:id/", posts.PostDetail)

	app.Get("/create/", loginRequired, posts.CreateForm)
	app.Post("/create/", loginRequired, csrf, postLimit, posts.Create)
	app.Get("/posts/:id/edit/", loginRequired, posts.EditForm)
	app.Post("/posts/:id/edit/", loginRequired, csrf, posts.Edit)

	users := app.Group("/auth")
	users.Get("/login/", auth.ShowLogin)
	users.Post("/login/", csrf, auth.Login)
	users.Get("/logout/", auth.Logout)
	users.Post("/logout/", csrf, auth.Logout)
	users.Get("/signup/", auth.ShowSignup)
	users.Post("/signup/", csrf, guard.RateLimit(guard.SignupLimiter(), "signup"), auth.Signup)

	return s
}

// Listen serves HTTP on cfg.Server.Addr until Shutdown is called.
func (s *Server) Listen() error {
	s.logger.Info("listening on " + s.cfg.Server.Addr)
	return s.App.Listen(s.cfg.Server.Addr)
}

// Shutdown stops accepting connections, waits for in-flight requests until
// ctx is done and stops the rate limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.guard.Stop()
	return s.App.ShutdownWithContext(ctx)
}

// Close releases background resources without touching the listener.
func (s *Server) Close() {
	s.guard.Stop()
}
