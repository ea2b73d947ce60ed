// Package app assembles the blog from its configuration: store, services,
// controllers and router. It is built once at startup and owns every
// long-lived resource.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"inkpost/app/controllers"
	"inkpost/app/metrics"
	"inkpost/app/repositories"
	"inkpost/app/repositories/postgres"
	"inkpost/app/routes"
	"inkpost/app/services"
	"inkpost/app/views"
	"inkpost/config"
)

// Application is the explicit application context handed to every handler.
type Application struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    repositories.Store
	Users    *services.UserService
	Sessions *services.SessionService
	Posts    *services.PostService
	Comments *services.CommentService

	handler http.Handler
}

// New opens the configured store and builds the application on top of it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	application, err := NewWithStore(cfg, logger, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return application, nil
}

// NewWithStore builds the application on an already opened store. The
// application takes ownership of store.
func NewWithStore(cfg config.Config, logger *slog.Logger, store repositories.Store) (*Application, error) {
	if cfg.Auth.SecretKey == "" {
		return nil, errors.New("SECRET_KEY must be set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Users:    services.NewUserService(store.Users(), cfg.Auth.BcryptCost, logger),
		Sessions: services.NewSessionService(store.Sessions(), store.Users(), cfg.Auth.SecretKey, cfg.Auth.SessionTTL, logger),
		Posts:    services.NewPostService(store.Posts(), logger),
		Comments: services.NewCommentService(store.Comments(), logger),
	}

	renderer, err := views.New()
	if err != nil {
		return nil, err
	}
	base := controllers.NewController(renderer, logger, cfg.Auth.CookieSecure)
	postController := controllers.NewPostController(base, a.Posts, a.Comments, a.Users)

	a.handler = routes.Setup(routes.Handlers{
		Base:     base,
		Posts:    postController,
		Comments: controllers.NewCommentController(postController),
		Auth:     controllers.NewAuthController(base, a.Users, a.Sessions),
		Pages:    controllers.NewPagesController(base, store),
		Actors:   a.Sessions,
		Logger:   logger,
	})
	metrics.ServiceHealth.Set(1)
	return a, nil
}

// OpenStore opens the backend named by cfg.Store.Driver. PostgreSQL
// migrations are applied before the pool is returned.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverBadger:
		store, err := repositories.OpenBadger(repositories.BadgerOptions{
			Path:     cfg.Store.BadgerPath,
			InMemory: cfg.Store.BadgerInMemory,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := postgres.Migrate(dsn); err != nil {
			return nil, err
		}
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Handler returns the routed HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Server returns an http.Server for the configured address and timeouts.
func (a *Application) Server() *http.Server {
	return &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      a.handler,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Close releases the store.
func (a *Application) Close() error {
	metrics.ServiceHealth.Set(0)
	return a.Store.Close()
}
