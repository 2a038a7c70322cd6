// Package expensetracker собирает приложение: хранилище, миграции,
// redis, сессии, сервисы, HTTP-сервер.
package expensetracker

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/expense-tracker/internal/aiclient"
	"github.com/magabrotheeeer/expense-tracker/internal/cache"
	"github.com/magabrotheeeer/expense-tracker/internal/config"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/token"
	"github.com/magabrotheeeer/expense-tracker/internal/migrations"
	authservice "github.com/magabrotheeeer/expense-tracker/internal/services/auth"
	expenseservice "github.com/magabrotheeeer/expense-tracker/internal/services/expense"
	insightsservice "github.com/magabrotheeeer/expense-tracker/internal/services/insights"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/storage/repository"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New инициализирует все зависимости приложения и возвращает готовый App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	maker := token.NewMaker(cfg.Session.SecretKey, cfg.Session.TTL)
	sessionManager := sessions.New(cacheRedis, maker, cfg.Session.TTL, cfg.Session.SecureCookie)

	authService := authservice.New(db, cfg.Admin)
	expenseService := expenseservice.New(db, logger)
	insightsService := insightsservice.New(db, aiclient.New(cfg.AI), logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:     authService,
		Expense:  expenseService,
		Insights: insightsService,
		Sessions: sessionManager,
		Storage:  db,
		Renderer: renderer,
	})

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
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
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
		a.db.DB.Close()
		return err
	}
}
