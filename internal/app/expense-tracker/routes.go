package expensetracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/admin/panel"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/ai/aibudgets"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/ai/aiinsights"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/api/summary"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/dashboard"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/edit"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/remove"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/expense/settle"
	"github.com/magabrotheeeer/expense-tracker/internal/http/handlers/health"
	reportpdf "github.com/magabrotheeeer/expense-tracker/internal/http/handlers/report/pdf"
	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/expense-tracker/internal/services/auth"
	expenseservice "github.com/magabrotheeeer/expense-tracker/internal/services/expense"
	insightsservice "github.com/magabrotheeeer/expense-tracker/internal/services/insights"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/storage/repository"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// Services собирает зависимости, нужные маршрутам.
type Services struct {
	Auth     *authservice.Service
	Expense  *expenseservice.Service
	Insights *insightsservice.Service
	Sessions *sessions.Manager
	Storage  *repository.Storage
	Renderer *web.Renderer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware(),
		middlewarectx.SessionMiddleware(s.Sessions, logger),
	)

	loginHandler := login.New(logger, s.Auth, s.Sessions, s.Renderer)
	registerHandler := register.New(logger, s.Auth, s.Renderer)
	dashboardHandler := dashboard.New(logger, s.Expense, s.Sessions, s.Renderer)
	editHandler := edit.New(logger, s.Expense, s.Sessions, s.Renderer)

	// Открытые конечные точки
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Get("/login", loginHandler.ShowForm)
		r.Post("/login", loginHandler.ServeHTTP)
		r.Get("/register", registerHandler.ShowForm)
		r.Post("/register", registerHandler.ServeHTTP)
	})
	r.Get("/logout", logout.New(logger, s.Sessions).ServeHTTP)

	// Группа с аутентификацией по сессии
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RequireUser(logger))
		r.Get("/", dashboardHandler.Show)
		r.Post("/", dashboardHandler.ServeHTTP)
		r.Get("/edit/{id}", editHandler.Show)
		r.Post("/edit/{id}", editHandler.ServeHTTP)
		r.Post("/delete/{id}", remove.New(logger, s.Expense, s.Sessions).ServeHTTP)
		r.Post("/settle/{id}", settle.New(logger, s.Expense, s.Sessions).ServeHTTP)
		r.Get("/pdf", reportpdf.New(logger, s.Expense).ServeHTTP)
		r.Get("/ai/insights", aiinsights.New(logger, s.Insights, s.Sessions, s.Renderer).ServeHTTP)
		r.Get("/ai/budgets", aibudgets.New(logger, s.Insights, s.Sessions, s.Renderer).ServeHTTP)
		r.Get("/api/v1/summary", summary.New(logger, s.Insights).ServeHTTP)
	})

	// Группа только для администратора
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RequireAdmin(s.Sessions, logger))
		r.Get("/admin", panel.New(logger, s.Storage, s.Renderer).ServeHTTP)
	})

	r.Get("/healthz", health.New(logger, s.Storage).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
}
