// Package panel реализует панель администратора: просмотр всех
// пользователей и всех расходов без права изменения.
package panel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// Repository описывает доступ администратора к данным приложения.
type Repository interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListAllExpenses(ctx context.Context) ([]*models.Expense, error)
	CountUsers(ctx context.Context) (int, error)
	CountExpenses(ctx context.Context) (int, error)
}

// Handler управляет HTTP-запросами панели администратора.
type Handler struct {
	log    *slog.Logger
	repo   Repository
	render *web.Renderer
}

// New создает новый Handler.
func New(log *slog.Logger, repo Repository, render *web.Renderer) *Handler {
	return &Handler{log: log, repo: repo, render: render}
}

type pageData struct {
	Users        []*models.User
	Expenses     []*models.Expense
	UserCount    int
	ExpenseCount int
}

// ServeHTTP отрисовывает панель администратора.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.panel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, _ := middlewarectx.Identity(r.Context())

	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	expenses, err := h.repo.ListAllExpenses(r.Context())
	if err != nil {
		log.Error("failed to list expenses", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	userCount, err := h.repo.CountUsers(r.Context())
	if err != nil {
		log.Error("failed to count users", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	expenseCount, err := h.repo.CountExpenses(r.Context())
	if err != nil {
		log.Error("failed to count expenses", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.render.Render(w, "admin.html", web.PageData{
		Title:    "Admin",
		Identity: &identity,
		Data: pageData{
			Users:        users,
			Expenses:     expenses,
			UserCount:    userCount,
			ExpenseCount: expenseCount,
		},
	}); err != nil {
		log.Error("failed to render admin panel", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
