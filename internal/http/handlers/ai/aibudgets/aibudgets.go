// Package aibudgets реализует страницу предложения бюджета,
// построенного внешним сервисом генерации из сводки расходов.
package aibudgets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/expense-tracker/internal/aiclient"
	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/services/insights"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// Service описывает интерфейс получения предложения бюджета.
type Service interface {
	Budget(ctx context.Context, ownerID int64) (*insights.BudgetPlan, error)
}

// Flasher описывает отложенные одноразовые сообщения сессии.
type Flasher interface {
	Flash(ctx context.Context, sid, level, message string) error
}

// Handler управляет HTTP-запросами страницы бюджета.
type Handler struct {
	log     *slog.Logger
	service Service
	flasher Flasher
	render  *web.Renderer
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, flasher Flasher, render *web.Renderer) *Handler {
	return &Handler{log: log, service: service, flasher: flasher, render: render}
}

type pageData struct {
	Plan *insights.BudgetPlan
}

// ServeHTTP запрашивает предложение бюджета и отрисовывает его таблицей.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.budgets"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, _ := middlewarectx.Identity(r.Context())
	sid := middlewarectx.SessionID(r.Context())

	plan, err := h.service.Budget(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, insights.ErrNoData):
			h.flashAndHome(w, r, sid, sessions.FlashInfo, "Add some expenses first to get a budget suggestion")
		case errors.Is(err, aiclient.ErrNoAPIKey):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "AI features are not configured")
		case errors.Is(err, insights.ErrBadAIResponse):
			log.Error("unparsable budget response", sl.Err(err))
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "AI returned an unexpected answer, please try again")
		default:
			log.Error("failed to get budget", sl.Err(err))
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "AI service is unavailable, please try again later")
		}
		return
	}

	log.Info("budget rendered", slog.Int64("user_id", identity.UserID), slog.Int("categories", len(plan.Categories)))
	if err := h.render.Render(w, "budgets.html", web.PageData{
		Title:    "AI Budget",
		Identity: &identity,
		Data:     pageData{Plan: plan},
	}); err != nil {
		log.Error("failed to render budget page", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) flashAndHome(w http.ResponseWriter, r *http.Request, sid, level, msg string) {
	if err := h.flasher.Flash(r.Context(), sid, level, msg); err != nil {
		h.log.Error("failed to flash message", sl.Err(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
