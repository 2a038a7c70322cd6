// Package aiinsights реализует страницу текстовых советов по расходам,
// полученных от внешнего сервиса генерации.
package aiinsights

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

// Service описывает интерфейс получения советов.
type Service interface {
	Insights(ctx context.Context, ownerID int64) ([]insights.Section, error)
}

// Flasher описывает отложенные одноразовые сообщения сессии.
type Flasher interface {
	Flash(ctx context.Context, sid, level, message string) error
}

// Handler управляет HTTP-запросами страницы советов.
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
	Sections []insights.Section
}

// ServeHTTP запрашивает советы и отрисовывает их по секциям.
// Ошибки внешнего сервиса не роняют страницу, а возвращают на главную
// с сообщением.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ai.insights"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, _ := middlewarectx.Identity(r.Context())
	sid := middlewarectx.SessionID(r.Context())

	sections, err := h.service.Insights(r.Context(), identity.UserID)
	if err != nil {
		switch {
		case errors.Is(err, insights.ErrNoData):
			h.flashAndHome(w, r, sid, sessions.FlashInfo, "Add some expenses first to get insights")
		case errors.Is(err, aiclient.ErrNoAPIKey):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "AI features are not configured")
		default:
			log.Error("failed to get insights", sl.Err(err))
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "AI service is unavailable, please try again later")
		}
		return
	}

	log.Info("insights rendered", slog.Int64("user_id", identity.UserID), slog.Int("sections", len(sections)))
	if err := h.render.Render(w, "insights.html", web.PageData{
		Title:    "AI Insights",
		Identity: &identity,
		Data:     pageData{Sections: sections},
	}); err != nil {
		log.Error("failed to render insights page", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) flashAndHome(w http.ResponseWriter, r *http.Request, sid, level, msg string) {
	if err := h.flasher.Flash(r.Context(), sid, level, msg); err != nil {
		h.log.Error("failed to flash message", sl.Err(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
