// Package summary реализует JSON-эндпоинт агрегированной сводки
// расходов текущего пользователя.
package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/http/response"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/services/insights"
)

// Service описывает построение сводки расходов.
type Service interface {
	Summary(ctx context.Context, ownerID int64) (*insights.Summary, error)
}

// Handler управляет HTTP-запросами сводки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP возвращает агрегаты активных расходов в JSON-конверте.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.api.summary"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	result, err := h.service.Summary(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, insights.ErrNoData) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("no active expenses"))
			return
		}
		log.Error("failed to build summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build summary"))
		return
	}

	log.Info("summary built", slog.Int64("user_id", identity.UserID), slog.Int("count", result.Count))
	render.JSON(w, r, response.StatusOKWithData(result))
}
