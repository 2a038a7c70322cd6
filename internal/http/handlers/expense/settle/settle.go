// Package settle реализует погашение одолженной суммы. Операция
// применима только к активным расходам категории Lent.
package settle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/services/expense"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики погашения расхода.
type Service interface {
	Settle(ctx context.Context, ownerID, id int64) error
}

// Flasher описывает отложенные одноразовые сообщения сессии.
type Flasher interface {
	Flash(ctx context.Context, sid, level, message string) error
}

// Handler управляет HTTP-запросами на погашение.
type Handler struct {
	log     *slog.Logger
	service Service
	flasher Flasher
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, flasher Flasher) *Handler {
	return &Handler{log: log, service: service, flasher: flasher}
}

// ServeHTTP помечает расход категории Lent как погашенный.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.settle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, _ := middlewarectx.Identity(r.Context())
	sid := middlewarectx.SessionID(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.flashAndHome(w, r, sid, sessions.FlashDanger, "Expense not found")
		return
	}

	if err := h.service.Settle(r.Context(), identity.UserID, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Expense not found")
		case errors.Is(err, expense.ErrForbidden):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Unauthorized access")
		case errors.Is(err, expense.ErrCannotSettle):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Only active Lent expenses can be settled")
		default:
			log.Error("failed to settle expense", sl.Err(err))
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "internal error, please try again")
		}
		return
	}

	log.Info("lent expense settled", slog.Int64("expense_id", id), slog.Int64("user_id", identity.UserID))
	h.flashAndHome(w, r, sid, sessions.FlashSuccess, "Lent amount settled successfully")
}

func (h *Handler) flashAndHome(w http.ResponseWriter, r *http.Request, sid, level, msg string) {
	if err := h.flasher.Flash(r.Context(), sid, level, msg); err != nil {
		h.log.Error("failed to flash message", sl.Err(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
