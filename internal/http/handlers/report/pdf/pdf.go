// Package pdf реализует выгрузку PDF-отчета по активным расходам
// текущего пользователя.
package pdf

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/report"
)

// Service описывает выборку активных расходов пользователя.
type Service interface {
	List(ctx context.Context, ownerID int64, monthStr string) ([]*models.Expense, int64, *month.Filter, error)
}

// Handler управляет HTTP-запросами на выгрузку отчета.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP формирует PDF по всем активным расходам и отдает его
// вложением с фиксированным именем файла.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.pdf"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, _ := middlewarectx.Identity(r.Context())

	expenses, _, _, err := h.service.List(r.Context(), identity.UserID, "")
	if err != nil {
		log.Error("failed to list expenses", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	doc, err := report.Generate(identity.Email, time.Now(), expenses)
	if err != nil {
		log.Error("failed to generate pdf", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	log.Info("pdf report generated",
		slog.Int64("user_id", identity.UserID),
		slog.Int("expenses", len(expenses)),
		slog.Int("bytes", len(doc)))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	_, _ = w.Write(doc)
}
