// Package edit реализует страницу редактирования расхода.
package edit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/http/response"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/services/expense"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/storage/repository"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// Service описывает интерфейс бизнес-логики редактирования расхода.
type Service interface {
	GetOwned(ctx context.Context, ownerID, id int64) (*models.Expense, error)
	Update(ctx context.Context, ownerID, id int64, form models.ExpenseForm) error
}

// Flasher описывает работу с одноразовыми сообщениями сессии.
type Flasher interface {
	Flash(ctx context.Context, sid, level, message string) error
	Flashes(ctx context.Context, sid string) []sessions.Flash
}

// Handler управляет HTTP-запросами страницы редактирования.
type Handler struct {
	log      *slog.Logger
	service  Service
	flasher  Flasher
	render   *web.Renderer
	validate *validator.Validate
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service, flasher Flasher, render *web.Renderer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		flasher:  flasher,
		render:   render,
		validate: validator.New(),
	}
}

type pageData struct {
	Expense    *models.Expense
	Categories []string
}

// Show отрисовывает форму редактирования расхода текущего пользователя.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.edit.show"
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

	exp, err := h.service.GetOwned(r.Context(), identity.UserID, id)
	if err != nil {
		h.handleLookupErr(w, r, log, sid, err)
		return
	}

	if err := h.render.Render(w, "edit.html", web.PageData{
		Title:    "Edit Expense",
		Identity: &identity,
		Flashes:  h.flasher.Flashes(r.Context(), sid),
		Data:     pageData{Expense: exp, Categories: models.Categories},
	}); err != nil {
		log.Error("failed to render edit page", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ServeHTTP обрабатывает отправку формы редактирования.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.edit"
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

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.flashAndHome(w, r, sid, sessions.FlashDanger, "invalid form data")
		return
	}

	form := models.ExpenseForm{
		Amount:   r.PostFormValue("amount"),
		Category: r.PostFormValue("category"),
		Note:     r.PostFormValue("note"),
		Date:     r.PostFormValue("date"),
	}
	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		h.flashAndHome(w, r, sid, sessions.FlashDanger, response.ValidationMessage(err))
		return
	}

	if err := h.service.Update(r.Context(), identity.UserID, id, form); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidAmount):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Invalid amount")
		case errors.Is(err, models.ErrInvalidDate):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Invalid date")
		default:
			h.handleLookupErr(w, r, log, sid, err)
		}
		return
	}

	log.Info("expense updated", slog.Int64("expense_id", id), slog.Int64("user_id", identity.UserID))
	h.flashAndHome(w, r, sid, sessions.FlashInfo, "Expense updated successfully")
}

func (h *Handler) handleLookupErr(w http.ResponseWriter, r *http.Request, log *slog.Logger, sid string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.flashAndHome(w, r, sid, sessions.FlashDanger, "Expense not found")
	case errors.Is(err, expense.ErrForbidden):
		h.flashAndHome(w, r, sid, sessions.FlashDanger, "Unauthorized access")
	default:
		log.Error("failed to load expense", sl.Err(err))
		h.flashAndHome(w, r, sid, sessions.FlashDanger, "internal error, please try again")
	}
}

func (h *Handler) flashAndHome(w http.ResponseWriter, r *http.Request, sid, level, msg string) {
	if err := h.flasher.Flash(r.Context(), sid, level, msg); err != nil {
		h.log.Error("failed to flash message", sl.Err(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
