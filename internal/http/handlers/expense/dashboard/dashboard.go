// Package dashboard реализует главную страницу: список активных расходов
// с фильтром по месяцу и форму добавления нового расхода.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/http/response"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// Service описывает интерфейс бизнес-логики расходов для главной страницы.
type Service interface {
	List(ctx context.Context, ownerID int64, monthStr string) ([]*models.Expense, int64, *month.Filter, error)
	Create(ctx context.Context, ownerID int64, form models.ExpenseForm) (int64, error)
}

// Flasher описывает работу с одноразовыми сообщениями сессии.
type Flasher interface {
	Flash(ctx context.Context, sid, level, message string) error
	Flashes(ctx context.Context, sid string) []sessions.Flash
}

// Handler управляет HTTP-запросами главной страницы.
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
	Expenses   []*models.Expense
	TotalCents int64
	Month      string
	Categories []string
	Today      string
}

// Show отрисовывает список активных расходов текущего пользователя.
// Администратор перенаправляется в панель администратора.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.dashboard"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, _ := middlewarectx.Identity(r.Context())
	if identity.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}

	sid := middlewarectx.SessionID(r.Context())
	monthStr := r.URL.Query().Get("month")
	expenses, total, filter, err := h.service.List(r.Context(), identity.UserID, monthStr)
	if err != nil {
		if errors.Is(err, month.ErrBadFilter) {
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Invalid month filter")
			return
		}
		log.Error("failed to list expenses", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Expenses:   expenses,
		TotalCents: total,
		Categories: models.Categories,
		Today:      time.Now().Format("2006-01-02"),
	}
	if filter != nil {
		data.Month = filter.String()
	}

	if err := h.render.Render(w, "index.html", web.PageData{
		Title:    "Dashboard",
		Identity: &identity,
		Flashes:  h.flasher.Flashes(r.Context(), sid),
		Data:     data,
	}); err != nil {
		log.Error("failed to render dashboard", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ServeHTTP обрабатывает форму добавления расхода.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.expense.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	identity, _ := middlewarectx.Identity(r.Context())
	if identity.IsAdmin() {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	sid := middlewarectx.SessionID(r.Context())

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

	id, err := h.service.Create(r.Context(), identity.UserID, form)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidAmount):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Invalid amount")
		case errors.Is(err, models.ErrInvalidDate):
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "Invalid date")
		default:
			log.Error("failed to create expense", sl.Err(err))
			h.flashAndHome(w, r, sid, sessions.FlashDanger, "internal error, please try again")
		}
		return
	}

	log.Info("expense created", slog.Int64("expense_id", id), slog.Int64("user_id", identity.UserID))
	h.flashAndHome(w, r, sid, sessions.FlashSuccess, "Expense added successfully")
}

func (h *Handler) flashAndHome(w http.ResponseWriter, r *http.Request, sid, level, msg string) {
	if err := h.flasher.Flash(r.Context(), sid, level, msg); err != nil {
		h.log.Error("failed to flash message", sl.Err(err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
