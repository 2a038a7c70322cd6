// Package register реализует HTTP-обработчики страницы регистрации.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/http/response"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/services/auth"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, email, password string) (int64, error)
}

// Handler управляет HTTP-запросами страницы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	render   *web.Renderer
	validate *validator.Validate
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service, render *web.Renderer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		render:   render,
		validate: validator.New(),
	}
}

// ShowForm отрисовывает форму регистрации.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middlewarectx.Identity(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.renderForm(w, r, nil)
}

// ServeHTTP обрабатывает отправку формы регистрации. Успех
// перенаправляет на страницу входа.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.renderDanger(w, r, "invalid form data")
		return
	}

	form := models.CredentialsForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validate.Struct(form); err != nil {
		log.Error("validation failed", sl.Err(err))
		h.renderDanger(w, r, response.ValidationMessage(err))
		return
	}

	id, err := h.service.Register(r.Context(), form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			h.renderDanger(w, r, "Email already registered")
		case errors.Is(err, auth.ErrEmailReserved):
			h.renderDanger(w, r, "This email cannot be used")
		default:
			log.Error("failed to register user", sl.Err(err))
			h.renderDanger(w, r, "internal error, please try again")
		}
		return
	}

	log.Info("user registered", slog.Int64("user_id", id))
	http.Redirect(w, r, "/login?registered=1", http.StatusFound)
}

func (h *Handler) renderDanger(w http.ResponseWriter, r *http.Request, msg string) {
	h.renderForm(w, r, []sessions.Flash{{Level: sessions.FlashDanger, Message: msg}})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, flashes []sessions.Flash) {
	if err := h.render.Render(w, "register.html", web.PageData{
		Title:   "Register",
		Flashes: flashes,
	}); err != nil {
		h.log.Error("failed to render register page", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
