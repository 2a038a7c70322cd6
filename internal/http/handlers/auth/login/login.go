// Package login реализует HTTP-обработчики страницы входа: отрисовку
// формы и проверку учетных данных с открытием сессии.
package login

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

// Service описывает интерфейс бизнес-логики проверки учетных данных.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.Identity, error)
}

// SessionStarter описывает открытие новой сессии для идентичности.
type SessionStarter interface {
	Start(ctx context.Context, w http.ResponseWriter, identity models.Identity) (string, error)
}

// Handler управляет HTTP-запросами страницы входа.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions SessionStarter
	render   *web.Renderer
	validate *validator.Validate
}

// New создает новый Handler с переданными зависимостями.
func New(log *slog.Logger, service Service, sessions SessionStarter, render *web.Renderer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
		render:   render,
		validate: validator.New(),
	}
}

// ShowForm отрисовывает форму входа. Аутентифицированные пользователи
// перенаправляются на главную.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middlewarectx.Identity(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	var flashes []sessions.Flash
	if r.URL.Query().Get("registered") == "1" {
		flashes = append(flashes, sessions.Flash{
			Level:   sessions.FlashSuccess,
			Message: "Registration successful, please log in",
		})
	}
	h.renderForm(w, r, flashes)
}

// ServeHTTP обрабатывает отправку формы входа.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
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

	identity, err := h.service.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Info("invalid credentials", slog.String("email", form.Email))
			h.renderDanger(w, r, "Invalid email or password")
			return
		}
		log.Error("failed to login", sl.Err(err))
		h.renderDanger(w, r, "internal error, please try again")
		return
	}

	if _, err := h.sessions.Start(r.Context(), w, *identity); err != nil {
		log.Error("failed to start session", sl.Err(err))
		h.renderDanger(w, r, "internal error, please try again")
		return
	}

	log.Info("user logged in", slog.Int64("user_id", identity.UserID), slog.String("role", identity.Role))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) renderDanger(w http.ResponseWriter, r *http.Request, msg string) {
	h.renderForm(w, r, []sessions.Flash{{Level: sessions.FlashDanger, Message: msg}})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, flashes []sessions.Flash) {
	if err := h.render.Render(w, "login.html", web.PageData{
		Title:   "Login",
		Flashes: flashes,
	}); err != nil {
		h.log.Error("failed to render login page", sl.Err(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
