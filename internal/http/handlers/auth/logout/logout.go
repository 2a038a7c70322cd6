// Package logout реализует завершение сессии пользователя.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
)

// SessionDestroyer описывает уничтожение текущей сессии.
type SessionDestroyer interface {
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request)
}

// Handler управляет HTTP-запросами на выход из приложения.
type Handler struct {
	log      *slog.Logger
	sessions SessionDestroyer
}

// New создает новый Handler.
func New(log *slog.Logger, sessions SessionDestroyer) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP удаляет серверную запись сессии, очищает cookie и
// перенаправляет на страницу входа. Операция идемпотентна.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	h.sessions.Destroy(r.Context(), w, r)
	h.log.Info("session destroyed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	http.Redirect(w, r, "/login", http.StatusFound)
}
