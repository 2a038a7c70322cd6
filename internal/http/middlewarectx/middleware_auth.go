// Package middlewarectx содержит HTTP middleware аутентификации и две
// охраны маршрутов: для любой аутентифицированной идентичности и для
// администратора.
//
// SessionMiddleware разрешает сессию из cookie (подписанный токен ->
// серверная запись в redis) и кладет идентичность в контекст запроса.
// Охраны только читают контекст и решают, пускать ли дальше.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// IdentityKey — ключ идентичности текущей сессии в контексте.
	IdentityKey Key = "identity"
	// SessionIDKey — ключ идентификатора сессии в контексте.
	SessionIDKey Key = "session_id"
)

// Resolver описывает разрешение сессии запроса в идентичность.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*models.Identity, string, error)
}

// Flasher описывает отложенные одноразовые сообщения сессии.
type Flasher interface {
	Flash(ctx context.Context, sid, level, message string) error
}

// Identity извлекает идентичность текущего запроса из контекста.
func Identity(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok
}

// SessionID извлекает идентификатор сессии текущего запроса из контекста.
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(SessionIDKey).(string)
	return sid
}

// SessionMiddleware разрешает сессию и кладет идентичность в контекст.
// Отсутствие или невалидность сессии не прерывает запрос: решение
// принимают охраны маршрутов.
func SessionMiddleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"

			identity, sid, err := resolver.Resolve(r.Context(), r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			log.Debug("session resolved",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("role", identity.Role))

			ctx := context.WithValue(r.Context(), IdentityKey, *identity)
			ctx = context.WithValue(ctx, SessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser пускает дальше любую аутентифицированную идентичность,
// остальных перенаправляет на страницу входа.
func RequireUser(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := Identity(r.Context()); !ok {
				log.Info("unauthenticated request, redirecting to login",
					slog.String("path", r.URL.Path))
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin пускает дальше только администратора. Аутентифицированный
// не-администратор перенаправляется на главную с предупреждением,
// неаутентифицированный — на страницу входа.
func RequireAdmin(flasher Flasher, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := Identity(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if !identity.IsAdmin() {
				log.Warn("non-admin tried to access admin route",
					slog.Int64("user_id", identity.UserID),
					slog.String("path", r.URL.Path))
				if err := flasher.Flash(r.Context(), SessionID(r.Context()),
					sessions.FlashDanger, "Admin access required"); err != nil {
					log.Error("failed to flash warning", sl.Err(err))
				}
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
