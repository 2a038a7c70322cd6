package middlewarectx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
)

// MockResolver реализует интерфейс middlewarectx.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, r *http.Request) (*models.Identity, string, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*models.Identity), args.String(1), args.Error(2)
}

// MockFlasher реализует интерфейс middlewarectx.Flasher
type MockFlasher struct {
	mock.Mock
}

func (m *MockFlasher) Flash(ctx context.Context, sid, level, message string) error {
	args := m.Called(ctx, sid, level, message)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionMiddleware(t *testing.T) {
	t.Run("идентичность попадает в контекст", func(t *testing.T) {
		resolver := new(MockResolver)
		identity := &models.Identity{UserID: 7, Email: "user@example.com", Role: models.RoleUser}
		resolver.On("Resolve", mock.Anything, mock.Anything).Return(identity, "sid-7", nil)

		var gotIdentity models.Identity
		var gotOK bool
		var gotSID string
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			gotIdentity, gotOK = Identity(r.Context())
			gotSID = SessionID(r.Context())
		})

		w := httptest.NewRecorder()
		SessionMiddleware(resolver, discardLogger())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, gotOK)
		assert.Equal(t, *identity, gotIdentity)
		assert.Equal(t, "sid-7", gotSID)
	})

	t.Run("без сессии запрос проходит дальше без идентичности", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, "", errors.New("no session cookie"))

		called := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			_, ok := Identity(r.Context())
			assert.False(t, ok)
		})

		w := httptest.NewRecorder()
		SessionMiddleware(resolver, discardLogger())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, called)
	})
}

func TestRequireUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("аутентифицированный проходит", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), IdentityKey, models.Identity{UserID: 1, Role: models.RoleUser})

		w := httptest.NewRecorder()
		RequireUser(discardLogger())(next).ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("аноним перенаправляется на вход", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireUser(discardLogger())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("администратор проходит", func(t *testing.T) {
		flasher := new(MockFlasher)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		ctx := context.WithValue(req.Context(), IdentityKey, models.Identity{UserID: 0, Role: models.RoleAdmin})

		w := httptest.NewRecorder()
		RequireAdmin(flasher, discardLogger())(next).ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("обычный пользователь получает отказ с предупреждением", func(t *testing.T) {
		flasher := new(MockFlasher)
		flasher.On("Flash", mock.Anything, "sid-1", sessions.FlashDanger, mock.AnythingOfType("string")).Return(nil)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		ctx := context.WithValue(req.Context(), IdentityKey, models.Identity{UserID: 1, Role: models.RoleUser})
		ctx = context.WithValue(ctx, SessionIDKey, "sid-1")

		w := httptest.NewRecorder()
		RequireAdmin(flasher, discardLogger())(next).ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		flasher.AssertExpectations(t)
	})

	t.Run("аноним перенаправляется на вход", func(t *testing.T) {
		flasher := new(MockFlasher)

		w := httptest.NewRecorder()
		RequireAdmin(flasher, discardLogger())(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}
