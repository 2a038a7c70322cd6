package register

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/expense-tracker/internal/services/auth"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, email, password string) (int64, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(int64), args.Error(1)
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	t.Run("успешная регистрация", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("Register", mock.Anything, "user@example.com", "secret123").Return(int64(7), nil)

		handler := New(logger, mockService, renderer)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{"email": {"user@example.com"}, "password": {"secret123"}}))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?registered=1", w.Header().Get("Location"))
		mockService.AssertExpectations(t)
	})

	t.Run("email уже занят", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("Register", mock.Anything, "user@example.com", "secret123").Return(int64(0), auth.ErrEmailTaken)

		handler := New(logger, mockService, renderer)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{"email": {"user@example.com"}, "password": {"secret123"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Email already registered")
	})

	t.Run("зарезервированный email", func(t *testing.T) {
		mockService := new(MockService)
		mockService.On("Register", mock.Anything, "admin@expense.local", "secret123").Return(int64(0), auth.ErrEmailReserved)

		handler := New(logger, mockService, renderer)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{"email": {"admin@expense.local"}, "password": {"secret123"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "This email cannot be used")
	})

	t.Run("короткий пароль не доходит до сервиса", func(t *testing.T) {
		mockService := new(MockService)

		handler := New(logger, mockService, renderer)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{"email": {"user@example.com"}, "password": {"123"}}))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "flash-danger")
		mockService.AssertNotCalled(t, "Register")
	})
}

func TestShowForm(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	handler := New(logger, new(MockService), renderer)

	w := httptest.NewRecorder()
	handler.ShowForm(w, httptest.NewRequest(http.MethodGet, "/register", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Register")
}
