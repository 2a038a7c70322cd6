package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/expense-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
	"github.com/magabrotheeeer/expense-tracker/internal/web"
)

// MockService реализует интерфейс dashboard.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, ownerID int64, monthStr string) ([]*models.Expense, int64, *month.Filter, error) {
	args := m.Called(ctx, ownerID, monthStr)
	var entries []*models.Expense
	if args.Get(0) != nil {
		entries = args.Get(0).([]*models.Expense)
	}
	var filter *month.Filter
	if args.Get(2) != nil {
		filter = args.Get(2).(*month.Filter)
	}
	return entries, args.Get(1).(int64), filter, args.Error(3)
}

func (m *MockService) Create(ctx context.Context, ownerID int64, form models.ExpenseForm) (int64, error) {
	args := m.Called(ctx, ownerID, form)
	return args.Get(0).(int64), args.Error(1)
}

// MockFlasher реализует интерфейс dashboard.Flasher
type MockFlasher struct {
	mock.Mock
}

func (m *MockFlasher) Flash(ctx context.Context, sid, level, message string) error {
	args := m.Called(ctx, sid, level, message)
	return args.Error(0)
}

func (m *MockFlasher) Flashes(ctx context.Context, sid string) []sessions.Flash {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]sessions.Flash)
}

func authedRequest(req *http.Request, identity models.Identity) *http.Request {
	ctx := context.WithValue(req.Context(), middlewarectx.IdentityKey, identity)
	ctx = context.WithValue(ctx, middlewarectx.SessionIDKey, "sid-1")
	return req.WithContext(ctx)
}

var userIdentity = models.Identity{UserID: 1, Email: "user@example.com", Role: models.RoleUser}

func TestShow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	t.Run("список расходов с суммой", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)
		mockService.On("List", mock.Anything, int64(1), "").Return([]*models.Expense{
			{ID: 1, AmountCents: 1250, Category: "Food", Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), Status: models.StatusActive},
			{ID: 2, AmountCents: 5000, Category: models.CategoryLent, Date: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), Status: models.StatusActive},
		}, int64(6250), nil, nil)
		mockFlasher.On("Flashes", mock.Anything, "sid-1").Return([]sessions.Flash{
			{Level: sessions.FlashSuccess, Message: "Expense added successfully"},
		})

		handler := New(logger, mockService, mockFlasher, renderer)

		w := httptest.NewRecorder()
		handler.Show(w, authedRequest(httptest.NewRequest(http.MethodGet, "/", nil), userIdentity))

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "12.50")
		assert.Contains(t, body, "62.50")
		assert.Contains(t, body, "Expense added successfully")
		// Кнопка Settle только у категории Lent
		assert.Equal(t, 1, strings.Count(body, "/settle/"))
	})

	t.Run("фильтр месяца прокидывается в сервис", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)
		filter, err := month.Parse("2025-03")
		require.NoError(t, err)
		mockService.On("List", mock.Anything, int64(1), "2025-03").Return([]*models.Expense{}, int64(0), filter, nil)
		mockFlasher.On("Flashes", mock.Anything, "sid-1").Return(nil)

		handler := New(logger, mockService, mockFlasher, renderer)

		w := httptest.NewRecorder()
		handler.Show(w, authedRequest(httptest.NewRequest(http.MethodGet, "/?month=2025-03", nil), userIdentity))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `value="2025-03"`)
		mockService.AssertExpectations(t)
	})

	t.Run("некорректный фильтр месяца", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)
		mockService.On("List", mock.Anything, int64(1), "garbage").
			Return(nil, int64(0), nil, fmt.Errorf("invalid month filter: %w", month.ErrBadFilter))
		mockFlasher.On("Flash", mock.Anything, "sid-1", sessions.FlashDanger, "Invalid month filter").Return(nil)

		handler := New(logger, mockService, mockFlasher, renderer)

		w := httptest.NewRecorder()
		handler.Show(w, authedRequest(httptest.NewRequest(http.MethodGet, "/?month=garbage", nil), userIdentity))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		mockFlasher.AssertExpectations(t)
	})

	t.Run("администратор перенаправляется в панель", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)

		handler := New(logger, mockService, mockFlasher, renderer)

		w := httptest.NewRecorder()
		admin := models.Identity{UserID: 0, Email: "admin@expense.local", Role: models.RoleAdmin}
		handler.Show(w, authedRequest(httptest.NewRequest(http.MethodGet, "/", nil), admin))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
		mockService.AssertNotCalled(t, "List")
	})
}

func TestCreate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	postForm := func(values url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return authedRequest(req, userIdentity)
	}

	t.Run("успешное создание", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)
		mockService.On("Create", mock.Anything, int64(1), models.ExpenseForm{
			Amount: "12.50", Category: "Food", Note: "lunch", Date: "2025-03-10",
		}).Return(int64(5), nil)
		mockFlasher.On("Flash", mock.Anything, "sid-1", sessions.FlashSuccess, "Expense added successfully").Return(nil)

		handler := New(logger, mockService, mockFlasher, renderer)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{
			"amount":   {"12.50"},
			"category": {"Food"},
			"note":     {"lunch"},
			"date":     {"2025-03-10"},
		}))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		mockService.AssertExpectations(t)
		mockFlasher.AssertExpectations(t)
	})

	t.Run("нераспознаваемая сумма", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)
		mockService.On("Create", mock.Anything, int64(1), mock.Anything).Return(int64(0), models.ErrInvalidAmount)
		mockFlasher.On("Flash", mock.Anything, "sid-1", sessions.FlashDanger, "Invalid amount").Return(nil)

		handler := New(logger, mockService, mockFlasher, renderer)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{
			"amount":   {"abc"},
			"category": {"Food"},
			"date":     {"2025-03-10"},
		}))

		assert.Equal(t, http.StatusFound, w.Code)
		mockFlasher.AssertExpectations(t)
	})

	t.Run("администратор не создает расходы", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)

		handler := New(logger, mockService, mockFlasher, renderer)

		admin := models.Identity{UserID: 0, Email: "admin@expense.local", Role: models.RoleAdmin}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{
			"amount":   {"12.50"},
			"category": {"Food"},
			"date":     {"2025-03-10"},
		}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest(req, admin))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("пустая форма не доходит до сервиса", func(t *testing.T) {
		mockService := new(MockService)
		mockFlasher := new(MockFlasher)
		mockFlasher.On("Flash", mock.Anything, "sid-1", sessions.FlashDanger, mock.AnythingOfType("string")).Return(nil)

		handler := New(logger, mockService, mockFlasher, renderer)

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, postForm(url.Values{}))

		assert.Equal(t, http.StatusFound, w.Code)
		mockService.AssertNotCalled(t, "Create")
	})
}
