package expense

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/storage/repository"
)

// MockRepository реализует интерфейс expense.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateExpense(ctx context.Context, e models.Expense) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Expense), args.Error(1)
}

func (m *MockRepository) ListActiveByOwner(ctx context.Context, ownerID int64, filter *month.Filter) ([]*models.Expense, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Expense), args.Error(1)
}

func (m *MockRepository) UpdateExpense(ctx context.Context, e models.Expense) (int, error) {
	args := m.Called(ctx, e)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) DeleteExpense(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SettleExpense(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validForm() models.ExpenseForm {
	return models.ExpenseForm{
		Amount:   "12.50",
		Category: "Food",
		Note:     "  lunch ",
		Date:     "2025-03-10",
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("успешное создание", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("CreateExpense", mock.Anything, mock.MatchedBy(func(e models.Expense) bool {
			return e.UserID == 1 &&
				e.AmountCents == 1250 &&
				e.Category == "Food" &&
				e.Note == "lunch" &&
				e.Status == models.StatusActive &&
				e.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
		})).Return(int64(5), nil)

		svc := New(repo, discardLogger())
		id, err := svc.Create(ctx, 1, validForm())
		require.NoError(t, err)
		assert.Equal(t, int64(5), id)
		repo.AssertExpectations(t)
	})

	t.Run("нераспознаваемая сумма", func(t *testing.T) {
		repo := new(MockRepository)
		svc := New(repo, discardLogger())

		form := validForm()
		form.Amount = "abc"
		_, err := svc.Create(ctx, 1, form)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
		repo.AssertNotCalled(t, "CreateExpense")
	})

	t.Run("нераспознаваемая дата", func(t *testing.T) {
		repo := new(MockRepository)
		svc := New(repo, discardLogger())

		form := validForm()
		form.Date = "10/03/2025"
		_, err := svc.Create(ctx, 1, form)
		assert.ErrorIs(t, err, models.ErrInvalidDate)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("сумма считается арифметически", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListActiveByOwner", mock.Anything, int64(1), (*month.Filter)(nil)).Return([]*models.Expense{
			{ID: 1, AmountCents: 1000},
			{ID: 2, AmountCents: 250},
		}, nil)

		svc := New(repo, discardLogger())
		entries, total, filter, err := svc.List(ctx, 1, "")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, int64(1250), total)
		assert.Nil(t, filter)
	})

	t.Run("фильтр по месяцу передается в хранилище", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListActiveByOwner", mock.Anything, int64(1), mock.MatchedBy(func(f *month.Filter) bool {
			return f != nil && f.Year == 2025 && f.Month == time.March
		})).Return([]*models.Expense{}, nil)

		svc := New(repo, discardLogger())
		_, total, filter, err := svc.List(ctx, 1, "2025-03")
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		require.NotNil(t, filter)
		assert.Equal(t, "2025-03", filter.String())
	})

	t.Run("некорректный фильтр", func(t *testing.T) {
		repo := new(MockRepository)
		svc := New(repo, discardLogger())

		_, _, _, err := svc.List(ctx, 1, "март")
		assert.ErrorIs(t, err, month.ErrBadFilter)
		repo.AssertNotCalled(t, "ListActiveByOwner")
	})
}

func TestGetOwned(t *testing.T) {
	ctx := context.Background()

	t.Run("чужая запись", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(9)).Return(&models.Expense{ID: 9, UserID: 2}, nil)

		svc := New(repo, discardLogger())
		_, err := svc.GetOwned(ctx, 1, 9)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("отсутствующая запись", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(9)).Return(nil, repository.ErrNotFound)

		svc := New(repo, discardLogger())
		_, err := svc.GetOwned(ctx, 1, 9)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("успешное обновление", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(9)).Return(&models.Expense{ID: 9, UserID: 1}, nil)
		repo.On("UpdateExpense", mock.Anything, mock.MatchedBy(func(e models.Expense) bool {
			return e.ID == 9 && e.AmountCents == 1250
		})).Return(1, nil)

		svc := New(repo, discardLogger())
		require.NoError(t, svc.Update(ctx, 1, 9, validForm()))
		repo.AssertExpectations(t)
	})

	t.Run("обновление чужой записи запрещено", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(9)).Return(&models.Expense{ID: 9, UserID: 2}, nil)

		svc := New(repo, discardLogger())
		assert.ErrorIs(t, svc.Update(ctx, 1, 9, validForm()), ErrForbidden)
		repo.AssertNotCalled(t, "UpdateExpense")
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRepository)
	repo.On("GetExpense", mock.Anything, int64(9)).Return(&models.Expense{ID: 9, UserID: 2}, nil)

	svc := New(repo, discardLogger())
	assert.ErrorIs(t, svc.Delete(ctx, 1, 9), ErrForbidden)
	repo.AssertNotCalled(t, "DeleteExpense")
}

func TestSettle(t *testing.T) {
	ctx := context.Background()

	lent := func(owner int64, status string) *models.Expense {
		return &models.Expense{ID: 3, UserID: owner, Category: models.CategoryLent, Status: status}
	}

	t.Run("успешное погашение", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(3)).Return(lent(1, models.StatusActive), nil)
		repo.On("SettleExpense", mock.Anything, int64(3)).Return(1, nil)

		svc := New(repo, discardLogger())
		require.NoError(t, svc.Settle(ctx, 1, 3))
		repo.AssertExpectations(t)
	})

	t.Run("чужая запись", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(3)).Return(lent(2, models.StatusActive), nil)

		svc := New(repo, discardLogger())
		assert.ErrorIs(t, svc.Settle(ctx, 1, 3), ErrCannotSettle)
	})

	t.Run("категория не Lent", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(3)).
			Return(&models.Expense{ID: 3, UserID: 1, Category: "Food", Status: models.StatusActive}, nil)

		svc := New(repo, discardLogger())
		assert.ErrorIs(t, svc.Settle(ctx, 1, 3), ErrCannotSettle)
	})

	t.Run("уже погашенная запись", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetExpense", mock.Anything, int64(3)).Return(lent(1, models.StatusSettled), nil)

		svc := New(repo, discardLogger())
		assert.ErrorIs(t, svc.Settle(ctx, 1, 3), ErrCannotSettle)
		repo.AssertNotCalled(t, "SettleExpense")
	})
}
