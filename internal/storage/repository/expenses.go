package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// CreateExpense вставляет новую запись расхода и возвращает её ID.
func (s *Storage) CreateExpense(ctx context.Context, e models.Expense) (int64, error) {
	const op = "storage.CreateExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO expenses (user_id, amount_cents, category, note, expense_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		e.UserID, e.AmountCents, e.Category, e.Note, e.Date, e.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetExpense возвращает запись расхода по её ID или ErrNotFound.
func (s *Storage) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	const op = "storage.GetExpense"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, amount_cents, category, note, expense_date, status, created_at
			  FROM expenses
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Expense
	if err := row.Scan(&result.ID, &result.UserID, &result.AmountCents, &result.Category,
		&result.Note, &result.Date, &result.Status, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListActiveByOwner возвращает активные расходы пользователя, отсортированные
// по дате по убыванию. Необязательный фильтр ограничивает выборку одним
// календарным месяцем.
func (s *Storage) ListActiveByOwner(ctx context.Context, ownerID int64, filter *month.Filter) ([]*models.Expense, error) {
	const op = "storage.ListActiveByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, amount_cents, category, note, expense_date, status, created_at
			  FROM expenses
			  WHERE user_id = $1
			    AND status = $2
			    AND ($3::date IS NULL OR (expense_date >= $3 AND expense_date < $4))
			  ORDER BY expense_date DESC, id DESC`
	var start, end any
	if filter != nil {
		start, end = filter.Start, filter.End
	}
	rows, err := s.DB.QueryContext(ctx, query, ownerID, models.StatusActive, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Expense
	for rows.Next() {
		var item models.Expense
		if err := rows.Scan(&item.ID, &item.UserID, &item.AmountCents, &item.Category,
			&item.Note, &item.Date, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateExpense перезаписывает четыре изменяемых поля записи и возвращает
// количество изменённых строк.
func (s *Storage) UpdateExpense(ctx context.Context, e models.Expense) (int, error) {
	const op = "storage.UpdateExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expenses
			  SET amount_cents = $1, category = $2, note = $3, expense_date = $4
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		e.AmountCents, e.Category, e.Note, e.Date, e.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteExpense удаляет запись расхода по ID и возвращает количество удалённых строк.
func (s *Storage) DeleteExpense(ctx context.Context, id int64) (int, error) {
	const op = "storage.DeleteExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM expenses WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SettleExpense переводит запись в статус settled и возвращает количество
// изменённых строк. Проверка категории выполняется на уровне сервиса.
func (s *Storage) SettleExpense(ctx context.Context, id int64) (int, error) {
	const op = "storage.SettleExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE expenses
			  SET status = $1
			  WHERE id = $2 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query, models.StatusSettled, id, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListAllExpenses возвращает все расходы всех пользователей, отсортированные
// по времени создания по убыванию.
func (s *Storage) ListAllExpenses(ctx context.Context) ([]*models.Expense, error) {
	const op = "storage.ListAllExpenses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, amount_cents, category, note, expense_date, status, created_at
			  FROM expenses
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Expense
	for rows.Next() {
		var item models.Expense
		if err := rows.Scan(&item.ID, &item.UserID, &item.AmountCents, &item.Category,
			&item.Note, &item.Date, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountExpenses возвращает общее количество записей расходов.
func (s *Storage) CountExpenses(ctx context.Context) (int, error) {
	const op = "storage.CountExpenses"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
