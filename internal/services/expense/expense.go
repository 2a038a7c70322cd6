// Package expense содержит бизнес-логику работы с расходами: создание,
// выборку с фильтром по месяцу, редактирование, удаление и погашение
// одолженных сумм. Все операции проверяют владение записью.
package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// ErrForbidden возвращается, когда запись принадлежит другому пользователю.
var ErrForbidden = errors.New("expense belongs to another user")

// ErrCannotSettle возвращается, когда погашение невозможно: запись не
// принадлежит вызывающему или её категория не Lent.
var ErrCannotSettle = errors.New("cannot settle this expense")

// Repository определяет методы для работы с расходами в хранилище.
type Repository interface {
	// CreateExpense добавляет новую запись и возвращает её ID.
	CreateExpense(ctx context.Context, e models.Expense) (int64, error)
	// GetExpense возвращает запись по ID или repository.ErrNotFound.
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	// ListActiveByOwner возвращает активные записи пользователя по убыванию даты.
	ListActiveByOwner(ctx context.Context, ownerID int64, filter *month.Filter) ([]*models.Expense, error)
	// UpdateExpense перезаписывает изменяемые поля записи.
	UpdateExpense(ctx context.Context, e models.Expense) (int, error)
	// DeleteExpense удаляет запись по ID.
	DeleteExpense(ctx context.Context, id int64) (int, error)
	// SettleExpense переводит запись в статус settled.
	SettleExpense(ctx context.Context, id int64) (int, error)
}

// Service реализует бизнес-логику работы с расходами.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// parseForm превращает данные формы в запись расхода. Нераспознаваемая
// сумма или дата возвращают models.ErrInvalidAmount / models.ErrInvalidDate.
func parseForm(ownerID int64, form models.ExpenseForm) (models.Expense, error) {
	cents, err := models.ParseAmount(form.Amount)
	if err != nil {
		return models.Expense{}, err
	}
	date, err := models.ParseDate(form.Date)
	if err != nil {
		return models.Expense{}, err
	}
	return models.Expense{
		UserID:      ownerID,
		AmountCents: cents,
		Category:    strings.TrimSpace(form.Category),
		Note:        strings.TrimSpace(form.Note),
		Date:        date,
		Status:      models.StatusActive,
	}, nil
}

// Create добавляет новый активный расход для пользователя и возвращает его ID.
func (s *Service) Create(ctx context.Context, ownerID int64, form models.ExpenseForm) (int64, error) {
	entry, err := parseForm(ownerID, form)
	if err != nil {
		return 0, err
	}

	id, err := s.repo.CreateExpense(ctx, entry)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new expense", slog.Int64("id", id), slog.Int64("user_id", ownerID))
	return id, nil
}

// List возвращает активные расходы пользователя, при необходимости
// ограниченные одним месяцем YYYY-MM, вместе с арифметической суммой в центах.
func (s *Service) List(ctx context.Context, ownerID int64, monthStr string) ([]*models.Expense, int64, *month.Filter, error) {
	filter, err := month.Parse(monthStr)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("invalid month filter: %w", err)
	}

	entries, err := s.repo.ListActiveByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, nil, err
	}

	var total int64
	for _, e := range entries {
		total += e.AmountCents
	}
	return entries, total, filter, nil
}

// GetOwned возвращает запись по ID, если она принадлежит вызывающему.
// Отсутствующая запись — repository.ErrNotFound, чужая — ErrForbidden.
func (s *Service) GetOwned(ctx context.Context, ownerID, id int64) (*models.Expense, error) {
	entry, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != ownerID {
		return nil, ErrForbidden
	}
	return entry, nil
}

// Update безусловно перезаписывает четыре изменяемых поля записи
// после проверки владения.
func (s *Service) Update(ctx context.Context, ownerID, id int64, form models.ExpenseForm) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}

	entry, err := parseForm(ownerID, form)
	if err != nil {
		return err
	}
	entry.ID = id

	if _, err := s.repo.UpdateExpense(ctx, entry); err != nil {
		return err
	}
	s.log.Info("updated expense", slog.Int64("id", id), slog.Int64("user_id", ownerID))
	return nil
}

// Delete необратимо удаляет запись после проверки владения.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}

	if _, err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted expense", slog.Int64("id", id), slog.Int64("user_id", ownerID))
	return nil
}

// Settle переводит запись в статус settled. Разрешено только владельцу
// и только для категории Lent; статус settled терминален.
func (s *Service) Settle(ctx context.Context, ownerID, id int64) error {
	entry, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if entry.UserID != ownerID || !entry.IsLent() || entry.Status != models.StatusActive {
		return ErrCannotSettle
	}

	if _, err := s.repo.SettleExpense(ctx, id); err != nil {
		return err
	}
	s.log.Info("settled lent expense", slog.Int64("id", id), slog.Int64("user_id", ownerID))
	return nil
}
