// Package auth содержит логику бизнес-уровня для регистрации и входа
// пользователей, включая сентинельную идентичность администратора.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/expense-tracker/internal/config"
	"github.com/magabrotheeeer/expense-tracker/internal/lib/password"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/storage/repository"
)

// ErrInvalidCredentials возвращается при любой неудаче входа. Причина
// (неизвестный email или неверный пароль) намеренно не различается,
// чтобы исключить перебор аккаунтов.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken возвращается при регистрации на уже занятый email.
var ErrEmailTaken = errors.New("email already registered")

// ErrEmailReserved возвращается при попытке зарегистрировать email администратора.
var ErrEmailReserved = errors.New("email is reserved")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, email, passwordHash string) (int64, error)

	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service отвечает за регистрацию и аутентификацию.
type Service struct {
	users UserRepository
	admin config.Admin
}

// New создает новый экземпляр Service.
func New(users UserRepository, admin config.Admin) *Service {
	return &Service{
		users: users,
		admin: admin,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Email администратора зарезервирован и не может быть зарегистрирован.
func (s *Service) Register(ctx context.Context, email, rawPassword string) (int64, error) {
	const op = "auth.Register"

	email = normalizeEmail(email)
	if email == normalizeEmail(s.admin.Email) {
		return 0, ErrEmailReserved
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.users.CreateUser(ctx, email, hashed)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Login проверяет учетные данные и возвращает идентичность.
//
// Пара администратора из конфига дает сентинельную идентичность без строки
// в таблице users; любая другая пара проверяется по bcrypt-хэшу.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.Identity, error) {
	email = normalizeEmail(email)

	if s.admin.Password != "" &&
		email == normalizeEmail(s.admin.Email) && rawPassword == s.admin.Password {
		return &models.Identity{
			UserID: 0,
			Email:  s.admin.Email,
			Role:   models.RoleAdmin,
		}, nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &models.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   models.RoleUser,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
