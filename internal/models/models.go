// Package models содержит доменные структуры приложения: пользователей,
// расходы и идентичность текущей сессии.
package models

import "time"

// Статусы расхода. Переход разрешён только active -> settled и только
// для категории Lent.
const (
	StatusActive  = "active"
	StatusSettled = "settled"
)

// CategoryLent — категория одолженных денег, единственная, для которой
// допускается операция settle.
const CategoryLent = "Lent"

// Categories — категории расходов, предлагаемые в формах.
// Category в БД хранится строкой, список носит только интерфейсный характер.
var Categories = []string{
	"Food",
	"Transport",
	"Shopping",
	"Bills",
	"Entertainment",
	"Health",
	CategoryLent,
	"Other",
}

// Роли идентичности.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User описывает зарегистрированного пользователя.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expense описывает одну запись расхода. Сумма хранится в центах,
// дата — календарный день без времени.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Note        string    `json:"note"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Amount возвращает сумму расхода в денежных единицах для отображения.
func (e Expense) Amount() string {
	return FormatCents(e.AmountCents)
}

// IsLent сообщает, относится ли расход к категории Lent.
func (e Expense) IsLent() bool {
	return e.Category == CategoryLent
}

// Identity — явная типизированная идентичность текущей сессии.
// Администратор — сентинельная идентичность без строки в таблице users:
// UserID == 0 и Role == RoleAdmin.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin сообщает, является ли идентичность администратором.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ExpenseForm — данные формы создания и редактирования расхода.
//
// Amount и Date валидируются парсингом (см. models.ParseAmount и ParseDate),
// поэтому здесь проверяется только их наличие.
type ExpenseForm struct {
	Amount   string `validate:"required"`
	Category string `validate:"required,max=100"`
	Note     string `validate:"max=500"`
	Date     string `validate:"required"`
}

// CredentialsForm — данные форм логина и регистрации.
type CredentialsForm struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,max=72"`
}
