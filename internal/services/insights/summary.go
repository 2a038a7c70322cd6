// Package insights строит детерминированную текстовую сводку расходов
// пользователя и получает от внешнего сервиса генерации текста советы
// по тратам и предложение бюджета. Результаты эфемерны и нигде не
// сохраняются.
package insights

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// ErrNoData возвращается, когда у пользователя нет активных расходов
// и сводку строить не из чего.
var ErrNoData = errors.New("no expense data")

// renderedMonths — сколько последних месяцев попадает в текст сводки.
// Агрегаты считаются по всем месяцам, рендерятся только последние шесть.
const renderedMonths = 6

// CategoryTotal — агрегат по одной категории.
type CategoryTotal struct {
	Name       string  `json:"name"`
	TotalCents int64   `json:"total_cents"`
	Percent    float64 `json:"percent"`
}

// MonthTotal — агрегат по одному календарному месяцу.
type MonthTotal struct {
	Key        string `json:"month"` // YYYY-MM
	TotalCents int64  `json:"total_cents"`
}

// Summary — агрегированные показатели активных расходов пользователя.
type Summary struct {
	TotalCents int64           `json:"total_cents"`
	Count      int             `json:"count"`
	Categories []CategoryTotal `json:"categories"`
	Months     []MonthTotal    `json:"months"`
}

// BuildSummary агрегирует активные расходы: общая сумма, количество,
// разбивка по категориям (по убыванию суммы) и по месяцам (по возрастанию).
// Пустая история — ErrNoData.
func BuildSummary(expenses []*models.Expense) (*Summary, error) {
	if len(expenses) == 0 {
		return nil, ErrNoData
	}

	var total int64
	byCategory := make(map[string]int64)
	byMonth := make(map[string]int64)
	for _, e := range expenses {
		total += e.AmountCents
		byCategory[e.Category] += e.AmountCents
		byMonth[month.Key(e.Date)] += e.AmountCents
	}

	categories := make([]CategoryTotal, 0, len(byCategory))
	for name, cents := range byCategory {
		pct := 0.0
		if total > 0 {
			pct = float64(cents) / float64(total) * 100
		}
		categories = append(categories, CategoryTotal{Name: name, TotalCents: cents, Percent: pct})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].TotalCents != categories[j].TotalCents {
			return categories[i].TotalCents > categories[j].TotalCents
		}
		return categories[i].Name < categories[j].Name
	})

	months := make([]MonthTotal, 0, len(byMonth))
	for key, cents := range byMonth {
		months = append(months, MonthTotal{Key: key, TotalCents: cents})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Key < months[j].Key })

	return &Summary{
		TotalCents: total,
		Count:      len(expenses),
		Categories: categories,
		Months:     months,
	}, nil
}

// Render формирует детерминированный текст сводки для внешнего сервиса.
// В месячной разбивке рендерятся только последние renderedMonths месяцев.
func (s *Summary) Render() string {
	var b strings.Builder
	b.WriteString("EXPENSE SUMMARY\n")
	fmt.Fprintf(&b, "Total spent: %s\n", models.FormatCents(s.TotalCents))
	fmt.Fprintf(&b, "Expense count: %d\n", s.Count)

	b.WriteString("\nBY CATEGORY (descending)\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n", c.Name, models.FormatCents(c.TotalCents), c.Percent)
	}

	months := s.Months
	if len(months) > renderedMonths {
		months = months[len(months)-renderedMonths:]
	}
	fmt.Fprintf(&b, "\nBY MONTH (last %d)\n", renderedMonths)
	for _, m := range months {
		fmt.Fprintf(&b, "- %s: %s\n", m.Key, models.FormatCents(m.TotalCents))
	}
	return b.String()
}
