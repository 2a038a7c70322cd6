// Package month разбирает фильтр месяца вида YYYY-MM и превращает его
// в полуинтервал дат [Start, End) для выборок из хранилища.
package month

import (
	"errors"
	"fmt"
	"time"
)

// ErrBadFilter возвращается при нераспознаваемой строке фильтра.
var ErrBadFilter = errors.New("bad month filter")

// Filter — границы одного календарного месяца.
type Filter struct {
	Year  int
	Month time.Month
	Start time.Time
	End   time.Time
}

// Parse разбирает строку фильтра YYYY-MM. Пустая строка — отсутствие фильтра,
// возвращается (nil, nil).
func Parse(s string) (*Filter, error) {
	const op = "month.Parse"
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrBadFilter)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return &Filter{
		Year:  t.Year(),
		Month: t.Month(),
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}, nil
}

// Key возвращает ключ месяца в формате YYYY-MM для произвольной даты.
func Key(t time.Time) string {
	return t.Format("2006-01")
}

// Contains сообщает, попадает ли дата в месяц фильтра.
func (f *Filter) Contains(t time.Time) bool {
	return !t.Before(f.Start) && t.Before(f.End)
}

// String возвращает фильтр в исходном виде YYYY-MM.
func (f *Filter) String() string {
	return f.Start.Format("2006-01")
}
