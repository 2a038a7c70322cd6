package insights

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrBadAIResponse возвращается, когда ответ сервиса генерации не удалось
// разобрать как строгий JSON (только для пути бюджета: текст советов
// разбирается толерантно и не имеет состояния ошибки парсинга).
var ErrBadAIResponse = errors.New("could not parse AI response")

// sectionHeaders — четыре фиксированных заголовка ответа с советами,
// в порядке запроса.
var sectionHeaders = []string{
	"OVERVIEW",
	"TOP SPENDING AREAS",
	"NOTABLE PATTERNS",
	"ACTIONABLE TIPS",
}

// Section — одна секция ответа с советами.
type Section struct {
	Title string
	Body  string
}

// ParseSections разбирает свободный текст ответа конечным автоматом:
// состояние — текущая секция (или её отсутствие), переход — совпадение
// префикса строки с известным заголовком без учета регистра. Непустые
// строки копятся в теле текущей секции и склеиваются пробелами.
// Отсутствующие или переставленные заголовки не являются ошибкой.
func ParseSections(text string) []Section {
	var result []Section
	current := -1 // индекс в result; -1 — вне секций

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if title, ok := matchHeader(line); ok {
			result = append(result, Section{Title: title})
			current = len(result) - 1
			continue
		}
		if current < 0 || line == "" {
			continue
		}
		if result[current].Body != "" {
			result[current].Body += " "
		}
		result[current].Body += line
	}

	// Секции без тела не показываем
	filtered := result[:0]
	for _, s := range result {
		if s.Body != "" {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// matchHeader проверяет, начинается ли строка с одного из известных
// заголовков, и возвращает канонический заголовок.
func matchHeader(line string) (string, bool) {
	upper := strings.ToUpper(line)
	for _, h := range sectionHeaders {
		if strings.HasPrefix(upper, h) {
			return h, true
		}
	}
	return "", false
}

// BudgetCategory — предложение бюджета по одной категории.
type BudgetCategory struct {
	Name       string  `json:"name"`
	CurrentAvg float64 `json:"current_avg"`
	Suggested  float64 `json:"suggested"`
	Change     string  `json:"change"`
	Reason     string  `json:"reason"`
}

// BudgetPlan — структурированный ответ пути бюджета.
type BudgetPlan struct {
	IncomeAssumption     string           `json:"income_assumption"`
	TotalSuggestedBudget float64          `json:"total_suggested_budget"`
	Categories           []BudgetCategory `json:"categories"`
	OverallAdvice        string           `json:"overall_advice"`
}

// ParseBudget разбирает ответ пути бюджета как строгий JSON. Одиночная
// пара строк с code fence снимается перед парсингом: некоторые бэкенды
// оборачивают JSON в fences вопреки инструкции.
func ParseBudget(text string) (*BudgetPlan, error) {
	const op = "insights.ParseBudget"

	var plan BudgetPlan
	if err := json.Unmarshal([]byte(stripFences(text)), &plan); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrBadAIResponse, err)
	}
	return &plan, nil
}

// stripFences удаляет одну ведущую и одну замыкающую строку с тройными
// кавычками, если они есть.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
