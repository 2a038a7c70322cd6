// Package report формирует табличный PDF-отчет по активным расходам.
//
// Рендеринг детерминированный и однопроходный: фиксированный размер
// страницы, заголовок, email пользователя, время генерации, затем либо
// отметка об отсутствии расходов, либо таблица с итоговой суммой.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

// Filename — фиксированное имя файла вложения.
const Filename = "expenses.pdf"

// currencyPrefix — префикс валюты в колонке суммы и в итоге.
const currencyPrefix = "Rs. "

const (
	categoryMaxLen = 15
	noteMaxLen     = 30
)

// Generate рендерит PDF-отчет по активным расходам пользователя.
func Generate(userEmail string, generatedAt time.Time, expenses []*models.Expense) ([]byte, error) {
	return generate(userEmail, generatedAt, expenses, true)
}

// generate принимает флаг сжатия отдельно: без сжатия текстовые операторы
// PDF остаются читаемыми и их содержимое можно проверить.
func generate(userEmail string, generatedAt time.Time, expenses []*models.Expense, compress bool) ([]byte, error) {
	const op = "report.Generate"

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Expense Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "User: "+sanitize(userEmail, 100), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+generatedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	if len(expenses) == 0 {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 10, "No active expenses found.", "", 1, "L", false, 0, "")
	} else {
		writeTable(pdf, expenses)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func writeTable(pdf *gofpdf.Fpdf, expenses []*models.Expense) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 8, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 8, "Note", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	var total int64
	for _, e := range expenses {
		note := e.Note
		if note == "" {
			note = "-"
		}
		pdf.CellFormat(30, 8, e.Date.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, sanitize(e.Category, categoryMaxLen), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, currencyPrefix+models.FormatCents(e.AmountCents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(80, 8, sanitize(note, noteMaxLen), "1", 1, "L", false, 0, "")
		total += e.AmountCents
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 12)
	totalLine := fmt.Sprintf("Total Active Expenses: %s%s", currencyPrefix, models.FormatCents(total))
	pdf.CellFormat(0, 10, totalLine, "", 1, "R", false, 0, "")
}

// sanitize обрезает строку до maxLen символов и заменяет все символы вне
// печатаемого 7-битного диапазона на "?": встроенные шрифты PDF не
// покрывают не-ASCII текст.
func sanitize(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		if r < 32 || r > 126 {
			out[i] = '?'
		} else {
			out[i] = r
		}
	}
	return string(out)
}
