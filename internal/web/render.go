package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/magabrotheeeer/expense-tracker/internal/models"
	"github.com/magabrotheeeer/expense-tracker/internal/sessions"
)

const baseTemplate = "base.html"

// PageData — данные, общие для всех страниц, плюс полезная нагрузка
// конкретной страницы.
type PageData struct {
	Title    string
	Identity *models.Identity
	Flashes  []sessions.Flash
	Data     any
}

// Renderer хранит разобранные наборы шаблонов по имени страницы.
// Каждая страница парсится вместе с базовым макетом один раз при старте.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money": models.FormatCents,
	"date": func(t interface{ Format(string) string }) string {
		return t.Format("2006-01-02")
	},
}

// NewRenderer разбирает все встроенные шаблоны страниц.
func NewRenderer() (*Renderer, error) {
	const op = "web.NewRenderer"

	entries, err := fs.ReadDir(TemplatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pages := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry.Name()
		if name == baseTemplate {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(TemplatesFS,
			path.Join("templates", baseTemplate),
			path.Join("templates", name))
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", op, name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render рендерит страницу во временный буфер и пишет результат целиком.
// Буферизация не дает отдать клиенту полстраницы при ошибке шаблона.
func (rn *Renderer) Render(w http.ResponseWriter, page string, data PageData) error {
	const op = "web.Render"

	tmpl, ok := rn.pages[page]
	if !ok {
		return fmt.Errorf("%s: unknown page %q", op, page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseTemplate, data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}
