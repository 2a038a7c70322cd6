// Package web содержит встроенные HTML-шаблоны и их рендерер.
package web

import "embed"

// TemplatesFS встраивает HTML-шаблоны серверного рендеринга.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
