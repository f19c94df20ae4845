// Package web holds the embedded chat page, admin table and static script.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names.
const (
	IndexPage = "index.html"
	AdminPage = "admin.html"
)

var funcs = template.FuncMap{
	"stamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
}

// Templates parses the embedded HTML templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static returns the static asset tree rooted at its top directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
