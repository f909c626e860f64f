// Package templates embeds the HTML pages served by the web client.
package templates

import (
	"embed"
	"html/template"
	"net/url"
	"time"
)

//go:embed *.tmpl
var files embed.FS

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2006-01-02 15:04")
	},
}

// Parse loads every page. Each page file renders the shared header and
// footer defined in layout.tmpl.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(files, "*.tmpl")
}

func Must() *template.Template {
	return template.Must(Parse())
}
