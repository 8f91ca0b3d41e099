// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site
// and the admin interface. Public pages share a base layout; the login,
// 2FA, and admin pages are standalone documents.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"salonpress/internal/markdown"
	"salonpress/internal/middleware"
	"salonpress/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	SiteName  string         // Site display name for the header
	Section   string         // Active nav section (e.g., "staffs", "products")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and fetch headers
	Data      map[string]any // Page-specific data
	Error     string         // One-line error shown above forms
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	siteName  string
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
	"admin":      true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout unless
// it is standalone.
func New(siteName string) (*Renderer, error) {
	funcMap := template.FuncMap{
		// markdown renders item body text as HTML.
		"markdown": func(source string) template.HTML {
			out, err := markdown.ToHTML(source)
			if err != nil {
				return template.HTML(template.HTMLEscapeString(source))
			}
			return template.HTML(out)
		},
		// yen formats a price in Japanese yen with a thousands separator.
		"yen": formatYen,
		// date formats a timestamp for news listings.
		"date": func(t time.Time) string {
			return t.Format("2006.01.02")
		},
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
		siteName:  siteName,
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || e.Name() == "base.html" {
			continue
		}
		name := e.Name()
		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		var parseErr error

		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(funcMap).ParseFS(
				templateFS, "templates/"+name,
			)
		} else {
			tmpl, parseErr = template.New("base.html").Funcs(funcMap).ParseFS(
				templateFS, "templates/base.html", "templates/"+name,
			)
		}

		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}

		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a page to the response writer.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rn.Render(w, r, name, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// Render executes a page template into an arbitrary writer. The public
// handlers use this to render into a buffer for the page cache.
func (rn *Renderer) Render(w io.Writer, r *http.Request, name string, data *PageData) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	if data == nil {
		data = &PageData{}
	}
	if data.SiteName == "" {
		data.SiteName = rn.siteName
	}
	if r != nil {
		data.CSRFToken = middleware.GetCSRFToken(r)
		if data.Session == nil {
			data.Session = middleware.SessionFromCtx(r.Context())
		}
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	return tmpl.ExecuteTemplate(w, execName, data)
}

// formatYen renders an integer price like 12800 as "¥12,800".
func formatYen(price int) string {
	s := fmt.Sprintf("%d", price)
	if price < 1000 {
		return "¥" + s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return "¥" + string(out)
}
