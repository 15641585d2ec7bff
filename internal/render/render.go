// Package render executes the embedded HTML templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"
)

//go:embed templates
var templateFS embed.FS

// page template names, relative to templates/
const (
	Index    = "index.html"
	Group    = "group.html"
	Follow   = "follow.html"
	Profile  = "profile.html"
	Post     = "post.html"
	PostForm = "new_post.html"
	Signup   = "signup.html"
	Login    = "login.html"
	NotFound = "misc/404.html"
	Denied   = "misc/403.html"
	Internal = "misc/500.html"
)

var pages = []string{Index, Group, Follow, Profile, Post, PostForm, Signup, Login, NotFound, Denied, Internal}

// Renderer holds one parsed template set per page: the layout, the
// shared includes and the page itself.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page. mediaURL resolves stored image keys.
func New(mediaURL func(string) string) (*Renderer, error) {
	funcs := template.FuncMap{
		"mediaURL":   mediaURL,
		"date":       formatDate,
		"linebreaks": linebreaks,
		"add":        func(a, b int) int { return a + b },
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/base.html",
			"templates/includes/*.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Bytes renders a page into memory.
func (r *Renderer) Bytes(name string, data interface{}) ([]byte, error) {
	tmpl, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// HTML renders a page with the given status. Nothing is written when
// rendering fails.
func (r *Renderer) HTML(w http.ResponseWriter, status int, name string, data interface{}) error {
	body, err := r.Bytes(name, data)
	if err != nil {
		return err
	}
	Write(w, status, body)
	return nil
}

// Write sends an already rendered page.
func Write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

// linebreaks escapes text and turns newlines into <br>.
func linebreaks(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
