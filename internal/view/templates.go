package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates holds one parsed template set per page. Each page is a clone of
// layout.html with the page's {{define "content"}} parsed on top.
type Templates struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Templates)(nil)

// Load parses the embedded templates.
func Load() (*Templates, error) {
	return load(templateFS)
}

func load(fsys fs.FS) (*Templates, error) {
	base, err := template.New("base").Funcs(FuncMap()).ParseFS(fsys, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, f := range pageFiles {
		name := path.Base(f)
		if name == "layout.html" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Templates{pages: pages}, nil
}

// Instance implements gin's render.HTMLRender, so handlers can use c.HTML.
func (t *Templates) Instance(name string, data any) render.Render {
	tmpl, ok := t.pages[name]
	if !ok {
		return missingTemplate{name: name}
	}
	return render.HTML{Template: tmpl, Name: "layout", Data: data}
}

type missingTemplate struct{ name string }

func (m missingTemplate) Render(w http.ResponseWriter) error {
	return fmt.Errorf("template %q not found", m.name)
}

func (m missingTemplate) WriteContentType(w http.ResponseWriter) {
	render.HTML{}.WriteContentType(w)
}

// FuncMap is shared by every page.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"number": FormatNumber,
		"score": func(s *float64) string {
			if s == nil {
				return "not available"
			}
			return FormatNumber(*s)
		},
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
	}
}

// FormatNumber prints a float without trailing zeros: 30, 12.5.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
