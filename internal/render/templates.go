package render

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sssg/internal/logfields"
)

//go:embed templates_defaults/*.tmpl
var embeddedTemplates embed.FS

// TemplateSet holds the parsed page and index templates.
type TemplateSet struct {
	Page  *template.Template
	Index *template.Template
}

// LoadTemplates parses the page and index templates, preferring user
// overrides in overrideDir (<overrideDir>/page.html.tmpl, index.html.tmpl)
// and falling back to the embedded defaults per kind.
func LoadTemplates(overrideDir string) (*TemplateSet, error) {
	page, err := loadTemplate(overrideDir, "page")
	if err != nil {
		return nil, err
	}
	index, err := loadTemplate(overrideDir, "index")
	if err != nil {
		return nil, err
	}
	return &TemplateSet{Page: page, Index: index}, nil
}

func loadTemplate(overrideDir, kind string) (*template.Template, error) {
	if overrideDir != "" {
		path := filepath.Join(overrideDir, kind+".html.tmpl")
		if raw, err := os.ReadFile(path); err == nil {
			slog.Debug("Loaded template override", slog.String("kind", kind), logfields.Path(path))
			tmpl, err := template.New(kind).Parse(string(raw))
			if err != nil {
				return nil, fmt.Errorf("parse template override %s: %w", path, err)
			}
			return tmpl, nil
		}
	}

	raw, err := embeddedTemplates.ReadFile("templates_defaults/" + kind + ".html.tmpl")
	if err != nil {
		// Embedded defaults missing is a programmer error, not user absence.
		panic(fmt.Sprintf("embedded default template missing for kind %s: %v", kind, err))
	}
	tmpl, err := template.New(kind).Parse(string(raw))
	if err != nil {
		panic(fmt.Sprintf("embedded default template invalid for kind %s: %v", kind, err))
	}
	return tmpl, nil
}
