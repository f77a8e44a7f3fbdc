package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"

	"smarthome-be/internal/payment"

	"github.com/shopspring/decimal"
)

//go:embed templates
var templateFS embed.FS

// TemplateCache holds one parsed template set per page, each combined with
// the shared layout.
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"money": func(d decimal.Decimal) string { return payment.FormatAmount(d) },
		},
	}
}

// Load parses every page under templates/pages in fsys.
func (tc *TemplateCache) Load(fsys fs.FS) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	pages, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	for _, page := range pages {
		name := path.Base(page)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, "templates/layout.html", page)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		tc.cache[name] = tmpl
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

// LoadEmbedded parses the templates compiled into the binary.
func LoadEmbedded() (*TemplateCache, error) {
	tc := NewTemplateCache()
	if err := tc.Load(templateFS); err != nil {
		return nil, err
	}
	return tc, nil
}
