package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/ameliecafe/storefront/internal/auth"
	"github.com/ameliecafe/storefront/internal/blob"
	"github.com/ameliecafe/storefront/internal/cart"
	"github.com/ameliecafe/storefront/internal/catalog"
	"github.com/ameliecafe/storefront/internal/config"
	"github.com/ameliecafe/storefront/internal/mail"
	"github.com/ameliecafe/storefront/internal/model"
	webembed "github.com/ameliecafe/storefront/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"price": model.FormatPrice,
		"mul": func(cents int64, qty int) int64 {
			return cents * int64(qty)
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"home.html",
		"sobre.html",
		"produtos.html",
		"produto.html",
		"unidades.html",
		"sacola.html",
		"admin_login.html",
		"admin_produtos.html",
		"admin_produto_form.html",
		"admin_conta.html",
		"recuperar.html",
		"recuperar_nova.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title     string
	User      *auth.Claims
	CartCount int
	Error     string
	Success   string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Cfg       *config.Config
	Feed      *catalog.Feed
	Mirror    *catalog.Mirror
	Carts     *cart.Sessions
	Blobs     *blob.Store
	Mailer    mail.Mailer
}
