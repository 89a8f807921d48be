package web

import (
	"log/slog"
	"net/http"

	"github.com/ameliecafe/storefront/internal/model"
	"github.com/ameliecafe/storefront/internal/store"
)

// HomePage handles GET /.
func (s *Server) HomePage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "home.html", &PageData{
		Title:     "Amélie Café",
		CartCount: s.cartCount(r),
	})
}

// AboutPage handles GET /sobre.
func (s *Server) AboutPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "sobre.html", &PageData{
		Title:     "Sobre nós",
		CartCount: s.cartCount(r),
	})
}

// ProductsPage handles GET /produtos. Products come from the catalog mirror,
// so the page reflects the most recent snapshot without touching the store.
func (s *Server) ProductsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "produtos.html", &struct {
		PageData
		Products []model.Product
		Loading  bool
	}{
		PageData: PageData{Title: "A Nossa Boutique", CartCount: s.cartCount(r)},
		Products: s.Mirror.Products(),
		Loading:  s.Mirror.Loading(),
	})
}

// ProductDetailPage handles GET /produtos/{id}.
func (s *Server) ProductDetailPage(w http.ResponseWriter, r *http.Request) {
	product, err := store.GetProduct(r.Context(), s.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get product", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.NotFound(w, r)
		return
	}

	s.Templates.Render(w, "produto.html", &struct {
		PageData
		Product *model.Product
	}{
		PageData: PageData{Title: product.Name, CartCount: s.cartCount(r)},
		Product:  product,
	})
}

// LocationsPage handles GET /unidades. Locations are static config data.
func (s *Server) LocationsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "unidades.html", &struct {
		PageData
		Locations []model.Location
	}{
		PageData:  PageData{Title: "Onde nos encontrar", CartCount: s.cartCount(r)},
		Locations: s.Cfg.Locations,
	})
}
