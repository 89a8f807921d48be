package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ameliecafe/storefront/internal/imaging"
	"github.com/ameliecafe/storefront/internal/model"
	"github.com/ameliecafe/storefront/internal/store"
)

// productForm holds the admin create/edit form fields and validation state.
type productForm struct {
	Name        string
	Description string
	Price       string
	Image       string
}

// parse validates the form, returning the price in cents or a user-facing
// error. Validation happens before any write: a failed form never touches
// the store.
func (f *productForm) parse() (int64, string) {
	if strings.TrimSpace(f.Name) == "" {
		return 0, "Informe o nome do produto."
	}
	if strings.TrimSpace(f.Description) == "" {
		return 0, "Informe a descrição do produto."
	}
	priceCents, err := model.ParsePrice(f.Price)
	if err != nil {
		return 0, "Preço inválido. Use o formato 42,50."
	}
	return priceCents, ""
}

func formFromRequest(r *http.Request) productForm {
	return productForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Image:       r.FormValue("image"),
	}
}

// AdminProductsPage handles GET /admin: the product management table, fed by
// the same catalog mirror the storefront uses.
func (s *Server) AdminProductsPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "admin_produtos.html", &struct {
		PageData
		Products []model.Product
		Loading  bool
	}{
		PageData: PageData{Title: "Gerenciar Produtos", User: claims},
		Products: s.Mirror.Products(),
		Loading:  s.Mirror.Loading(),
	})
}

// ProductNewPage handles GET /admin/products/new.
func (s *Server) ProductNewPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	s.Templates.Render(w, "admin_produto_form.html", &struct {
		PageData
		Form    productForm
		Product *model.Product
	}{
		PageData: PageData{Title: "Adicionar Produto", User: claims},
	})
}

// ProductCreateSubmit handles POST /admin/products.
func (s *Server) ProductCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	form := formFromRequest(r)

	priceCents, formErr := form.parse()
	if formErr != "" {
		s.Templates.Render(w, "admin_produto_form.html", &struct {
			PageData
			Form    productForm
			Product *model.Product
		}{
			PageData: PageData{Title: "Adicionar Produto", User: claims, Error: formErr},
			Form:     form,
		})
		return
	}

	product, err := store.CreateProduct(r.Context(), s.DB, form.Name, form.Description, priceCents, form.Image)
	if err != nil {
		slog.Error("failed to create product", "error", err)
		http.Error(w, "failed to create product", http.StatusInternalServerError)
		return
	}

	slog.Info("product created", "user", claims.Email, "product", product.Name)
	s.broadcast(r)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// ProductEditPage handles GET /admin/products/{id}.
func (s *Server) ProductEditPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
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

	s.Templates.Render(w, "admin_produto_form.html", &struct {
		PageData
		Form    productForm
		Product *model.Product
	}{
		PageData: PageData{Title: "Editar Produto", User: claims},
		Form: productForm{
			Name:        product.Name,
			Description: product.Description,
			Price:       model.FormatPrice(product.PriceCents),
			Image:       product.Image,
		},
		Product: product,
	})
}

// ProductUpdateSubmit handles POST /admin/products/{id}.
func (s *Server) ProductUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	product, err := store.GetProduct(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get product", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.NotFound(w, r)
		return
	}

	form := formFromRequest(r)
	priceCents, formErr := form.parse()
	if formErr != "" {
		s.Templates.Render(w, "admin_produto_form.html", &struct {
			PageData
			Form    productForm
			Product *model.Product
		}{
			PageData: PageData{Title: "Editar Produto", User: claims, Error: formErr},
			Form:     form,
			Product:  product,
		})
		return
	}

	if err := store.UpdateProduct(r.Context(), s.DB, id, form.Name, form.Description, priceCents, form.Image); err != nil {
		slog.Error("failed to update product", "error", err)
		http.Error(w, "failed to update product", http.StatusInternalServerError)
		return
	}

	slog.Info("product updated", "user", claims.Email, "product", form.Name)
	s.broadcast(r)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// ProductDeleteSubmit handles POST /admin/products/{id}/delete.
func (s *Server) ProductDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	if err := store.DeleteProduct(r.Context(), s.DB, id); err != nil {
		slog.Error("failed to delete product", "error", err)
		http.Error(w, "failed to delete product", http.StatusInternalServerError)
		return
	}

	slog.Info("product deleted", "user", claims.Email, "product", id)
	s.broadcast(r)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// ProductImageSubmit handles POST /admin/products/{id}/image: the photo is
// validated and normalized, stored as a blob with progress logging, and only
// then does the product's image reference change. A failed upload leaves the
// previous image untouched.
func (s *Server) ProductImageSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id := r.PathValue("id")

	product, err := store.GetProduct(r.Context(), s.DB, id)
	if err != nil {
		slog.Error("failed to get product", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	url, err := s.Blobs.Put(r.Context(), header.Filename, result.MIME,
		bytes.NewReader(result.Data), int64(len(result.Data)),
		func(f float64) {
			slog.Debug("image upload progress", "product", id, "fraction", fmt.Sprintf("%.2f", f))
		})
	if err != nil {
		slog.Error("failed to store image", "error", err)
		http.Error(w, "failed to store image", http.StatusInternalServerError)
		return
	}

	if err := store.SetProductImage(r.Context(), s.DB, id, url); err != nil {
		slog.Error("failed to save image reference", "error", err)
		http.Error(w, "failed to save image", http.StatusInternalServerError)
		return
	}

	slog.Info("product image uploaded", "user", claims.Email, "product", product.Name)
	s.broadcast(r)
	http.Redirect(w, r, fmt.Sprintf("/admin/products/%s", id), http.StatusSeeOther)
}

// broadcast publishes a fresh catalog snapshot after a mutation.
func (s *Server) broadcast(r *http.Request) {
	if err := s.Feed.Broadcast(r.Context()); err != nil {
		slog.Error("failed to broadcast catalog snapshot", "error", err)
	}
}
