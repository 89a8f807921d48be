package api

import (
	"bytes"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ameliecafe/storefront/internal/blob"
	"github.com/ameliecafe/storefront/internal/catalog"
	"github.com/ameliecafe/storefront/internal/imaging"
	"github.com/ameliecafe/storefront/internal/model"
	"github.com/ameliecafe/storefront/internal/store"
)

const maxImageUpload = 10 << 20

// ProductsHandler handles product endpoints.
type ProductsHandler struct {
	DB    *sql.DB
	Feed  *catalog.Feed
	Blobs *blob.Store
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       model.FormatPrice(p.PriceCents),
		Image:       p.Image,
		CreatedAt:   p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *ProductsHandler) broadcast(r *http.Request) {
	if h.Feed == nil {
		return
	}
	if err := h.Feed.Broadcast(r.Context()); err != nil {
		slog.Error("failed to broadcast catalog snapshot", "error", err)
	}
}

// List handles GET /api/products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Get handles GET /api/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := store.GetProduct(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if product == nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}
	jsonResponse(w, http.StatusOK, toProductResponse(*product))
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	cents, err := model.ParsePrice(req.Price)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid price")
		return
	}

	product, err := store.CreateProduct(r.Context(), h.DB, req.Name, req.Description, cents, "")
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.broadcast(r)
	slog.Info("product created via api", "id", product.ID, "name", product.Name)
	jsonResponse(w, http.StatusCreated, toProductResponse(*product))
}

// Update handles PUT /api/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	cents, err := model.ParsePrice(req.Price)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid price")
		return
	}

	if err := store.UpdateProduct(r.Context(), h.DB, id, req.Name, req.Description, cents, existing.Image); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	updated, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	h.broadcast(r)
	jsonResponse(w, http.StatusOK, toProductResponse(*updated))
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	if err := store.DeleteProduct(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	if existing.Image != "" {
		if key, ok := strings.CutPrefix(existing.Image, blob.URLPrefix); ok {
			if err := h.Blobs.Delete(r.Context(), key); err != nil {
				slog.Error("failed to delete product image", "key", key, "error", err)
			}
		}
	}

	h.broadcast(r)
	slog.Info("product deleted via api", "id", id)
	jsonResponse(w, http.StatusNoContent, nil)
}

// UploadImage handles PUT /api/products/{id}/image. The request body is the
// raw image; it is re-encoded and downscaled before storage.
func (h *ProductsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := store.GetProduct(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImageUpload)
	result, err := imaging.Process(body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	url, err := h.Blobs.Put(r.Context(), id+".jpg", result.MIME, bytes.NewReader(result.Data), int64(len(result.Data)), nil)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	if err := store.SetProductImage(r.Context(), h.DB, id, url); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	if existing.Image != "" && existing.Image != url {
		if key, ok := strings.CutPrefix(existing.Image, blob.URLPrefix); ok {
			if err := h.Blobs.Delete(r.Context(), key); err != nil {
				slog.Error("failed to delete old product image", "key", key, "error", err)
			}
		}
	}

	h.broadcast(r)
	jsonResponse(w, http.StatusOK, map[string]string{"image": url})
}
