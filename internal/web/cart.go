package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ameliecafe/storefront/internal/cart"
	"github.com/ameliecafe/storefront/internal/store"
)

// CartPage handles GET /sacola.
func (s *Server) CartPage(w http.ResponseWriter, r *http.Request) {
	var items []cart.Item
	var totalCents int64
	var count int

	if id := sessionID(r); id != "" {
		s.Carts.With(id, func(c *cart.Cart) {
			items = c.Items()
			totalCents = c.TotalPriceCents()
			count = c.TotalItemCount()
		})
	}

	s.Templates.Render(w, "sacola.html", &struct {
		PageData
		Items      []cart.Item
		TotalCents int64
	}{
		PageData:   PageData{Title: "A Sua Sacola", CartCount: count},
		Items:      items,
		TotalCents: totalCents,
	})
}

// CartAddSubmit handles POST /sacola/itens. The product is re-read from the
// store so the cart always carries the current name and price.
func (s *Server) CartAddSubmit(w http.ResponseWriter, r *http.Request) {
	productID := r.FormValue("product_id")
	if productID == "" {
		http.Redirect(w, r, "/produtos", http.StatusSeeOther)
		return
	}

	product, err := store.GetProduct(r.Context(), s.DB, productID)
	if err != nil {
		slog.Error("failed to get product for cart", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if product == nil {
		http.NotFound(w, r)
		return
	}

	id := s.ensureSession(w, r)
	s.Carts.With(id, func(c *cart.Cart) {
		c.Add(*product)
	})

	http.Redirect(w, r, "/sacola", http.StatusSeeOther)
}

// CartUpdateSubmit handles POST /sacola/itens/{id} with a quantity field.
// Quantity 0 removes the item. Negative input never reaches the cart.
func (s *Server) CartUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil || quantity < 0 {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}

	if id := sessionID(r); id != "" {
		s.Carts.With(id, func(c *cart.Cart) {
			if err := c.SetQuantity(productID, quantity); err != nil {
				slog.Warn("rejected cart update", "error", err)
			}
		})
	}

	http.Redirect(w, r, "/sacola", http.StatusSeeOther)
}

// CheckoutSubmit handles POST /checkout: the cart is serialized into the
// order message and the customer is sent to WhatsApp with it. The handoff is
// the redirect; nothing is written anywhere.
func (s *Server) CheckoutSubmit(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if id == "" {
		http.Redirect(w, r, "/sacola", http.StatusSeeOther)
		return
	}

	var link string
	var empty bool
	s.Carts.With(id, func(c *cart.Cart) {
		empty = c.Len() == 0
		link = c.CheckoutURL(s.Cfg.WhatsAppNumber)
	})

	if empty {
		http.Redirect(w, r, "/sacola", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, link, http.StatusSeeOther)
}
