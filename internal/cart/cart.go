// Package cart implements the per-session shopping cart: an insertion-ordered
// set of products with quantities, derived totals, and the serialized order
// message handed off to WhatsApp at checkout.
package cart

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ameliecafe/storefront/internal/model"
)

// greeting opens every exported order message.
const greeting = "Olá, Amélie Café! Gostaria de fazer o seguinte pedido:"

// Item is a product in the cart with its selected quantity. Quantity is
// always at least 1; an item whose quantity drops to zero is removed from
// the cart rather than kept at zero.
type Item struct {
	Product  model.Product
	Quantity int
}

// LineTotalCents is the item's price times its quantity.
func (it Item) LineTotalCents() int64 {
	return it.Product.PriceCents * int64(it.Quantity)
}

// Cart holds one browsing session's selection. Items keep insertion order
// for display; the index enforces at most one entry per product ID.
//
// A cart is not safe for concurrent use; the session registry serializes
// access per session.
type Cart struct {
	items []Item
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add puts one unit of the product in the cart. Adding a product already
// present increments its quantity, so N adds of the same product yield a
// single item with quantity N.
func (c *Cart) Add(p model.Product) {
	if i, ok := c.index[p.ID]; ok {
		c.items[i].Quantity++
		return
	}
	c.index[p.ID] = len(c.items)
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// SetQuantity replaces the quantity of the item with the given product ID.
// Zero removes the item entirely. An unknown ID is a no-op: SetQuantity
// never creates items. Negative quantities are a caller contract violation
// and are rejected.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("negative quantity %d", quantity)
	}

	i, ok := c.index[productID]
	if !ok {
		return nil
	}

	if quantity == 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		delete(c.index, productID)
		for j := i; j < len(c.items); j++ {
			c.index[c.items[j].Product.ID] = j
		}
		return nil
	}

	c.items[i].Quantity = quantity
	return nil
}

// Items returns the cart contents in insertion order. The slice is a copy.
func (c *Cart) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of distinct items.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalItemCount sums all quantities.
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// TotalPriceCents sums price times quantity over all items. Accumulation is
// exact in integer cents; rounding to a display string happens only in
// model.FormatPrice.
func (c *Cart) TotalPriceCents() int64 {
	var total int64
	for _, it := range c.items {
		total += it.LineTotalCents()
	}
	return total
}

// OrderMessage serializes the cart into the order text sent to WhatsApp:
// a greeting, one line per item in cart order, and a bolded total line.
// An empty cart still yields a well-formed message with a zero total.
func (c *Cart) OrderMessage() string {
	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")
	for _, it := range c.items {
		fmt.Fprintf(&b, "%dx %s - R$ %s\n", it.Quantity, it.Product.Name, model.FormatPrice(it.LineTotalCents()))
	}
	fmt.Fprintf(&b, "\n*Total: R$ %s*", model.FormatPrice(c.TotalPriceCents()))
	return b.String()
}

// CheckoutURL builds the WhatsApp deep link carrying the order message for
// the given phone number (international format, digits only).
func (c *Cart) CheckoutURL(number string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(c.OrderMessage()))
}
