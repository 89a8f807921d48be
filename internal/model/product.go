package model

import (
	"strings"
	"time"
)

// Product represents a sellable catalog item. The ID is assigned by the store
// on creation and is opaque to callers.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DescriptionParagraphs splits the description on line breaks. Each paragraph
// is rendered separately on the product detail page.
func (p Product) DescriptionParagraphs() []string {
	var paragraphs []string
	for _, line := range strings.Split(p.Description, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraphs = append(paragraphs, line)
	}
	return paragraphs
}
