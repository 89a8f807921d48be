package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ameliecafe/storefront/internal/model"
)

// CreateProduct inserts a new product and returns it with its generated ID.
func CreateProduct(ctx context.Context, db *sql.DB, name, description string, priceCents int64, image string) (*model.Product, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price_cents, image) VALUES (?, ?, ?, ?, ?)`,
		id, name, description, priceCents, image,
	)
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	return GetProduct(ctx, db, id)
}

// GetProduct returns a product by ID, or nil if it does not exist.
func GetProduct(ctx context.Context, db *sql.DB, id string) (*model.Product, error) {
	p := &model.Product{}
	var description, image sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, description, price_cents, image, created_at, updated_at
		 FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &description, &p.PriceCents, &image, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	p.Description = description.String
	p.Image = image.String
	return p, nil
}

// ListProducts returns the full catalog in arrival (creation) order.
func ListProducts(ctx context.Context, db *sql.DB) ([]model.Product, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, description, price_cents, image, created_at, updated_at
		 FROM products ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		var description, image sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.PriceCents, &image, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.Description = description.String
		p.Image = image.String
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct replaces a product's fields.
func UpdateProduct(ctx context.Context, db *sql.DB, id, name, description string, priceCents int64, image string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price_cents = ?, image = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, description, priceCents, image, id,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return nil
}

// SetProductImage updates only the product's image URL.
func SetProductImage(ctx context.Context, db *sql.DB, id, image string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE products SET image = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, id,
	)
	if err != nil {
		return fmt.Errorf("setting product image: %w", err)
	}
	return nil
}

// DeleteProduct removes a product entirely.
func DeleteProduct(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}
