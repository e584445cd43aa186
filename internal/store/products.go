package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"localmart/internal/models"
)

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (shop_id, name, description, price, category, stock, image, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING id, is_active, created_at, updated_at`

	return s.db.GetContext(ctx, product, query,
		product.ShopID, product.Name, product.Description, product.Price,
		product.Category, product.Stock, product.Image)
}

// GetProductByID retrieves a product by ID, nil if absent
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByShop retrieves a shop's active products, newest first
func (s *Store) GetProductsByShop(ctx context.Context, shopID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE shop_id = $1 AND is_active = TRUE ORDER BY created_at DESC",
		shopID)
	return products, err
}

// ListProducts retrieves active products matching every filter predicate,
// newest first. Search matches name or description case-insensitively.
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	conds := []string{"is_active = TRUE"}
	args := []interface{}{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conds = append(conds, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conds = append(conds, fmt.Sprintf("price <= $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf(
		"SELECT * FROM products WHERE %s ORDER BY created_at DESC",
		strings.Join(conds, " AND "))

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProduct writes back the full product row
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4,
			stock = $5, image = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	return s.db.GetContext(ctx, &product.UpdatedAt, query,
		product.Name, product.Description, product.Price, product.Category,
		product.Stock, product.Image, product.IsActive, product.ID)
}

// SoftDeleteProduct marks a product inactive instead of removing the row
func (s *Store) SoftDeleteProduct(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
	return err
}
