package store

import (
	"context"
	"database/sql"

	"localmart/internal/models"
)

// CreateShop inserts a new shop
func (s *Store) CreateShop(ctx context.Context, shop *models.Shop) error {
	query := `
		INSERT INTO shops (owner_id, name, description, category,
			street, area, city, pincode, latitude, longitude,
			contact_phone, contact_email, opens_at, closes_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)
		RETURNING id, is_active, rating, total_orders, total_revenue, customer_visits, created_at, updated_at`

	return s.db.GetContext(ctx, shop, query,
		shop.OwnerID, shop.Name, shop.Description, shop.Category,
		shop.Street, shop.Area, shop.City, shop.Pincode,
		shop.Latitude, shop.Longitude,
		shop.ContactPhone, shop.ContactEmail, shop.OpensAt, shop.ClosesAt)
}

// GetShopByID retrieves a shop by ID, nil if absent
func (s *Store) GetShopByID(ctx context.Context, id int64) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.GetContext(ctx, &shop, "SELECT * FROM shops WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetActiveShops retrieves all active shops, newest first
func (s *Store) GetActiveShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.db.SelectContext(ctx, &shops,
		"SELECT * FROM shops WHERE is_active = TRUE ORDER BY created_at DESC")
	return shops, err
}

// UpdateShop writes back the full shop row. Owner and counters are not
// part of the update; last write wins per row.
func (s *Store) UpdateShop(ctx context.Context, shop *models.Shop) error {
	query := `
		UPDATE shops
		SET name = $1, description = $2, category = $3,
			street = $4, area = $5, city = $6, pincode = $7,
			latitude = $8, longitude = $9,
			contact_phone = $10, contact_email = $11,
			opens_at = $12, closes_at = $13, is_active = $14,
			updated_at = NOW()
		WHERE id = $15
		RETURNING updated_at`

	return s.db.GetContext(ctx, &shop.UpdatedAt, query,
		shop.Name, shop.Description, shop.Category,
		shop.Street, shop.Area, shop.City, shop.Pincode,
		shop.Latitude, shop.Longitude,
		shop.ContactPhone, shop.ContactEmail,
		shop.OpensAt, shop.ClosesAt, shop.IsActive,
		shop.ID)
}

// IncrementShopOrderStats bumps the order and visit counters after an
// order is placed against the shop
func (s *Store) IncrementShopOrderStats(ctx context.Context, shopID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE shops SET total_orders = total_orders + 1, customer_visits = customer_visits + 1, updated_at = NOW() WHERE id = $1",
		shopID)
	return err
}

// AddShopRevenue adds a delivered order's amount to the shop's revenue
func (s *Store) AddShopRevenue(ctx context.Context, shopID int64, amount float64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE shops SET total_revenue = total_revenue + $1, updated_at = NOW() WHERE id = $2",
		amount, shopID)
	return err
}
