package service

import (
	"context"
	"fmt"
	"time"

	"localmart/internal/apperr"
	"localmart/internal/auth"
	"localmart/internal/geo"
	"localmart/internal/models"
	"localmart/internal/redisclient"
	"localmart/internal/store"
	"localmart/internal/util"

	"go.uber.org/zap"
)

// CatalogService handles shop and product management plus the nearby
// geo lookup
type CatalogService struct {
	store        *store.Store
	redis        *redisclient.Client
	radiusMeters float64
	logger       *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, redis *redisclient.Client, radiusMeters float64) *CatalogService {
	return &CatalogService{
		store:        store,
		redis:        redis,
		radiusMeters: radiusMeters,
		logger:       util.GetLogger(),
	}
}

// RegisterShopRequest holds the fields of a shop registration
type RegisterShopRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Category    string    `json:"category" binding:"required"`
	Street      string    `json:"street" binding:"required"`
	Area        string    `json:"area"`
	City        string    `json:"city"`
	Pincode     string    `json:"pincode"`
	Coordinates []float64 `json:"coordinates" binding:"required,len=2"` // [lng, lat]
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	OpensAt     string    `json:"opens_at"`
	ClosesAt    string    `json:"closes_at"`
}

// RegisterShop creates a shop owned by the calling shop owner and adds
// it to the geo index
func (s *CatalogService) RegisterShop(ctx context.Context, actor *auth.Claims, req *RegisterShopRequest) (*models.Shop, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.RegisterShop")
	defer span.End()

	if actor.Role != models.RoleShopOwner {
		return nil, apperr.Forbidden("only shop owners can register shops")
	}
	if !models.ValidCategory(req.Category) {
		return nil, apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "category", Message: "must be one of: grocery, electronics, clothing, food, pharmacy, other"})
	}

	shop := &models.Shop{
		OwnerID:      actor.UserID,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Street:       req.Street,
		Area:         req.Area,
		City:         req.City,
		Pincode:      req.Pincode,
		Longitude:    req.Coordinates[0],
		Latitude:     req.Coordinates[1],
		ContactPhone: req.Phone,
		ContactEmail: req.Email,
		OpensAt:      req.OpensAt,
		ClosesAt:     req.ClosesAt,
	}

	if err := s.store.CreateShop(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	if err := s.redis.IndexShop(ctx, shop.ID, shop.Latitude, shop.Longitude); err != nil {
		s.logger.Warn("Failed to index shop location",
			zap.Int64("shop_id", shop.ID), zap.Error(err))
	}

	util.ShopsRegisteredTotal.Inc()
	s.logger.Info("Shop registered",
		zap.Int64("shop_id", shop.ID), zap.Int64("owner_id", actor.UserID))
	return shop, nil
}

// FindNearby returns active shops within the configured radius of the
// point, closest first. The redis geo index is the fast path; a
// haversine scan over the database covers redis outages.
func (s *CatalogService) FindNearby(ctx context.Context, lat, lng *float64) ([]models.NearbyShop, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.FindNearby")
	defer span.End()

	if lat == nil || lng == nil {
		return nil, apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "lat", Message: "latitude and longitude are required"},
			apperr.FieldError{Field: "lng", Message: "latitude and longitude are required"})
	}

	start := time.Now()
	defer func() {
		util.NearbyQueryLatency.Observe(time.Since(start).Seconds())
	}()

	hits, err := s.redis.NearbyShops(ctx, *lat, *lng, s.radiusMeters)
	if err != nil {
		s.logger.Warn("Redis geo query failed, falling back to DB scan", zap.Error(err))
		util.NearbyFallbackTotal.Inc()
		return s.findNearbyDB(ctx, *lat, *lng)
	}

	shops := make([]models.NearbyShop, 0, len(hits))
	for _, hit := range hits {
		shop, err := s.store.GetShopByID(ctx, hit.ShopID)
		if err != nil {
			return nil, fmt.Errorf("failed to load shop: %w", err)
		}
		// Stale geo entries for deactivated or deleted shops are skipped.
		if shop == nil || !shop.IsActive {
			continue
		}
		shops = append(shops, models.NearbyShop{Shop: *shop, DistanceMeters: hit.DistanceMeters})
	}

	util.NearbyQueryResults.Observe(float64(len(shops)))
	return shops, nil
}

// findNearbyDB is the fallback path: haversine over all active shops.
func (s *CatalogService) findNearbyDB(ctx context.Context, lat, lng float64) ([]models.NearbyShop, error) {
	all, err := s.store.GetActiveShops(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shops: %w", err)
	}

	shops := make([]models.NearbyShop, 0)
	for _, shop := range all {
		d := geo.DistanceMeters(lat, lng, shop.Latitude, shop.Longitude)
		if d <= s.radiusMeters {
			shops = append(shops, models.NearbyShop{Shop: shop, DistanceMeters: d})
		}
	}

	sortNearby(shops)
	util.NearbyQueryResults.Observe(float64(len(shops)))
	return shops, nil
}

// sortNearby orders shops by ascending distance. Insertion sort: the
// result set is radius-bounded and small.
func sortNearby(shops []models.NearbyShop) {
	for i := 1; i < len(shops); i++ {
		for j := i; j > 0 && shops[j].DistanceMeters < shops[j-1].DistanceMeters; j-- {
			shops[j], shops[j-1] = shops[j-1], shops[j]
		}
	}
}

// ListShops retrieves all active shops, newest first
func (s *CatalogService) ListShops(ctx context.Context) ([]models.Shop, error) {
	return s.store.GetActiveShops(ctx)
}

// GetShop retrieves one shop
func (s *CatalogService) GetShop(ctx context.Context, shopID int64) (*models.Shop, error) {
	shop, err := s.store.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil {
		return nil, apperr.NotFound("shop not found")
	}
	return shop, nil
}

// UpdateShopRequest holds a partial shop update; nil fields keep their
// current value
type UpdateShopRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Street      *string    `json:"street"`
	Area        *string    `json:"area"`
	City        *string    `json:"city"`
	Pincode     *string    `json:"pincode"`
	Coordinates *[]float64 `json:"coordinates"` // [lng, lat]
	Phone       *string    `json:"phone"`
	Email       *string    `json:"email"`
	OpensAt     *string    `json:"opens_at"`
	ClosesAt    *string    `json:"closes_at"`
	IsActive    *bool      `json:"is_active"`
}

// UpdateShop applies a partial update for the owning shop owner and
// refreshes the geo index
func (s *CatalogService) UpdateShop(ctx context.Context, actor *auth.Claims, shopID int64, req *UpdateShopRequest) (*models.Shop, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.UpdateShop")
	defer span.End()

	if actor.Role != models.RoleShopOwner {
		return nil, apperr.Forbidden("only shop owners can update shops")
	}

	shop, err := s.store.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil {
		return nil, apperr.NotFound("shop not found")
	}
	if shop.OwnerID != actor.UserID {
		return nil, apperr.Forbidden("you can only update your own shop")
	}

	if req.Category != nil && !models.ValidCategory(*req.Category) {
		return nil, apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "category", Message: "must be one of: grocery, electronics, clothing, food, pharmacy, other"})
	}
	if req.Coordinates != nil && len(*req.Coordinates) != 2 {
		return nil, apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "coordinates", Message: "must be a [lng, lat] pair"})
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Description != nil {
		shop.Description = *req.Description
	}
	if req.Category != nil {
		shop.Category = *req.Category
	}
	if req.Street != nil {
		shop.Street = *req.Street
	}
	if req.Area != nil {
		shop.Area = *req.Area
	}
	if req.City != nil {
		shop.City = *req.City
	}
	if req.Pincode != nil {
		shop.Pincode = *req.Pincode
	}
	if req.Coordinates != nil {
		shop.Longitude = (*req.Coordinates)[0]
		shop.Latitude = (*req.Coordinates)[1]
	}
	if req.Phone != nil {
		shop.ContactPhone = *req.Phone
	}
	if req.Email != nil {
		shop.ContactEmail = *req.Email
	}
	if req.OpensAt != nil {
		shop.OpensAt = *req.OpensAt
	}
	if req.ClosesAt != nil {
		shop.ClosesAt = *req.ClosesAt
	}
	if req.IsActive != nil {
		shop.IsActive = *req.IsActive
	}

	if err := s.store.UpdateShop(ctx, shop); err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}

	if shop.IsActive {
		if err := s.redis.IndexShop(ctx, shop.ID, shop.Latitude, shop.Longitude); err != nil {
			s.logger.Warn("Failed to refresh shop geo index",
				zap.Int64("shop_id", shop.ID), zap.Error(err))
		}
	} else {
		if err := s.redis.RemoveShop(ctx, shop.ID); err != nil {
			s.logger.Warn("Failed to remove shop from geo index",
				zap.Int64("shop_id", shop.ID), zap.Error(err))
		}
	}

	return shop, nil
}

// ShopAnalytics is the owner-facing dashboard summary
type ShopAnalytics struct {
	ShopID         int64   `json:"shop_id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	IsActive       bool    `json:"is_active"`
	Rating         float64 `json:"rating"`
	TotalProducts  int     `json:"total_products"`
	TotalOrders    int64   `json:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	CustomerVisits int64   `json:"customer_visits"`
}

// Analytics returns a shop's dashboard counters for its owner
func (s *CatalogService) Analytics(ctx context.Context, actor *auth.Claims, shopID int64) (*ShopAnalytics, error) {
	if actor.Role != models.RoleShopOwner {
		return nil, apperr.Forbidden("only shop owners can view analytics")
	}

	shop, err := s.store.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil {
		return nil, apperr.NotFound("shop not found")
	}
	if shop.OwnerID != actor.UserID {
		return nil, apperr.Forbidden("you can only view your own shop analytics")
	}

	products, err := s.store.GetProductsByShop(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return &ShopAnalytics{
		ShopID:         shop.ID,
		Name:           shop.Name,
		Category:       shop.Category,
		IsActive:       shop.IsActive,
		Rating:         shop.Rating,
		TotalProducts:  len(products),
		TotalOrders:    shop.TotalOrders,
		TotalRevenue:   shop.TotalRevenue,
		CustomerVisits: shop.CustomerVisits,
	}, nil
}

// AddProductRequest holds the fields of a new product
type AddProductRequest struct {
	ShopID      int64   `json:"shop_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Category    string  `json:"category" binding:"required"`
	Stock       int     `json:"stock" binding:"gte=0"`
	Image       string  `json:"image"`
}

// AddProduct creates a product under a shop the caller owns
func (s *CatalogService) AddProduct(ctx context.Context, actor *auth.Claims, req *AddProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.AddProduct")
	defer span.End()

	if actor.Role != models.RoleShopOwner {
		return nil, apperr.Forbidden("only shop owners can add products")
	}
	if !models.ValidCategory(req.Category) {
		return nil, apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "category", Message: "must be one of: grocery, electronics, clothing, food, pharmacy, other"})
	}

	shop, err := s.store.GetShopByID(ctx, req.ShopID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil || shop.OwnerID != actor.UserID {
		return nil, apperr.Forbidden("you can only add products to your own shops")
	}

	product := &models.Product{
		ShopID:      req.ShopID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
		Image:       req.Image,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	util.ProductsCreatedTotal.Inc()
	return product, nil
}

// ListProducts retrieves active products matching the filter, newest
// first. No matches is an empty list, not an error.
func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return s.store.ListProducts(ctx, filter)
}

// ProductsByShop retrieves one shop's active products
func (s *CatalogService) ProductsByShop(ctx context.Context, shopID int64) ([]models.Product, error) {
	return s.store.GetProductsByShop(ctx, shopID)
}

// GetProduct retrieves one active product
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil || !product.IsActive {
		return nil, apperr.NotFound("product not found")
	}
	return product, nil
}

// UpdateProductRequest holds a partial product update
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Stock       *int     `json:"stock"`
	Image       *string  `json:"image"`
}

// UpdateProduct applies a partial update for the owner of the product's
// shop
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *auth.Claims, productID int64, req *UpdateProductRequest) (*models.Product, error) {
	product, _, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	var fields []apperr.FieldError
	if req.Price != nil && *req.Price < 0 {
		fields = append(fields, apperr.FieldError{Field: "price", Message: "must not be negative"})
	}
	if req.Stock != nil && *req.Stock < 0 {
		fields = append(fields, apperr.FieldError{Field: "stock", Message: "must not be negative"})
	}
	if req.Category != nil && !models.ValidCategory(*req.Category) {
		fields = append(fields, apperr.FieldError{Field: "category", Message: "must be one of: grocery, electronics, clothing, food, pharmacy, other"})
	}
	if len(fields) > 0 {
		return nil, apperr.InvalidArgument("validation failed", fields...)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Image != nil {
		product.Image = *req.Image
	}

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct soft-deletes a product for the owner of its shop
func (s *CatalogService) DeleteProduct(ctx context.Context, actor *auth.Claims, productID int64) error {
	product, _, err := s.ownedProduct(ctx, actor, productID)
	if err != nil {
		return err
	}

	if err := s.store.SoftDeleteProduct(ctx, product.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// ownedProduct loads a product and checks the caller owns its shop.
func (s *CatalogService) ownedProduct(ctx context.Context, actor *auth.Claims, productID int64) (*models.Product, *models.Shop, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, nil, apperr.NotFound("product not found")
	}

	shop, err := s.store.GetShopByID(ctx, product.ShopID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load shop: %w", err)
	}
	if shop == nil || shop.OwnerID != actor.UserID {
		return nil, nil, apperr.Forbidden("you can only manage your own products")
	}

	return product, shop, nil
}

// SyncShopsToRedis rebuilds the geo index from the database at startup.
func (s *CatalogService) SyncShopsToRedis(ctx context.Context) error {
	s.logger.Info("Starting shop geo sync to Redis")

	shops, err := s.store.GetActiveShops(ctx)
	if err != nil {
		return fmt.Errorf("failed to get shops: %w", err)
	}

	for _, shop := range shops {
		if err := s.redis.IndexShop(ctx, shop.ID, shop.Latitude, shop.Longitude); err != nil {
			s.logger.Error("Failed to index shop",
				zap.Int64("shop_id", shop.ID), zap.Error(err))
		}
	}

	s.logger.Info("Shop geo sync completed", zap.Int("count", len(shops)))
	return nil
}
