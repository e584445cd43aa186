package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"localmart/internal/apperr"
	"localmart/internal/auth"
	"localmart/internal/cart"
	"localmart/internal/models"
	"localmart/internal/redisclient"
	"localmart/internal/store"
	"localmart/internal/util"

	"go.uber.org/zap"
)

// CartService wraps the cart reducer around per-customer state held in
// Redis so checkout can read a server-side snapshot.
type CartService struct {
	store  *store.Store
	redis  *redisclient.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store *store.Store, redis *redisclient.Client, ttl time.Duration) *CartService {
	return &CartService{
		store:  store,
		redis:  redis,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

func requireCustomer(actor *auth.Claims) error {
	if actor.Role != models.RoleCustomer {
		return apperr.Forbidden("only customers have carts")
	}
	return nil
}

// Get returns the caller's cart state
func (s *CartService) Get(ctx context.Context, actor *auth.Claims) (cart.State, error) {
	if err := requireCustomer(actor); err != nil {
		return cart.State{}, err
	}
	return s.redis.GetCart(ctx, actor.UserID)
}

// AddItem adds one unit of a product to the caller's cart. Name and
// price come from the catalog, not the client.
func (s *CartService) AddItem(ctx context.Context, actor *auth.Claims, productID int64) (cart.State, error) {
	if err := requireCustomer(actor); err != nil {
		return cart.State{}, err
	}

	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return cart.State{}, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil || !product.IsActive {
		return cart.State{}, apperr.NotFound("product not found")
	}

	state, err := s.redis.GetCart(ctx, actor.UserID)
	if err != nil {
		return cart.State{}, err
	}

	state = state.Add(cart.Item{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Image:     product.Image,
	})

	if err := s.redis.SaveCart(ctx, actor.UserID, state, s.ttl); err != nil {
		return cart.State{}, err
	}
	util.CartMutationsTotal.WithLabelValues("add").Inc()
	return state, nil
}

// RemoveItem deletes a line from the caller's cart
func (s *CartService) RemoveItem(ctx context.Context, actor *auth.Claims, productID int64) (cart.State, error) {
	if err := requireCustomer(actor); err != nil {
		return cart.State{}, err
	}

	state, err := s.redis.GetCart(ctx, actor.UserID)
	if err != nil {
		return cart.State{}, err
	}

	state, err = state.Remove(productID)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			return cart.State{}, apperr.NotFound("cart item not found")
		}
		return cart.State{}, err
	}

	if err := s.redis.SaveCart(ctx, actor.UserID, state, s.ttl); err != nil {
		return cart.State{}, err
	}
	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return state, nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line
func (s *CartService) SetQuantity(ctx context.Context, actor *auth.Claims, productID int64, quantity int) (cart.State, error) {
	if err := requireCustomer(actor); err != nil {
		return cart.State{}, err
	}

	state, err := s.redis.GetCart(ctx, actor.UserID)
	if err != nil {
		return cart.State{}, err
	}

	state, err = state.SetQuantity(productID, quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			return cart.State{}, apperr.NotFound("cart item not found")
		}
		return cart.State{}, err
	}

	if err := s.redis.SaveCart(ctx, actor.UserID, state, s.ttl); err != nil {
		return cart.State{}, err
	}
	util.CartMutationsTotal.WithLabelValues("set_quantity").Inc()
	return state, nil
}

// Clear empties the caller's cart
func (s *CartService) Clear(ctx context.Context, actor *auth.Claims) error {
	if err := requireCustomer(actor); err != nil {
		return err
	}
	if err := s.redis.DeleteCart(ctx, actor.UserID); err != nil {
		return err
	}
	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return nil
}

// ToggleOpen flips the cart's visibility flag
func (s *CartService) ToggleOpen(ctx context.Context, actor *auth.Claims) (cart.State, error) {
	if err := requireCustomer(actor); err != nil {
		return cart.State{}, err
	}

	state, err := s.redis.GetCart(ctx, actor.UserID)
	if err != nil {
		return cart.State{}, err
	}

	state = state.ToggleOpen()
	if err := s.redis.SaveCart(ctx, actor.UserID, state, s.ttl); err != nil {
		return cart.State{}, err
	}
	return state, nil
}
