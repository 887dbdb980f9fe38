package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/errs"
	"checkout-service/models"
	"checkout-service/repository"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest allows quantity 0, which removes the line.
type UpdateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"gte=0"`
}

// CartService owns per-user carts. Stock checks here are advisory: they
// keep obviously unfillable lines out of the cart, but the authoritative
// check happens again at checkout through the inventory ledger.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	log      *zap.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, log *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, log: log}
}

// GetCart returns the user's cart, or an empty one when none exists yet.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, *errs.Error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

// AddItem puts a product line into the cart, creating the cart lazily.
// An existing line has its quantity replaced, not accumulated.
func (s *CartService) AddItem(ctx context.Context, userID string, productID uuid.UUID, quantity int) (*models.Cart, *errs.Error) {
	if quantity < 1 {
		return nil, errs.Validation("Quantity must be at least 1")
	}

	product, svcErr := s.resolveProduct(ctx, productID, quantity)
	if svcErr != nil {
		return nil, svcErr
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID.String() {
			cart.Items[i].Quantity = quantity
			cart.Items[i].Name = product.Name
			cart.Items[i].Price = product.Price
			found = true
			break
		}
	}
	if !found {
		if len(cart.Items) >= models.MaxCartLines {
			return nil, errs.Validation(fmt.Sprintf("Cart cannot hold more than %d distinct products", models.MaxCartLines))
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID.String(),
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}

	return s.commit(ctx, cart)
}

// UpdateItem changes the quantity of an existing line; quantity 0 removes
// the line.
func (s *CartService) UpdateItem(ctx context.Context, userID string, productID uuid.UUID, quantity int) (*models.Cart, *errs.Error) {
	if quantity < 0 {
		return nil, errs.Validation("Quantity cannot be negative")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if cart == nil {
		return nil, errs.NotFound("Cart not found", nil)
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID.String() {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errs.NotFound("Item not found in cart", nil)
	}

	if quantity == 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return s.commit(ctx, cart)
	}

	product, svcErr := s.resolveProduct(ctx, productID, quantity)
	if svcErr != nil {
		return nil, svcErr
	}
	cart.Items[idx].Quantity = quantity
	cart.Items[idx].Name = product.Name
	cart.Items[idx].Price = product.Price

	return s.commit(ctx, cart)
}

// RemoveItem drops a product line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*models.Cart, *errs.Error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if cart == nil {
		return nil, errs.NotFound("Cart not found", nil)
	}

	filtered := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID.String() {
			filtered = append(filtered, item)
		}
	}
	cart.Items = filtered

	return s.commit(ctx, cart)
}

// Clear empties the cart while leaving it in place.
func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, *errs.Error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if cart == nil {
		return nil, errs.NotFound("Cart not found", nil)
	}

	cart.Items = []models.CartItem{}
	return s.commit(ctx, cart)
}

// resolveProduct looks the product up and applies the advisory stock check.
func (s *CartService) resolveProduct(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, *errs.Error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Product not found", err)
		}
		return nil, errs.Internal(err)
	}
	if product.Stock < quantity {
		return nil, errs.InsufficientStock(
			fmt.Sprintf("Only %d items available in stock", product.Stock), nil)
	}
	return product, nil
}

// commit recomputes derived totals and persists the cart.
func (s *CartService) commit(ctx context.Context, cart *models.Cart) (*models.Cart, *errs.Error) {
	cart.Recalculate()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, errs.Internal(err)
	}
	return cart, nil
}
