package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/errs"
	"checkout-service/models"
	"checkout-service/repository"
)

type CreateProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	Price    int    `json:"price" binding:"gte=0"`
	Stock    int    `json:"stock" binding:"gte=0"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

// ProductService exposes the minimal catalog the ledger governs.
type ProductService struct {
	products  repository.ProductRepository
	inventory repository.InventoryRepository
	log       *zap.Logger
}

func NewProductService(products repository.ProductRepository, inventory repository.InventoryRepository, log *zap.Logger) *ProductService {
	return &ProductService{products: products, inventory: inventory, log: log}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, *errs.Error) {
	product := &models.Product{
		ID:       uuid.New(),
		Name:     req.Name,
		Category: req.Category,
		Brand:    req.Brand,
		Price:    req.Price,
		Stock:    req.Stock,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, errs.Internal(err)
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *errs.Error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Product not found", err)
		}
		return nil, errs.Internal(err)
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, limit int) (*ProductListResponse, *errs.Error) {
	products, total, err := s.products.FindAll(ctx, page, limit)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &ProductListResponse{
		Products: products,
		Meta:     buildMeta(page, limit, total),
	}, nil
}

// Restock adds quantity to a product's stock through the ledger's
// compensating increment, keeping all stock mutations on the same two
// conditional operations.
func (s *ProductService) Restock(ctx context.Context, id uuid.UUID, quantity int) (*models.Product, *errs.Error) {
	if quantity < 1 {
		return nil, errs.Validation("Quantity must be at least 1")
	}
	if err := s.inventory.Release(ctx, id, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Product not found", err)
		}
		return nil, errs.Internal(err)
	}
	return s.GetProduct(ctx, id)
}
