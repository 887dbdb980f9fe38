package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"checkout-service/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InventoryRepository owns the product stock counter. Every mutation is a
// single conditional write; a read-then-write sequence is not allowed
// because it races under concurrent checkouts.
type InventoryRepository interface {
	// Reserve decrements stock by quantity only if enough is available and
	// returns the post-decrement value.
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (int, error)
	// Release is the compensating increment used to undo reservations.
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

// GormInventoryRepository implements InventoryRepository on the products
// table using conditional UPDATEs.
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &GormInventoryRepository{db: db}
}

// Reserve runs the guard and the decrement as one statement
// (UPDATE ... SET stock = stock - q WHERE id = ? AND stock >= q), so two
// concurrent reservations can never both succeed on the last unit.
func (r *GormInventoryRepository) Reserve(ctx context.Context, productID uuid.UUID, quantity int) (int, error) {
	var product models.Product
	res := r.db.WithContext(ctx).
		Model(&product).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// Zero rows means either the product is unknown or stock ran out;
		// one lookup tells the two apart.
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Product{}).
			Where("id = ?", productID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, ErrNotFound
		}
		return 0, ErrInsufficientStock
	}
	return product.Stock, nil
}

func (r *GormInventoryRepository) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
