package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order status state machine: the only legal transition is
// pending -> fulfilled, never reversed, never re-entered.
const (
	OrderStatusPending   = "pending"
	OrderStatusFulfilled = "fulfilled"
)

// ShippingAddress is embedded in the order row. The binding tags also make
// it usable directly in the checkout request payload.
type ShippingAddress struct {
	Street  string `gorm:"not null" json:"street" binding:"required"`
	City    string `gorm:"not null" json:"city" binding:"required"`
	State   string `gorm:"not null" json:"state" binding:"required"`
	PinCode string `gorm:"not null" json:"pin_code" binding:"required,len=6,numeric"`
	Phone   string `gorm:"not null" json:"phone" binding:"required,len=10,numeric"`
}

// PaymentInfo is opaque gateway metadata recorded with the order.
// Payment processing itself happens elsewhere.
type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentInfo     PaymentInfo     `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info"`
	TotalAmount     int             `gorm:"not null" json:"total_amount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	FulfilledAt     *time.Time      `json:"fulfilled_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// OrderItem is a frozen snapshot of the product at purchase time. Later
// catalog price or name changes must never alter an existing order.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int       `gorm:"not null" json:"price"`
}
