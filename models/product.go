package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog record and the authoritative stock counter for the
// inventory ledger. Price is in minor currency units. Stock is only ever
// mutated through the inventory repository's conditional writes, so the
// stock >= 0 invariant holds under concurrent checkouts.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Category  string    `gorm:"index" json:"category"`
	Brand     string    `gorm:"index" json:"brand"`
	Price     int       `gorm:"not null;check:price >= 0" json:"price"`
	Stock     int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
