package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. TaxRate is a percentage (13 means 13%).
// Each product owns exactly one Stock row in the current design; the
// relation is 1:N so per-location stock can be added without a schema change.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Code      string          `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name      string          `gorm:"size:150;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Cost      decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"cost"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	ImagePath string          `gorm:"size:255" json:"image_path,omitempty"`
	Status    int16           `gorm:"default:1" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	StockItems []Stock `gorm:"foreignKey:ProductID" json:"stock_items,omitempty"`
}

// Stock holds the on-hand quantity for a product at a location.
// Qty is never negative; deductions clamp at zero (see internal/inventory).
type Stock struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Qty        decimal.Decimal `gorm:"type:decimal(12,3);default:0" json:"qty"`
	LocationID uint            `gorm:"default:1" json:"location_id"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
