package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is a committed electronic invoice. Immutable once created except for
// deletion, which cascades to its items. All monetary columns hold final
// values rounded to two decimals at persistence time.
type Sale struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Number     string          `gorm:"size:50;uniqueIndex" json:"number"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	User       User            `gorm:"foreignKey:UserID" json:"-"`
	CustomerID uint            `gorm:"index" json:"customer_id"`
	Customer   Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
	TaxTotal   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"tax_total"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total"`
	PaidWith   string          `gorm:"size:50;default:'cash'" json:"paid_with"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// SaleItem is one product line within a sale. Price and Tax are snapshots of
// the catalog values at sale time, so later product edits never change a
// persisted invoice.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Qty       decimal.Decimal `gorm:"type:decimal(12,3);default:1" json:"qty"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"price"`
	Tax       decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"subtotal"`
}
