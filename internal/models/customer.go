package models

import "time"

// Customer entity. DUI and NIT are the national identity and tax numbers
// printed on electronic invoices.
type Customer struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:150;not null;index" json:"name"`
	DUI       string `gorm:"size:15" json:"dui"`
	NIT       string `gorm:"size:20" json:"nit"`
	Email     string `gorm:"size:100" json:"email"`
	Phone     string `gorm:"size:20" json:"phone"`
	Address   string `gorm:"size:255" json:"address"`
	Status    int16  `gorm:"default:1" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sales []Sale `gorm:"foreignKey:CustomerID" json:"-"`
}
