// Package inventory applies signed quantity deltas to stock rows. Callers
// pass the transaction handle of the surrounding sale so the read-modify-write
// commits or rolls back with the rest of the unit.
package inventory

import (
	"errors"

	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Deduct lowers the stock of productID by requested, clamping at zero.
// It returns the quantity actually removed and whether clamping occurred.
// The stock row is locked (SELECT ... FOR UPDATE) so two overlapping sales
// cannot both read the pre-deduction quantity. A missing stock row is
// tolerated: the sale proceeds with zero applied.
func Deduct(tx *gorm.DB, productID uint, requested decimal.Decimal) (applied decimal.Decimal, clamped bool, err error) {
	if requested.Sign() <= 0 {
		return decimal.Zero, false, nil
	}
	var stock models.Stock
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	newQty := stock.Qty.Sub(requested)
	if newQty.Sign() < 0 {
		newQty = decimal.Zero
		clamped = true
	}
	applied = stock.Qty.Sub(newQty)
	if err = tx.Model(&stock).Update("qty", newQty).Error; err != nil {
		return decimal.Zero, false, err
	}
	return applied, clamped, nil
}

// Restore adds qty back to the product's stock, the inverse of Deduct.
// Used when a sale is deleted with restocking enabled. A missing stock row is
// recreated so the quantity is not lost.
func Restore(tx *gorm.DB, productID uint, qty decimal.Decimal) error {
	if qty.Sign() <= 0 {
		return nil
	}
	var stock models.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.Stock{ProductID: productID, Qty: qty, LocationID: 1}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&stock).Update("qty", stock.Qty.Add(qty)).Error
}
