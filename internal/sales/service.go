// Package sales holds the sale/invoice transaction coordinator. It is the
// only component that touches more than one table per invocation: the invoice
// header, its line items, and the stock deductions commit or roll back as a
// single unit.
package sales

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/pos-backoffice/internal/docnum"
	"github.com/diewo77/pos-backoffice/internal/inventory"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/diewo77/pos-backoffice/internal/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCustomer: the customer reference is missing or unresolvable.
	ErrInvalidCustomer = errors.New("invalid customer")
	// ErrEmptySale: no valid line items survived parsing and filtering.
	ErrEmptySale = errors.New("sale has no valid line items")
	// ErrInvalidLine is only returned in strict mode, where malformed lines
	// are rejected instead of silently dropped.
	ErrInvalidLine = errors.New("invalid sale line")
	// ErrSaleNotFound for Delete on an unknown id.
	ErrSaleNotFound = errors.New("sale not found")
)

// Options tune the leniency policies the original system shipped with.
type Options struct {
	// StrictLines rejects unparseable quantities and unknown products with
	// ErrInvalidLine instead of omitting the line.
	StrictLines bool
	// RestockOnDelete returns each item's quantity to stock when a sale is
	// deleted. Enabled by default; the historical behavior (deletion leaves
	// stock untouched) is available by turning it off.
	RestockOnDelete bool
}

// DefaultOptions keeps the lenient line filtering and enables restocking.
func DefaultOptions() Options {
	return Options{StrictLines: false, RestockOnDelete: true}
}

// LineInput is one (product, quantity) pair as submitted, quantity still raw text.
type LineInput struct {
	ProductID string
	Quantity  string
}

// CreateSaleInput carries everything the coordinator needs for one invocation.
// The acting user is already authenticated by the request layer.
type CreateSaleInput struct {
	CustomerID string
	UserID     uint
	PaidWith   string
	Lines      []LineInput
}

type Service struct {
	db   *gorm.DB
	opts Options
}

func NewService(db *gorm.DB, opts Options) *Service {
	return &Service{db: db, opts: opts}
}

// pricedLine is a surviving line after validation, amounts still unrounded.
type pricedLine struct {
	product  models.Product
	qty      decimal.Decimal
	subtotal decimal.Decimal
	tax      decimal.Decimal
}

// Create runs the whole sale transaction: validate customer, parse and filter
// lines, price them with exact decimal accumulation, then persist header,
// items, and stock deductions atomically. The returned sale carries its
// assigned id, number, and rounded totals.
func (s *Service) Create(in CreateSaleInput) (*models.Sale, error) {
	customer, err := s.resolveCustomer(in.CustomerID)
	if err != nil {
		return nil, err
	}

	lines, err := s.parseLines(in.Lines)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptySale
	}

	subtotal, taxTotal := decimal.Zero, decimal.Zero
	for i := range lines {
		sub, tax := pricing.ComputeLine(lines[i].product.Price, lines[i].product.TaxRate, lines[i].qty)
		lines[i].subtotal = sub
		lines[i].tax = tax
		subtotal = subtotal.Add(sub)
		taxTotal = taxTotal.Add(tax)
	}
	total := subtotal.Add(taxTotal)

	paidWith := strings.TrimSpace(in.PaidWith)
	if paidWith == "" {
		paidWith = "cash"
	}

	// Rounding happens here, at the persistence boundary, and nowhere earlier.
	sale := models.Sale{
		UserID:     in.UserID,
		CustomerID: customer.ID,
		Subtotal:   subtotal.Round(2),
		TaxTotal:   taxTotal.Round(2),
		Total:      total.Round(2),
		PaidWith:   paidWith,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Provisional insert to obtain the permanent id, then the final
		// number derives from it before the unit commits.
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		sale.Number = docnum.Sale(sale.ID)
		if err := tx.Model(&models.Sale{}).Where("id = ?", sale.ID).Update("number", sale.Number).Error; err != nil {
			return err
		}
		items := make([]models.SaleItem, 0, len(lines))
		for _, ln := range lines {
			items = append(items, models.SaleItem{
				SaleID:    sale.ID,
				ProductID: ln.product.ID,
				Qty:       ln.qty,
				Price:     ln.product.Price.Round(2),
				Tax:       ln.product.TaxRate,
				Subtotal:  ln.subtotal.Round(2),
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		sale.Items = items
		for _, ln := range lines {
			if _, _, err := inventory.Deduct(tx, ln.product.ID, ln.qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("persist sale: %w", err)
	}
	return &sale, nil
}

// Delete removes a sale and its items in one transaction, restoring stock
// first when the option is enabled.
func (s *Service) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if s.opts.RestockOnDelete {
			for _, it := range sale.Items {
				if err := inventory.Restore(tx, it.ProductID, it.Qty); err != nil {
					return err
				}
			}
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Sale{}, sale.ID).Error
	})
}

func (s *Service) resolveCustomer(raw string) (*models.Customer, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidCustomer
	}
	var c models.Customer
	if err := s.db.First(&c, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCustomer
		}
		return nil, err
	}
	return &c, nil
}

// parseLines filters the raw pairs down to resolvable products with positive
// quantities. Lenient mode omits anything else; strict mode rejects it.
func (s *Service) parseLines(raw []LineInput) ([]pricedLine, error) {
	lines := make([]pricedLine, 0, len(raw))
	for _, ln := range raw {
		qty, err := decimal.NewFromString(strings.TrimSpace(ln.Quantity))
		if err != nil {
			if s.opts.StrictLines {
				return nil, fmt.Errorf("%w: quantity %q", ErrInvalidLine, ln.Quantity)
			}
			continue // unparseable quantity reads as zero: line omitted
		}
		if qty.Sign() <= 0 {
			if s.opts.StrictLines {
				return nil, fmt.Errorf("%w: quantity %s", ErrInvalidLine, qty)
			}
			continue
		}
		pid, err := strconv.ParseUint(strings.TrimSpace(ln.ProductID), 10, 64)
		if err != nil || pid == 0 {
			if s.opts.StrictLines {
				return nil, fmt.Errorf("%w: product %q", ErrInvalidLine, ln.ProductID)
			}
			continue
		}
		var product models.Product
		if err := s.db.First(&product, uint(pid)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if s.opts.StrictLines {
					return nil, fmt.Errorf("%w: unknown product %d", ErrInvalidLine, pid)
				}
				continue
			}
			return nil, err
		}
		lines = append(lines, pricedLine{product: product, qty: qty})
	}
	return lines, nil
}
