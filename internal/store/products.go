package store

import (
	"errors"
	"strings"

	"github.com/diewo77/pos-backoffice/internal/docnum"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateCode   = errors.New("product code already exists")
	// ErrProductInUse is returned when deleting a product that sale items still reference.
	ErrProductInUse = errors.New("product referenced by sale items")
)

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{db: db}
}

// List returns products with their stock rows preloaded.
func (r *ProductsRepository) List() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Preload("StockItems").Order("id desc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) Get(id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.Preload("StockItems").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductsRepository) GetByCode(code string) (*models.Product, error) {
	var p models.Product
	if err := r.db.Where("code = ?", code).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts the product together with its initial stock row. When no
// code is submitted one is derived from the assigned id (P-00001 style),
// inside the same transaction so the pair is visible atomically.
func (r *ProductsRepository) Create(p *models.Product, initialQty decimal.Decimal) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	if p.Code != "" {
		if _, err := r.GetByCode(p.Code); err == nil {
			return ErrDuplicateCode
		} else if !errors.Is(err, ErrProductNotFound) {
			return err
		}
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			if isDuplicateErr(err) {
				return ErrDuplicateCode
			}
			return err
		}
		if p.Code == "" {
			p.Code = docnum.Product(p.ID)
			if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("code", p.Code).Error; err != nil {
				return err
			}
		}
		if initialQty.Sign() < 0 {
			initialQty = decimal.Zero
		}
		stock := models.Stock{ProductID: p.ID, Qty: initialQty, LocationID: 1}
		if err := tx.Create(&stock).Error; err != nil {
			return err
		}
		p.StockItems = []models.Stock{stock}
		return nil
	})
}

// Update saves catalog fields and, when qty is non-nil, overwrites the stock
// quantity the way the back-office edit form does.
func (r *ProductsRepository) Update(p *models.Product, qty *decimal.Decimal) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(p).Error; err != nil {
			if isDuplicateErr(err) {
				return ErrDuplicateCode
			}
			return err
		}
		if qty == nil {
			return nil
		}
		newQty := *qty
		if newQty.Sign() < 0 {
			newQty = decimal.Zero
		}
		var stock models.Stock
		err := tx.Where("product_id = ?", p.ID).First(&stock).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&models.Stock{ProductID: p.ID, Qty: newQty, LocationID: 1}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&stock).Update("qty", newQty).Error
	})
}

// Delete refuses to remove a product referenced by any sale item; otherwise
// the product and its stock rows go away together.
func (r *ProductsRepository) Delete(id uint) error {
	var count int64
	if err := r.db.Model(&models.SaleItem{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrProductInUse
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Stock{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

func isDuplicateErr(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate")
}
