package store

import (
	"errors"

	"github.com/diewo77/pos-backoffice/internal/models"
	"gorm.io/gorm"
)

var ErrSaleNotFound = errors.New("sale not found")

// SalesRepository is read-only: sales are created and deleted exclusively by
// the transaction coordinator in internal/sales.
type SalesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) *SalesRepository {
	return &SalesRepository{db: db}
}

func (r *SalesRepository) Get(id uint) (*models.Sale, error) {
	var s models.Sale
	if err := r.db.Preload("Items.Product").Preload("Customer").First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SalesRepository) List(limit, offset int) ([]models.Sale, int64, error) {
	var total int64
	if err := r.db.Model(&models.Sale{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sales []models.Sale
	if err := r.db.Preload("Items.Product").Preload("Customer").
		Order("id desc").Limit(limit).Offset(offset).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}
