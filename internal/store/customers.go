// Package store holds the GORM-backed repositories consumed by the handlers
// and the sales service. Deletion guards live here so historical invoices can
// never lose their references.
package store

import (
	"errors"

	"github.com/diewo77/pos-backoffice/internal/models"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrCustomerInUse is returned when deleting a customer that sales still reference.
	ErrCustomerInUse = errors.New("customer referenced by sales")
)

type CustomersRepository struct {
	db *gorm.DB
}

func NewCustomersRepository(db *gorm.DB) *CustomersRepository {
	return &CustomersRepository{db: db}
}

func (r *CustomersRepository) List() ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.Order("name asc").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomersRepository) Get(id uint) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomersRepository) Create(c *models.Customer) error {
	return r.db.Create(c).Error
}

func (r *CustomersRepository) Update(c *models.Customer) error {
	return r.db.Save(c).Error
}

// Delete refuses to remove a customer that any sale references.
func (r *CustomersRepository) Delete(id uint) error {
	var count int64
	if err := r.db.Model(&models.Sale{}).Where("customer_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCustomerInUse
	}
	res := r.db.Delete(&models.Customer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
