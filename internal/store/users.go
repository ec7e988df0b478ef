package store

import (
	"errors"

	"github.com/diewo77/pos-backoffice/internal/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UsersRepository supplies issuing identities. The core never mutates users;
// creation happens only through cmd/createadmin and the signup flow.
type UsersRepository struct {
	db *gorm.DB
}

func NewUsersRepository(db *gorm.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

func (r *UsersRepository) Get(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepository) GetByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

// Exists backs the auth session verifier.
func (r *UsersRepository) Exists(id uint) bool {
	var count int64
	if err := r.db.Model(&models.User{}).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
