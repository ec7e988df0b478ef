package models

import "time"

// Roles assignable to back-office users.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is a back-office operator. Referenced by Sale as the issuer.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:50;not null;default:'employee'" json:"role"`
	Status       int16  `gorm:"default:1" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
