// Command createadmin bootstraps (or resets the password of) the admin user.
//
//	go run ./cmd/createadmin -username admin -password secret
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/diewo77/pos-backoffice/internal/db"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()
	if *password == "" {
		log.Fatal("missing -password")
	}
	_ = godotenv.Load()
	conn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	var user models.User
	err = conn.Where("username = ?", *username).First(&user).Error
	switch {
	case err == nil:
		if err := conn.Model(&user).Update("password_hash", string(hash)).Error; err != nil {
			log.Fatalf("update admin: %v", err)
		}
		log.Printf("admin password updated for %q", *username)
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Username: *username, PasswordHash: string(hash), Role: models.RoleAdmin, Status: 1}
		if err := conn.Create(&user).Error; err != nil {
			log.Fatalf("create admin: %v", err)
		}
		log.Printf("admin user %q created (id=%d)", user.Username, user.ID)
	default:
		log.Fatalf("lookup admin: %v", err)
	}
}
