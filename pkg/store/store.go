// Package store persists users, uploads and extracted receipts with gorm on
// postgres. The HTTP server and the batch tools share it.
package store

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"strukscan/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	ErrNoDSN      = errors.New("DB_DSN is not set")
	ErrUserExists = errors.New("user already exists")
	ErrBadLogin   = errors.New("invalid credentials")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// Open connects to postgres.
func Open(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, ErrNoDSN
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the tables. Roles go first so the users FK can
// be applied; each table migrates on its own so one permission error does not
// block the rest.
func Migrate(gdb *gorm.DB) {
	tables := []struct {
		name  string
		model any
	}{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"uploads", &models.Upload{}},
		{"receipts", &models.Receipt{}},
		{"receipt_items", &models.ReceiptItem{}},
	}
	for _, t := range tables {
		if err := gdb.AutoMigrate(t.model); err != nil {
			log.Printf("migration warning (%s): %v", t.name, err)
		}
	}
}

// Seed makes sure the master roles and the admin account exist.
func Seed(gdb *gorm.DB, adminPassword string) error {
	for _, r := range []models.Role{
		{Name: models.RoleAdministrator, Description: "full access"},
		{Name: models.RoleUser, Description: "regular user"},
	} {
		if _, err := EnsureRole(gdb, r.Name, r.Description); err != nil {
			return err
		}
	}
	var count int64
	gdb.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}
	if _, err := CreateUser(gdb, "admin", adminPassword, models.RoleAdministrator); err != nil && !errors.Is(err, ErrUserExists) {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Println("Seeded admin user: username=admin")
	return nil
}

// EnsureRole returns the named role, creating it when missing.
func EnsureRole(gdb *gorm.DB, name, description string) (models.Role, error) {
	role := models.Role{Name: name, Description: description}
	if err := gdb.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
		return models.Role{}, fmt.Errorf("ensure role %s: %w", name, err)
	}
	return role, nil
}

// IsUniqueConstraintError reports a duplicate key violation.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
