package store

import (
	"errors"
	"fmt"
	"strings"

	"strukscan/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLen is the basic password policy.
const MinPasswordLen = 6

// CreateUser hashes password and stores a user with the given role.
func CreateUser(gdb *gorm.DB, username, password, role string) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, fmt.Errorf("username required")
	}
	if len(password) < MinPasswordLen {
		return models.User{}, fmt.Errorf("password too short (min %d)", MinPasswordLen)
	}
	// pre-check existing (optimistic)
	var existing models.User
	if err := gdb.Where("username = ?", username).First(&existing).Error; err == nil {
		return existing, ErrUserExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	r, err := EnsureRole(gdb, role, "")
	if err != nil {
		return models.User{}, err
	}
	rid := r.ID
	user := models.User{Username: username, HashedPassword: hashed, RoleID: &rid, Role: r}
	if err := gdb.Omit("Role").Create(&user).Error; err != nil {
		if IsUniqueConstraintError(err) { // race after the initial check
			return models.User{}, ErrUserExists
		}
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks the password and returns the user with its role.
func Authenticate(gdb *gorm.DB, username, password string) (models.User, error) {
	var user models.User
	if err := gdb.Preload("Role").Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return models.User{}, ErrBadLogin
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, ErrBadLogin
	}
	return user, nil
}

// UserByName loads a user and its role.
func UserByName(gdb *gorm.DB, username string) (models.User, error) {
	var user models.User
	err := gdb.Preload("Role").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, ErrNotFound
	}
	return user, err
}

// SetPassword replaces the stored hash for username.
func SetPassword(gdb *gorm.DB, username, password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password too short (min %d)", MinPasswordLen)
	}
	user, err := UserByName(gdb, username)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt: %w", err)
	}
	return gdb.Model(&user).Update("hashed_password", hash).Error
}
