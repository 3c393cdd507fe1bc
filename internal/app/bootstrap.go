package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/vudara/aiconfig/internal/auth"
	"github.com/vudara/aiconfig/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HasAdminInitialized reports whether any admin account exists.
func HasAdminInitialized(conn *gorm.DB) (bool, error) {
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return false, fmt.Errorf("count admins: %w", errCount)
	}
	return count > 0, nil
}

// EnsureInitialAdmin creates the first admin account when none exists.
// It is a no-op once any admin is present, so restarts never clobber
// password changes made through the API.
func EnsureInitialAdmin(conn *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	initialized, errCheck := HasAdminInitialized(conn)
	if errCheck != nil {
		return errCheck
	}
	if initialized {
		return nil
	}

	hash, errHash := auth.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash password: %w", errHash)
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Email:     email,
		Password:  hash,
		Name:      "Administrator",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	log.WithField("email", email).Info("created initial admin account")
	return nil
}
