package models

import "time"

// Admin represents a platform administrator account for the admin API.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Login email.
	Password string `gorm:"type:text;not null"`             // Bcrypt password hash.
	Name     string `gorm:"type:text"`                      // Display name.

	Active bool `gorm:"not null;default:true"` // Whether the admin can sign in.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
