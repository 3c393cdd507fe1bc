package models

import "time"

// Provider represents an AI provider available on the platform.
type Provider struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:varchar(64);not null;uniqueIndex"` // Unique provider slug, e.g. "openai".
	DisplayName string `gorm:"type:text;not null"`                    // Human-readable name.
	BaseURL     string `gorm:"type:text"`                             // Optional API base URL.

	IsActive bool `gorm:"not null;default:true"` // Soft-delete flag.

	Models []Model `gorm:"foreignKey:ProviderID"` // Related models.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
