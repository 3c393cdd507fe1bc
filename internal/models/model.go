package models

import "time"

// Model represents a single model offered by a provider.
type Model struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ProviderID uint64   `gorm:"not null;index"`        // Owning provider ID.
	Provider   Provider `gorm:"foreignKey:ProviderID"` // Owning provider record.

	Name        string `gorm:"type:varchar(128);not null"` // Provider-specific model slug.
	DisplayName string `gorm:"type:text;not null"`         // Human-readable name.

	MaxTokens         int  `gorm:"not null;default:4096"` // Context window limit.
	SupportsStreaming bool `gorm:"not null;default:true"` // Whether streaming responses are supported.
	CostPer1kTokens   int  `gorm:"not null;default:0"`    // Cost per 1k tokens in cents.

	IsActive bool `gorm:"not null;default:true"` // Soft-delete flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
