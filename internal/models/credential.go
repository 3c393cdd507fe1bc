package models

import "time"

// Credential stores an encrypted provider API key owned by a scope.
type Credential struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ProviderID uint64   `gorm:"not null;index"`        // Related provider ID.
	Provider   Provider `gorm:"foreignKey:ProviderID"` // Related provider record.

	ScopeType string `gorm:"type:varchar(16);not null;default:'platform';index:idx_credentials_scope"` // Owning scope kind: platform, user, or team.
	ScopeID   string `gorm:"type:varchar(64);not null;default:'';index:idx_credentials_scope"`         // Owning user or team ID; empty for platform.

	KeyName         string `gorm:"type:text;not null"` // Display label.
	EncryptedSecret string `gorm:"type:text;not null"` // Ciphertext envelope; the plaintext key is never stored.

	IsActive  bool `gorm:"not null;default:true"`  // Soft-delete flag.
	IsDefault bool `gorm:"not null;default:false"` // Preferred key within its scope and provider.

	UsageCount uint64     `gorm:"not null;default:0"` // Successful invocation count.
	LastUsedAt *time.Time // Last successful use, nil until first use.

	CreatedBy string `gorm:"type:varchar(64);not null"` // Acting user identity at creation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
