package models

import "time"

// UsageLog records one AI invocation attempt. Rows are append-only and
// never mutated or deleted by this service.
type UsageLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID    string `gorm:"type:varchar(64);not null;index"` // Acting user identity.
	ProjectID string `gorm:"type:varchar(64)"`                // Optional project identity.
	SessionID string `gorm:"type:varchar(64)"`                // Optional chat session identity.

	ProviderID   uint64  `gorm:"not null;index"` // Provider used.
	ModelID      uint64  `gorm:"not null"`       // Model used.
	CredentialID uint64  `gorm:"not null;index"` // Credential used.
	TemplateID   *uint64 // Template used, if any.

	TokensUsed   int `gorm:"not null"`           // Tokens consumed by the call.
	Cost         int `gorm:"not null;default:0"` // Cost in cents.
	ResponseTime int `gorm:"not null;default:0"` // Latency in milliseconds.

	Success      bool   `gorm:"not null;default:true"` // Whether the call succeeded.
	ErrorMessage string `gorm:"type:text"`             // Failure detail, if any.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
