package db

import (
	"fmt"

	"github.com/vudara/aiconfig/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.Provider{},
		&models.Model{},
		&models.Credential{},
		&models.PromptTemplate{},
		&models.UsageLog{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errIndexes := ensureDefaultUniqueIndexes(conn); errIndexes != nil {
		return errIndexes
	}
	return nil
}

// ensureDefaultUniqueIndexes enforces at most one active default credential
// per scope and provider, and one active default template per scope and
// feature. Both dialects support partial unique indexes.
func ensureDefaultUniqueIndexes(conn *gorm.DB) error {
	if errCred := conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_credentials_default
		ON credentials (provider_id, scope_type, scope_id)
		WHERE is_default AND is_active
	`).Error; errCred != nil {
		return fmt.Errorf("db: create credential default index: %w", errCred)
	}

	if errTmpl := conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_prompt_templates_default
		ON prompt_templates (feature_type, scope_type, scope_id)
		WHERE is_default AND is_active
	`).Error; errTmpl != nil {
		return fmt.Errorf("db: create template default index: %w", errTmpl)
	}
	return nil
}
