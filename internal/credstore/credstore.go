// Package credstore manages provider API key records. Secrets are sealed
// with the secretbox codec before they reach storage; the plaintext key
// only exists in memory during creation and reveal.
package credstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vudara/aiconfig/internal/apperr"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/scope"
	"github.com/vudara/aiconfig/internal/secretbox"
	"gorm.io/gorm"
)

// Store provides CRUD over credentials scoped to platform, team, or user.
type Store struct {
	db    *gorm.DB
	codec *secretbox.Codec
}

// NewStore constructs a Store backed by GORM and the given secret codec.
func NewStore(conn *gorm.DB, codec *secretbox.Codec) *Store {
	return &Store{db: conn, codec: codec}
}

// ListActive returns the active credentials owned by the scope, newest first.
func (s *Store) ListActive(ctx context.Context, sc scope.Scope) ([]models.Credential, error) {
	var rows []models.Credential
	q := s.db.WithContext(ctx).Where("is_active = ?", true)
	if errFind := sc.Apply(q).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("credstore: list active: %w", errFind)
	}
	return rows, nil
}

// GetDefault returns the active credential for the provider and scope that
// is flagged default, falling back to the newest active match. Returns nil
// with no error when the scope has no matching credential.
func (s *Store) GetDefault(ctx context.Context, providerID uint64, sc scope.Scope) (*models.Credential, error) {
	var rows []models.Credential
	q := s.db.WithContext(ctx).
		Where("provider_id = ? AND is_active = ?", providerID, true)
	if errFind := sc.Apply(q).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("credstore: get default: %w", errFind)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	for i := range rows {
		if rows[i].IsDefault {
			return &rows[i], nil
		}
	}
	return &rows[0], nil
}

// CreateParams holds inputs for credential creation.
type CreateParams struct {
	ProviderID uint64
	Scope      scope.Scope
	KeyName    string
	Secret     string
	IsDefault  bool
	CreatedBy  string
}

// Create encrypts the secret and persists a new credential. Key rotation
// never updates a record in place; callers create a new one instead.
func (s *Store) Create(ctx context.Context, params CreateParams) (*models.Credential, error) {
	keyName := strings.TrimSpace(params.KeyName)
	if keyName == "" {
		return nil, fmt.Errorf("%w: key name is required", apperr.ErrValidation)
	}
	if strings.TrimSpace(params.Secret) == "" {
		return nil, fmt.Errorf("%w: secret is required", apperr.ErrValidation)
	}
	if errScope := params.Scope.Validate(); errScope != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, errScope)
	}

	var provider models.Provider
	if errFind := s.db.WithContext(ctx).First(&provider, params.ProviderID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: provider %d", apperr.ErrNotFound, params.ProviderID)
		}
		return nil, fmt.Errorf("credstore: lookup provider: %w", errFind)
	}

	encrypted, errEncrypt := s.codec.Encrypt(params.Secret)
	if errEncrypt != nil {
		return nil, fmt.Errorf("credstore: encrypt secret: %w", errEncrypt)
	}

	row := models.Credential{
		ProviderID:      provider.ID,
		ScopeType:       string(params.Scope.Kind()),
		ScopeID:         params.Scope.OwnerID(),
		KeyName:         keyName,
		EncryptedSecret: encrypted,
		IsActive:        true,
		IsDefault:       params.IsDefault,
		CreatedBy:       strings.TrimSpace(params.CreatedBy),
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.IsDefault {
			if errClear := clearDefaults(tx, provider.ID, params.Scope, 0); errClear != nil {
				return errClear
			}
		}
		return tx.Create(&row).Error
	})
	if errTx != nil {
		return nil, fmt.Errorf("credstore: create: %w", errTx)
	}
	return &row, nil
}

// SetDefault marks a credential as its scope's default, clearing any prior
// default for the same provider and scope in the same transaction.
func (s *Store) SetDefault(ctx context.Context, credentialID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Credential
		if errFind := tx.First(&row, credentialID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: credential %d", apperr.ErrNotFound, credentialID)
			}
			return fmt.Errorf("credstore: set default: %w", errFind)
		}

		sc, errScope := scopeOf(row.ScopeType, row.ScopeID)
		if errScope != nil {
			return errScope
		}
		if errClear := clearDefaults(tx, row.ProviderID, sc, row.ID); errClear != nil {
			return errClear
		}
		return tx.Model(&models.Credential{}).
			Where("id = ?", row.ID).
			Update("is_default", true).Error
	})
}

// clearDefaults unsets the default flag on every credential in the scope
// and provider except the one being promoted.
func clearDefaults(tx *gorm.DB, providerID uint64, sc scope.Scope, keepID uint64) error {
	q := tx.Model(&models.Credential{}).
		Where("provider_id = ? AND is_default = ?", providerID, true)
	q = sc.Apply(q)
	if keepID != 0 {
		q = q.Where("id <> ?", keepID)
	}
	return q.Update("is_default", false).Error
}

// scopeOf rebuilds a scope value from stored columns.
func scopeOf(scopeType, scopeID string) (scope.Scope, error) {
	switch scope.Kind(scopeType) {
	case scope.KindPlatform:
		return scope.Platform(), nil
	case scope.KindUser:
		return scope.ForUser(scopeID), nil
	case scope.KindTeam:
		return scope.ForTeam(scopeID), nil
	default:
		return scope.Scope{}, fmt.Errorf("credstore: unknown scope type %q", scopeType)
	}
}

// RecordUsage atomically increments the usage counter and stamps the last
// use time. The increment runs in SQL so concurrent calls never lose
// updates.
func (s *Store) RecordUsage(ctx context.Context, credentialID uint64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Credential{}).
		Where("id = ?", credentialID).
		Updates(map[string]any{
			"usage_count":  gorm.Expr("usage_count + ?", 1),
			"last_used_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("credstore: record usage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: credential %d", apperr.ErrNotFound, credentialID)
	}
	return nil
}

// Revealed is a credential with its secret decrypted.
type Revealed struct {
	models.Credential
	Secret string
}

// Reveal fetches a credential and decrypts its secret. Codec integrity
// failures propagate unchanged so callers can treat them as security
// incidents rather than missing credentials.
func (s *Store) Reveal(ctx context.Context, credentialID uint64) (*Revealed, error) {
	var row models.Credential
	if errFind := s.db.WithContext(ctx).First(&row, credentialID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: credential %d", apperr.ErrNotFound, credentialID)
		}
		return nil, fmt.Errorf("credstore: reveal: %w", errFind)
	}

	secret, errDecrypt := s.codec.Decrypt(row.EncryptedSecret)
	if errDecrypt != nil {
		return nil, errDecrypt
	}
	return &Revealed{Credential: row, Secret: secret}, nil
}

// Deactivate soft-deletes a credential by flipping its active flag.
func (s *Store) Deactivate(ctx context.Context, credentialID uint64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Credential{}).
		Where("id = ?", credentialID).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("credstore: deactivate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: credential %d", apperr.ErrNotFound, credentialID)
	}
	return nil
}
