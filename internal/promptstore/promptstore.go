// Package promptstore manages prompt template records scoped to platform,
// team, or user, tagged by feature type and lifecycle phase.
package promptstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vudara/aiconfig/internal/apperr"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/scope"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store provides CRUD over prompt templates.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store backed by GORM.
func NewStore(conn *gorm.DB) *Store { return &Store{db: conn} }

// ListForPhase returns the active templates matching the phase and scope,
// newest first.
func (s *Store) ListForPhase(ctx context.Context, phase models.Phase, sc scope.Scope) ([]models.PromptTemplate, error) {
	var rows []models.PromptTemplate
	q := s.db.WithContext(ctx).Where("phase = ? AND is_active = ?", phase, true)
	if errFind := sc.Apply(q).
		Order("created_at DESC, id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("promptstore: list for phase: %w", errFind)
	}
	return rows, nil
}

// GetDefault returns the platform-scoped default template for the feature
// type, optionally narrowed to a phase. Returns nil with no error when no
// default exists.
func (s *Store) GetDefault(ctx context.Context, featureType string, phase models.Phase) (*models.PromptTemplate, error) {
	q := s.db.WithContext(ctx).
		Where("feature_type = ? AND is_default = ? AND is_active = ?", strings.TrimSpace(featureType), true, true)
	q = scope.Platform().Apply(q)
	if phase != "" {
		q = q.Where("phase = ?", phase)
	}

	var row models.PromptTemplate
	if errFind := q.Order("created_at DESC, id DESC").First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("promptstore: get default: %w", errFind)
	}
	return &row, nil
}

// CreateParams holds inputs for template creation.
type CreateParams struct {
	Name               string
	Description        string
	FeatureType        string
	Phase              models.Phase
	SystemPrompt       string
	UserPromptTemplate string
	ModelConfig        datatypes.JSON
	Scope              scope.Scope
	IsDefault          bool
	CreatedBy          string
}

// Create validates and persists a new prompt template.
func (s *Store) Create(ctx context.Context, params CreateParams) (*models.PromptTemplate, error) {
	featureType := strings.TrimSpace(params.FeatureType)
	if featureType == "" {
		return nil, fmt.Errorf("%w: feature type is required", apperr.ErrValidation)
	}
	if strings.TrimSpace(params.SystemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is required", apperr.ErrValidation)
	}
	if params.Phase != "" && !models.ValidPhase(params.Phase) {
		return nil, fmt.Errorf("%w: unknown phase %q", apperr.ErrValidation, params.Phase)
	}
	if errScope := params.Scope.Validate(); errScope != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, errScope)
	}

	row := models.PromptTemplate{
		Name:               strings.TrimSpace(params.Name),
		Description:        strings.TrimSpace(params.Description),
		FeatureType:        featureType,
		Phase:              params.Phase,
		SystemPrompt:       params.SystemPrompt,
		UserPromptTemplate: params.UserPromptTemplate,
		ModelConfig:        params.ModelConfig,
		ScopeType:          string(params.Scope.Kind()),
		ScopeID:            params.Scope.OwnerID(),
		IsActive:           true,
		IsDefault:          params.IsDefault,
		CreatedBy:          strings.TrimSpace(params.CreatedBy),
	}
	if row.Name == "" {
		row.Name = featureType
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.IsDefault {
			if errClear := clearDefaults(tx, featureType, params.Scope, 0); errClear != nil {
				return errClear
			}
		}
		return tx.Create(&row).Error
	})
	if errTx != nil {
		return nil, fmt.Errorf("promptstore: create: %w", errTx)
	}
	return &row, nil
}

// SetDefault marks a template as its scope's default for its feature type,
// clearing any prior default in the same transaction.
func (s *Store) SetDefault(ctx context.Context, templateID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PromptTemplate
		if errFind := tx.First(&row, templateID).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: template %d", apperr.ErrNotFound, templateID)
			}
			return fmt.Errorf("promptstore: set default: %w", errFind)
		}

		sc, errScope := scopeOf(row.ScopeType, row.ScopeID)
		if errScope != nil {
			return errScope
		}
		if errClear := clearDefaults(tx, row.FeatureType, sc, row.ID); errClear != nil {
			return errClear
		}
		return tx.Model(&models.PromptTemplate{}).
			Where("id = ?", row.ID).
			Update("is_default", true).Error
	})
}

// clearDefaults unsets the default flag on every template in the scope and
// feature type except the one being promoted.
func clearDefaults(tx *gorm.DB, featureType string, sc scope.Scope, keepID uint64) error {
	q := tx.Model(&models.PromptTemplate{}).
		Where("feature_type = ? AND is_default = ?", featureType, true)
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
		return scope.Scope{}, fmt.Errorf("promptstore: unknown scope type %q", scopeType)
	}
}

// Deactivate soft-deletes a template by flipping its active flag.
func (s *Store) Deactivate(ctx context.Context, templateID uint64) error {
	res := s.db.WithContext(ctx).
		Model(&models.PromptTemplate{}).
		Where("id = ?", templateID).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("promptstore: deactivate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: template %d", apperr.ErrNotFound, templateID)
	}
	return nil
}
