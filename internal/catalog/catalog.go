// Package catalog manages the platform-global AI provider and model
// records. Providers and models are administrator-owned; deactivation is a
// flag flip, never a physical delete.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vudara/aiconfig/internal/apperr"
	"github.com/vudara/aiconfig/internal/db"
	"github.com/vudara/aiconfig/internal/models"
	"gorm.io/gorm"
)

// Store provides CRUD over providers and models.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store backed by GORM.
func NewStore(conn *gorm.DB) *Store { return &Store{db: conn} }

// CreateProviderParams holds inputs for provider creation.
type CreateProviderParams struct {
	Name        string
	DisplayName string
	BaseURL     string
}

// CreateProvider inserts a new provider. The name is a unique slug and is
// immutable once created.
func (s *Store) CreateProvider(ctx context.Context, params CreateProviderParams) (*models.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(params.Name))
	displayName := strings.TrimSpace(params.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: provider name is required", apperr.ErrValidation)
	}
	if displayName == "" {
		return nil, fmt.Errorf("%w: provider display name is required", apperr.ErrValidation)
	}

	row := models.Provider{
		Name:        name,
		DisplayName: displayName,
		BaseURL:     strings.TrimSpace(params.BaseURL),
		IsActive:    true,
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		if db.IsUniqueViolation(errCreate) {
			return nil, fmt.Errorf("%w: provider %q already exists", apperr.ErrValidation, name)
		}
		return nil, fmt.Errorf("catalog: create provider: %w", errCreate)
	}
	return &row, nil
}

// GetProvider fetches a provider by ID.
func (s *Store) GetProvider(ctx context.Context, id uint64) (*models.Provider, error) {
	var row models.Provider
	if errFind := s.db.WithContext(ctx).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: provider %d", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("catalog: get provider: %w", errFind)
	}
	return &row, nil
}

// GetProviderByName fetches a provider by its slug.
func (s *Store) GetProviderByName(ctx context.Context, name string) (*models.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	var row models.Provider
	if errFind := s.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: provider %q", apperr.ErrNotFound, name)
		}
		return nil, fmt.Errorf("catalog: get provider by name: %w", errFind)
	}
	return &row, nil
}

// ListActiveProviders returns all active providers in creation order.
func (s *Store) ListActiveProviders(ctx context.Context) ([]models.Provider, error) {
	var rows []models.Provider
	if errFind := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("catalog: list providers: %w", errFind)
	}
	return rows, nil
}

// DeactivateProvider soft-deletes a provider by flipping its active flag.
func (s *Store) DeactivateProvider(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("catalog: deactivate provider: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: provider %d", apperr.ErrNotFound, id)
	}
	return nil
}

// CreateModelParams holds inputs for model creation.
type CreateModelParams struct {
	ProviderID        uint64
	Name              string
	DisplayName       string
	MaxTokens         int
	SupportsStreaming bool
	CostPer1kTokens   int
}

// CreateModel inserts a new model under an existing, active provider.
func (s *Store) CreateModel(ctx context.Context, params CreateModelParams) (*models.Model, error) {
	name := strings.TrimSpace(params.Name)
	displayName := strings.TrimSpace(params.DisplayName)
	if name == "" {
		return nil, fmt.Errorf("%w: model name is required", apperr.ErrValidation)
	}
	if displayName == "" {
		return nil, fmt.Errorf("%w: model display name is required", apperr.ErrValidation)
	}
	if params.MaxTokens < 0 || params.CostPer1kTokens < 0 {
		return nil, fmt.Errorf("%w: token limit and cost must be non-negative", apperr.ErrValidation)
	}

	provider, errProvider := s.GetProvider(ctx, params.ProviderID)
	if errProvider != nil {
		return nil, errProvider
	}
	if !provider.IsActive {
		return nil, fmt.Errorf("%w: provider %q is inactive", apperr.ErrValidation, provider.Name)
	}

	maxTokens := params.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	row := models.Model{
		ProviderID:        provider.ID,
		Name:              name,
		DisplayName:       displayName,
		MaxTokens:         maxTokens,
		SupportsStreaming: params.SupportsStreaming,
		CostPer1kTokens:   params.CostPer1kTokens,
		IsActive:          true,
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return nil, fmt.Errorf("catalog: create model: %w", errCreate)
	}
	return &row, nil
}

// ListActiveModels returns the active models for a provider in listing order.
func (s *Store) ListActiveModels(ctx context.Context, providerID uint64) ([]models.Model, error) {
	var rows []models.Model
	if errFind := s.db.WithContext(ctx).
		Where("provider_id = ? AND is_active = ?", providerID, true).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("catalog: list models: %w", errFind)
	}
	return rows, nil
}

// DeactivateModel soft-deletes a model by flipping its active flag.
func (s *Store) DeactivateModel(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).
		Model(&models.Model{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("catalog: deactivate model: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: model %d", apperr.ErrNotFound, id)
	}
	return nil
}
