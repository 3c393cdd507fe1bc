// Package resolver composes the template, credential, and catalog stores
// into ready-to-use AI invocation configurations. Resolution is a pure
// read path over store state: it may run concurrently without locking and
// mutates nothing.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/vudara/aiconfig/internal/apperr"
	"github.com/vudara/aiconfig/internal/catalog"
	"github.com/vudara/aiconfig/internal/credstore"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/promptstore"
	"github.com/vudara/aiconfig/internal/scope"

	log "github.com/sirupsen/logrus"
)

// Defaults applied during assembly when neither the model nor the template
// specifies a value.
const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

// preferredModelSubstrings mark high-capability models picked ahead of the
// provider's listing order.
var preferredModelSubstrings = []string{"gpt-4", "claude"}

// Request identifies one feature invocation to resolve.
type Request struct {
	FeatureType string
	UserID      string
	TeamID      string
	Phase       models.Phase
}

// InvocationConfig is everything a caller needs to perform one AI call.
type InvocationConfig struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	APIKey       string  `json:"api_key"`
	BaseURL      string  `json:"base_url,omitempty"`
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
	SystemPrompt string  `json:"system_prompt"`

	// Record identities for usage reporting.
	ProviderID   uint64  `json:"provider_id"`
	ModelID      uint64  `json:"model_id"`
	CredentialID uint64  `json:"credential_id"`
	TemplateID   *uint64 `json:"template_id,omitempty"`
}

// Resolver turns feature requests into invocation configurations.
type Resolver struct {
	templates   *promptstore.Store
	credentials *credstore.Store
	catalog     *catalog.Store
}

// New constructs a Resolver over the given stores.
func New(templates *promptstore.Store, credentials *credstore.Store, cat *catalog.Store) *Resolver {
	return &Resolver{templates: templates, credentials: credentials, catalog: cat}
}

// Resolve selects the template, credential, provider, and model for the
// request. A nil config with a nil error means no configuration is
// available for this requester; that is the expected outcome on an
// unconfigured platform, not an error. Secret integrity failures are the
// one hard error: they propagate and are logged as security incidents.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*InvocationConfig, error) {
	featureType := strings.TrimSpace(req.FeatureType)
	if featureType == "" {
		return nil, nil
	}

	template, errTemplate := r.templates.GetDefault(ctx, featureType, req.Phase)
	if errTemplate != nil {
		return nil, errTemplate
	}
	if template == nil {
		log.WithField("feature_type", featureType).Debug("resolve: no default template")
		return nil, nil
	}

	credential, errCredential := r.selectCredential(ctx, req)
	if errCredential != nil {
		return nil, errCredential
	}
	if credential == nil {
		log.WithFields(log.Fields{
			"feature_type": featureType,
			"user_id":      req.UserID,
			"team_id":      req.TeamID,
		}).Debug("resolve: no credential in any scope")
		return nil, nil
	}

	provider, errProvider := r.catalog.GetProvider(ctx, credential.ProviderID)
	if errProvider != nil {
		if errors.Is(errProvider, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, errProvider
	}
	if !provider.IsActive {
		return nil, nil
	}

	revealed, errReveal := r.credentials.Reveal(ctx, credential.ID)
	if errReveal != nil {
		log.WithError(errReveal).WithField("credential_id", credential.ID).
			Error("resolve: credential secret failed integrity check")
		return nil, errReveal
	}

	model := r.selectModel(ctx, provider.ID)
	if model == nil {
		return nil, nil
	}

	maxTokens := model.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	templateID := template.ID
	return &InvocationConfig{
		Provider:     provider.Name,
		Model:        model.Name,
		APIKey:       revealed.Secret,
		BaseURL:      provider.BaseURL,
		MaxTokens:    maxTokens,
		Temperature:  temperatureFor(template),
		SystemPrompt: template.SystemPrompt,
		ProviderID:   provider.ID,
		ModelID:      model.ID,
		CredentialID: credential.ID,
		TemplateID:   &templateID,
	}, nil
}

// selectCredential walks the precedence chain: team, then user, then
// platform. The first scope with any active credential wins; within a
// scope the flagged default wins, else the newest.
func (r *Resolver) selectCredential(ctx context.Context, req Request) (*models.Credential, error) {
	if teamID := strings.TrimSpace(req.TeamID); teamID != "" {
		credential, err := pickCredential(ctx, r.credentials, scope.ForTeam(teamID))
		if err != nil || credential != nil {
			return credential, err
		}
	}
	if userID := strings.TrimSpace(req.UserID); userID != "" {
		credential, err := pickCredential(ctx, r.credentials, scope.ForUser(userID))
		if err != nil || credential != nil {
			return credential, err
		}
	}
	return pickCredential(ctx, r.credentials, scope.Platform())
}

// pickCredential applies the default-else-newest rule within one scope.
func pickCredential(ctx context.Context, store *credstore.Store, sc scope.Scope) (*models.Credential, error) {
	rows, err := store.ListActive(ctx, sc)
	if err != nil {
		return nil, err
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

// selectModel picks the provider's preferred active model, falling back to
// listing order. Returns nil when the provider has no active models.
func (r *Resolver) selectModel(ctx context.Context, providerID uint64) *models.Model {
	rows, err := r.catalog.ListActiveModels(ctx, providerID)
	if err != nil || len(rows) == 0 {
		return nil
	}
	for i := range rows {
		for _, substr := range preferredModelSubstrings {
			if strings.Contains(rows[i].Name, substr) {
				return &rows[i]
			}
		}
	}
	return &rows[0]
}

// temperatureFor reads the template's temperature override, defaulting to
// 0.7.
func temperatureFor(template *models.PromptTemplate) float64 {
	if len(template.ModelConfig) == 0 {
		return defaultTemperature
	}
	var overrides map[string]any
	if errUnmarshal := json.Unmarshal(template.ModelConfig, &overrides); errUnmarshal != nil {
		return defaultTemperature
	}
	if raw, ok := overrides["temperature"]; ok {
		if value, okFloat := raw.(float64); okFloat && value >= 0 {
			return value
		}
	}
	return defaultTemperature
}
