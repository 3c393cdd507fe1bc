package models

import (
	"time"

	"gorm.io/datatypes"
)

// Phase identifies one of the seven app-development lifecycle phases.
type Phase string

// Lifecycle phases in order.
const (
	// PhaseIdeation covers idea clarification.
	PhaseIdeation Phase = "ideation"
	// PhasePlanning covers PRDs and user stories.
	PhasePlanning Phase = "planning"
	// PhaseDesign covers UX flows and wireframes.
	PhaseDesign Phase = "design"
	// PhaseMVP covers MVP scoping.
	PhaseMVP Phase = "mvp"
	// PhaseDevelopment covers build guidance.
	PhaseDevelopment Phase = "development"
	// PhaseTesting covers test case generation.
	PhaseTesting Phase = "testing"
	// PhaseDeployment covers launch preparation.
	PhaseDeployment Phase = "deployment"
)

// Phases lists all lifecycle phases in order.
var Phases = []Phase{
	PhaseIdeation,
	PhasePlanning,
	PhaseDesign,
	PhaseMVP,
	PhaseDevelopment,
	PhaseTesting,
	PhaseDeployment,
}

// ValidPhase reports whether p names a known lifecycle phase.
func ValidPhase(p Phase) bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// PromptTemplate stores a prompt configuration for one AI feature.
type PromptTemplate struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string `gorm:"type:text;not null"` // Display name.
	Description string `gorm:"type:text"`          // Optional description.

	FeatureType string `gorm:"type:varchar(64);not null;index"` // Feature slug, e.g. "idea_clarifier".
	Phase       Phase  `gorm:"type:varchar(32);index"`          // Optional lifecycle phase; empty matches any.

	SystemPrompt       string `gorm:"type:text;not null"` // System prompt sent to the model.
	UserPromptTemplate string `gorm:"type:text"`          // Optional user prompt with placeholder tokens.

	ModelConfig datatypes.JSON `gorm:"type:jsonb"` // Sampling overrides, e.g. {"temperature": 0.5}.

	ScopeType string `gorm:"type:varchar(16);not null;default:'platform';index:idx_prompt_templates_scope"` // Owning scope kind: platform, user, or team.
	ScopeID   string `gorm:"type:varchar(64);not null;default:'';index:idx_prompt_templates_scope"`         // Owning user or team ID; empty for platform.

	IsActive  bool `gorm:"not null;default:true"`  // Soft-delete flag.
	IsDefault bool `gorm:"not null;default:false"` // Preferred template within its scope and feature.

	CreatedBy string `gorm:"type:varchar(64);not null"` // Acting user identity at creation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
