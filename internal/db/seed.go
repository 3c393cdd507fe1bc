package db

import (
	"errors"
	"fmt"

	"github.com/vudara/aiconfig/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// seedCreatedBy identifies the system actor on seeded records.
const seedCreatedBy = "system"

// Seed populates the default provider catalog and platform prompt
// templates. It is idempotent: existing rows are left alone.
func Seed(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errProviders := seedProviders(conn); errProviders != nil {
		return errProviders
	}
	if errTemplates := seedTemplates(conn); errTemplates != nil {
		return errTemplates
	}
	return nil
}

// seedModel describes one model to seed under a provider.
type seedModel struct {
	name            string
	displayName     string
	maxTokens       int
	costPer1kTokens int
}

// seedProvider describes one provider with its models.
type seedProvider struct {
	name        string
	displayName string
	baseURL     string
	models      []seedModel
}

var defaultProviders = []seedProvider{
	{
		name:        "openai",
		displayName: "OpenAI",
		baseURL:     "https://api.openai.com/v1",
		models: []seedModel{
			{name: "gpt-4", displayName: "GPT-4", maxTokens: 8192, costPer1kTokens: 3},
			{name: "gpt-4-turbo", displayName: "GPT-4 Turbo", maxTokens: 128000, costPer1kTokens: 1},
			{name: "gpt-3.5-turbo", displayName: "GPT-3.5 Turbo", maxTokens: 16384, costPer1kTokens: 1},
		},
	},
	{
		name:        "anthropic",
		displayName: "Anthropic",
		baseURL:     "https://api.anthropic.com/v1",
		models: []seedModel{
			{name: "claude-3-opus", displayName: "Claude 3 Opus", maxTokens: 200000, costPer1kTokens: 15},
			{name: "claude-3-sonnet", displayName: "Claude 3 Sonnet", maxTokens: 200000, costPer1kTokens: 3},
			{name: "claude-3-haiku", displayName: "Claude 3 Haiku", maxTokens: 200000, costPer1kTokens: 1},
		},
	},
	{
		name:        "google",
		displayName: "Google AI",
		baseURL:     "https://generativelanguage.googleapis.com/v1",
		models: []seedModel{
			{name: "gemini-pro", displayName: "Gemini Pro", maxTokens: 32768, costPer1kTokens: 1},
		},
	},
}

// seedProviders inserts missing providers and their models.
func seedProviders(conn *gorm.DB) error {
	for _, entry := range defaultProviders {
		var provider models.Provider
		errFind := conn.Where("name = ?", entry.name).First(&provider).Error
		if errFind == nil {
			continue
		}
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return fmt.Errorf("db: seed provider %s: %w", entry.name, errFind)
		}

		provider = models.Provider{
			Name:        entry.name,
			DisplayName: entry.displayName,
			BaseURL:     entry.baseURL,
			IsActive:    true,
		}
		if errCreate := conn.Create(&provider).Error; errCreate != nil {
			return fmt.Errorf("db: seed provider %s: %w", entry.name, errCreate)
		}

		for _, m := range entry.models {
			row := models.Model{
				ProviderID:        provider.ID,
				Name:              m.name,
				DisplayName:       m.displayName,
				MaxTokens:         m.maxTokens,
				SupportsStreaming: true,
				CostPer1kTokens:   m.costPer1kTokens,
				IsActive:          true,
			}
			if errCreate := conn.Create(&row).Error; errCreate != nil {
				return fmt.Errorf("db: seed model %s/%s: %w", entry.name, m.name, errCreate)
			}
		}
	}
	return nil
}

// seedTemplate describes one platform-default prompt template.
type seedTemplate struct {
	name               string
	description        string
	phase              models.Phase
	featureType        string
	systemPrompt       string
	userPromptTemplate string
	temperature        float64
	maxTokens          int
}

var defaultTemplates = []seedTemplate{
	{
		name:        "AI Idea Clarifier",
		description: "Helps users clarify and refine their app ideas",
		phase:       models.PhaseIdeation,
		featureType: "idea_clarifier",
		systemPrompt: `You are an expert product strategist and AI mentor helping users clarify and refine their app ideas. Your role is to ask probing questions that help users:

1. Articulate their core problem and solution
2. Define their target audience clearly
3. Identify the unique value proposition
4. Consider market viability and competition
5. Refine the scope to be achievable

Be encouraging, insightful, and practical. Ask one thoughtful question at a time and build on their responses. Help them think through potential challenges and opportunities.`,
		userPromptTemplate: "User's app idea: {userInput}\n\nPlease help me clarify and refine this idea by asking insightful questions.",
		temperature:        0.7,
		maxTokens:          1000,
	},
	{
		name:        "PRD Generator",
		description: "Generates Product Requirements Documents",
		phase:       models.PhasePlanning,
		featureType: "prd_generator",
		systemPrompt: `You are an expert product manager who creates comprehensive Product Requirements Documents (PRDs). Based on the user's app idea and requirements, generate a structured PRD that includes:

1. Executive Summary
2. Problem Statement
3. Solution Overview
4. Target Users & Personas
5. Core Features & Requirements
6. Success Metrics
7. Technical Considerations
8. Timeline & Milestones

Make the PRD clear, actionable, and well-organized. Use professional language while keeping it accessible.`,
		userPromptTemplate: "App concept: {appConcept}\nTarget audience: {targetAudience}\nCore features: {coreFeatures}\n\nPlease generate a comprehensive PRD for this app.",
		temperature:        0.5,
		maxTokens:          2000,
	},
	{
		name:        "User Story Generator",
		description: "Creates user stories from features",
		phase:       models.PhasePlanning,
		featureType: "user_stories",
		systemPrompt: `You are an expert agile coach who creates clear, actionable user stories. Transform high-level features into well-structured user stories using the format:

"As a [user type], I want [functionality] so that [benefit/value]."

Include acceptance criteria for each story. Prioritize stories by importance and complexity. Break down complex features into smaller, manageable stories.`,
		userPromptTemplate: "Features to convert: {features}\nTarget users: {users}\n\nPlease create detailed user stories with acceptance criteria.",
		temperature:        0.6,
		maxTokens:          1500,
	},
	{
		name:        "UX Flow Designer",
		description: "Helps design user experience flows",
		phase:       models.PhaseDesign,
		featureType: "ux_flow",
		systemPrompt: `You are a UX design expert who helps create intuitive user experience flows. Based on user stories and app requirements, design step-by-step user flows that are:

1. Intuitive and user-friendly
2. Efficient and goal-oriented
3. Accessible and inclusive
4. Consistent with platform conventions

Describe each step clearly and suggest UI elements, interactions, and transitions.`,
		userPromptTemplate: "User story: {userStory}\nApp type: {appType}\n\nPlease design a detailed UX flow for this user story.",
		temperature:        0.7,
		maxTokens:          1200,
	},
	{
		name:        "MVP Scope Finalizer",
		description: "Helps define MVP scope and priorities",
		phase:       models.PhaseMVP,
		featureType: "mvp_scope",
		systemPrompt: `You are a lean startup expert who helps define Minimum Viable Product (MVP) scope. Your goal is to help users:

1. Identify core features essential for MVP
2. Prioritize features by impact vs effort
3. Define success metrics for MVP
4. Create a realistic timeline
5. Identify what to exclude from MVP

Be practical and focus on delivering value quickly while learning from users.`,
		userPromptTemplate: "Full feature list: {features}\nTarget timeline: {timeline}\nResources: {resources}\n\nPlease help me define the optimal MVP scope.",
		temperature:        0.6,
		maxTokens:          1500,
	},
	{
		name:        "No-Code Platform Recommender",
		description: "Recommends suitable no-code/low-code platforms",
		phase:       models.PhaseDevelopment,
		featureType: "platform_recommender",
		systemPrompt: `You are an expert in no-code/low-code platforms who helps users choose the best platform for their app. Consider:

1. App type and complexity
2. User's technical skills
3. Budget constraints
4. Required features and integrations
5. Scalability needs
6. Platform limitations

Provide specific recommendations with pros/cons for each platform. Include popular options like Bubble, FlutterFlow, Webflow, Airtable, etc.`,
		userPromptTemplate: "App description: {appDescription}\nTechnical skill level: {skillLevel}\nBudget: {budget}\nRequired features: {features}\n\nPlease recommend the best no-code platforms for this project.",
		temperature:        0.7,
		maxTokens:          1800,
	},
	{
		name:        "Test Case Generator",
		description: "Generates test cases for app features",
		phase:       models.PhaseTesting,
		featureType: "test_cases",
		systemPrompt: `You are a QA expert who creates comprehensive test cases. Generate test cases that cover:

1. Functional testing (happy path and edge cases)
2. User interface testing
3. Usability testing scenarios
4. Performance considerations
5. Security testing basics
6. Cross-platform/browser testing

Make test cases clear, actionable, and easy to execute for non-technical users.`,
		userPromptTemplate: "Features to test: {features}\nApp platform: {platform}\nUser scenarios: {scenarios}\n\nPlease generate comprehensive test cases.",
		temperature:        0.5,
		maxTokens:          2000,
	},
	{
		name:        "Deployment Guide Generator",
		description: "Creates deployment checklists and guides",
		phase:       models.PhaseDeployment,
		featureType: "deployment_guide",
		systemPrompt: `You are a deployment expert who creates comprehensive launch checklists. Help users prepare for deployment by covering:

1. Pre-launch testing checklist
2. Platform-specific deployment steps
3. Domain and hosting setup
4. Analytics and monitoring setup
5. App store submission (if applicable)
6. Marketing and launch strategy
7. Post-launch monitoring

Provide actionable steps and best practices for a successful launch.`,
		userPromptTemplate: "App platform: {platform}\nTarget audience: {audience}\nLaunch timeline: {timeline}\n\nPlease create a comprehensive deployment guide and checklist.",
		temperature:        0.6,
		maxTokens:          2000,
	},
}

// seedTemplates inserts missing platform-default prompt templates.
func seedTemplates(conn *gorm.DB) error {
	for _, entry := range defaultTemplates {
		var count int64
		if errCount := conn.Model(&models.PromptTemplate{}).
			Where("feature_type = ? AND scope_type = ?", entry.featureType, "platform").
			Count(&count).Error; errCount != nil {
			return fmt.Errorf("db: seed template %s: %w", entry.featureType, errCount)
		}
		if count > 0 {
			continue
		}

		modelConfig := datatypes.JSON(fmt.Sprintf(`{"temperature": %g, "maxTokens": %d}`, entry.temperature, entry.maxTokens))
		row := models.PromptTemplate{
			Name:               entry.name,
			Description:        entry.description,
			FeatureType:        entry.featureType,
			Phase:              entry.phase,
			SystemPrompt:       entry.systemPrompt,
			UserPromptTemplate: entry.userPromptTemplate,
			ModelConfig:        modelConfig,
			ScopeType:          "platform",
			ScopeID:            "",
			IsActive:           true,
			IsDefault:          true,
			CreatedBy:          seedCreatedBy,
		}
		if errCreate := conn.Create(&row).Error; errCreate != nil {
			return fmt.Errorf("db: seed template %s: %w", entry.featureType, errCreate)
		}
	}
	return nil
}
