// Package advisor routes AI analysis requests to a configured provider or to
// the deterministic fallback table.
package advisor

import (
	"slices"

	"github.com/andrewpaige1/apex-defense-api/models"
)

type ProviderInfo struct {
	ProviderID        models.Provider `json:"provider_id"`
	Name              string          `json:"name"`
	Models            []string        `json:"models"`
	SupportsStreaming bool            `json:"supports_streaming"`
	MaxTokens         *int            `json:"max_tokens"`
}

type FeatureInfo struct {
	FeatureID      string `json:"feature_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	AIMode         string `json:"ai_mode"`
	FallbackMode   string `json:"fallback_mode"`
	RequiresAPIKey bool   `json:"requires_api_key"`
}

const (
	FeatureIntelligenceAnalysis = "intelligence_analysis"
	FeatureScenarioGeneration   = "scenario_generation"
	FeatureThreatAssessment     = "threat_assessment"
	FeatureReportGeneration     = "report_generation"
	FeatureTranslation          = "translation"
)

func tokens(n int) *int { return &n }

var providers = []ProviderInfo{
	{
		ProviderID:        models.ProviderOpenAI,
		Name:              "OpenAI",
		Models:            []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo"},
		SupportsStreaming: true,
		MaxTokens:         tokens(128000),
	},
	{
		ProviderID:        models.ProviderAnthropic,
		Name:              "Anthropic",
		Models:            []string{"claude-3-5-sonnet-latest", "claude-3-5-haiku-latest", "claude-3-opus-latest"},
		SupportsStreaming: true,
		MaxTokens:         tokens(200000),
	},
	{
		ProviderID:        models.ProviderGemini,
		Name:              "Google Gemini",
		Models:            []string{"gemini-2.5-flash", "gemini-2.5-pro"},
		SupportsStreaming: true,
		MaxTokens:         tokens(1048576),
	},
	{
		ProviderID: models.ProviderLocal,
		Name:       "Local Model",
		Models:     []string{"llama3", "mistral", "custom"},
	},
	{
		ProviderID: models.ProviderNone,
		Name:       "Disabled",
		Models:     []string{},
	},
}

var features = []FeatureInfo{
	{
		FeatureID:      FeatureIntelligenceAnalysis,
		Name:           "Intelligence Analysis",
		Description:    "Auto extraction and summarization of intelligence data",
		AIMode:         "Auto extraction, summarization",
		FallbackMode:   "Manual tagging templates",
		RequiresAPIKey: true,
	},
	{
		FeatureID:      FeatureScenarioGeneration,
		Name:           "Scenario Generation",
		Description:    "Natural language scenario builder",
		AIMode:         "Natural language builder",
		FallbackMode:   "Wizard-based",
		RequiresAPIKey: true,
	},
	{
		FeatureID:      FeatureThreatAssessment,
		Name:           "Threat Assessment",
		Description:    "Pattern recognition for threat analysis",
		AIMode:         "Pattern recognition",
		FallbackMode:   "Weighted matrix",
		RequiresAPIKey: true,
	},
	{
		FeatureID:      FeatureReportGeneration,
		Name:           "Report Generation",
		Description:    "Automated briefing generation",
		AIMode:         "Auto briefs",
		FallbackMode:   "Template library",
		RequiresAPIKey: true,
	},
	{
		FeatureID:      FeatureTranslation,
		Name:           "Translation",
		Description:    "Real-time OSINT translation",
		AIMode:         "Real-time OSINT translation",
		FallbackMode:   "API/manual",
		RequiresAPIKey: true,
	},
}

// Providers returns a copy of the provider catalog.
func Providers() []ProviderInfo {
	out := make([]ProviderInfo, len(providers))
	for i, p := range providers {
		p.Models = slices.Clone(p.Models)
		out[i] = p
	}
	return out
}

// Features returns a copy of the feature catalog.
func Features() []FeatureInfo {
	return slices.Clone(features)
}

func IsFeature(id string) bool {
	return slices.ContainsFunc(features, func(f FeatureInfo) bool { return f.FeatureID == id })
}

func feature(id string) (FeatureInfo, bool) {
	i := slices.IndexFunc(features, func(f FeatureInfo) bool { return f.FeatureID == id })
	if i < 0 {
		return FeatureInfo{}, false
	}
	return features[i], true
}

// DefaultModel is the first catalog model of a provider, or "" when it lists none.
func DefaultModel(p models.Provider) string {
	for _, info := range providers {
		if info.ProviderID == p && len(info.Models) > 0 {
			return info.Models[0]
		}
	}
	return ""
}
