package advisor

import "github.com/andrewpaige1/apex-defense-api/models"

const genericFallback = "AI features are not configured. Please enable AI in settings."

var fallbackMessages = map[string]string{
	FeatureIntelligenceAnalysis: "Use manual tagging templates for intelligence analysis.",
	FeatureScenarioGeneration:   "Use the wizard-based scenario builder.",
	FeatureThreatAssessment:     "Use the weighted matrix assessment tool.",
	FeatureReportGeneration:     "Use the template library for report generation.",
	FeatureTranslation:          "Use external translation API or manual translation.",
}

// FallbackMessage returns the canned guidance for a feature.
func FallbackMessage(featureID string) string {
	if msg, ok := fallbackMessages[featureID]; ok {
		return msg
	}
	return genericFallback
}

// Fallback builds the zero-cost response served when AI is unavailable or disallowed.
func Fallback(featureID string) Result {
	return Result{
		Feature:    featureID,
		Result:     FallbackMessage(featureID),
		Provider:   string(models.ProviderNone),
		IsFallback: true,
	}
}
