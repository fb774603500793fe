package advisor

import (
	"strings"

	"github.com/andrewpaige1/apex-defense-api/models"
)

// price is USD per million tokens.
type price struct {
	input  float64
	output float64
}

// Keys are model name prefixes. The longest match wins.
var modelPrices = map[string]price{
	"gpt-4o-mini":       {0.15, 0.60},
	"gpt-4o":            {2.50, 10.00},
	"gpt-4-turbo":       {10.00, 30.00},
	"gpt-4":             {30.00, 60.00},
	"gpt-3.5-turbo":     {0.50, 1.50},
	"claude-3-5-haiku":  {0.80, 4.00},
	"claude-3-5-sonnet": {3.00, 15.00},
	"claude-3-opus":     {15.00, 75.00},
	"claude-3-haiku":    {0.25, 1.25},
	"claude-3-sonnet":   {3.00, 15.00},
	"gemini-2.5-flash":  {0.30, 2.50},
	"gemini-2.5-pro":    {1.25, 10.00},
}

var providerPrices = map[models.Provider]price{
	models.ProviderOpenAI:    {2.50, 10.00},
	models.ProviderAnthropic: {3.00, 15.00},
	models.ProviderGemini:    {0.30, 2.50},
}

func priceFor(p models.Provider, model string) price {
	best, bestLen := price{}, -1
	for prefix, pr := range modelPrices {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best, bestLen = pr, len(prefix)
		}
	}
	if bestLen >= 0 {
		return best
	}
	return providerPrices[p]
}

// Cost prices a completion. Local models are free.
func Cost(p models.Provider, model string, inputTokens, outputTokens int) float64 {
	if p == models.ProviderLocal || p == models.ProviderNone {
		return 0
	}
	pr := priceFor(p, model)
	return (float64(inputTokens)*pr.input + float64(outputTokens)*pr.output) / 1_000_000
}

// EstimateTokens approximates the token count of text at four characters per token.
func EstimateTokens(text string) int {
	n := len([]rune(text))
	return (n + 3) / 4
}
