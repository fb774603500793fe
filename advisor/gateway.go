package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
)

const MaxInputLength = 50000

// ConfigSource is the per-user AI configuration the gateway routes on.
type ConfigSource interface {
	Get(ctx context.Context, userID string) (*models.AIConfiguration, error)
	RecordUsage(ctx context.Context, userID string, costUSD float64, at time.Time) error
}

// Opener recovers a sealed API key.
type Opener interface {
	Open(sealed string) (string, error)
}

type Request struct {
	Feature   string          `json:"feature"`
	InputText string          `json:"input_text"`
	Context   json.RawMessage `json:"context"`
	Options   json.RawMessage `json:"options"`
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Feature) == "" {
		return apperr.New(apperr.Validation, "feature is required")
	}
	if n := utf8.RuneCountInString(r.InputText); n < 1 || n > MaxInputLength {
		return apperr.Newf(apperr.Validation, "input_text must be between 1 and %d characters", MaxInputLength)
	}
	for name, doc := range map[string]json.RawMessage{"context": r.Context, "options": r.Options} {
		if _, err := models.ObjectDoc(doc); err != nil {
			return apperr.Newf(apperr.Validation, "%s must be a JSON object", name)
		}
	}
	return nil
}

type Result struct {
	Feature    string  `json:"feature"`
	Result     string  `json:"result"`
	TokensUsed int     `json:"tokens_used"`
	CostUSD    float64 `json:"cost_usd"`
	Provider   string  `json:"provider"`
	Model      *string `json:"model"`
	IsFallback bool    `json:"is_fallback"`
}

// Gateway decides between a provider call and the fallback table.
type Gateway struct {
	configs ConfigSource
	opener  Opener
	clients map[models.Provider]Client
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewGateway(configs ConfigSource, opener Opener, clients map[models.Provider]Client, timeout time.Duration, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		configs: configs,
		opener:  opener,
		clients: clients,
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}
}

// Analyze serves the fallback response when the caller has no configuration,
// has AI disabled, has not enabled the feature, or has spent the monthly
// budget. Otherwise it calls the configured provider and records the cost.
func (g *Gateway) Analyze(ctx context.Context, userID string, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	cfg, err := g.configs.Get(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Fallback(req.Feature), nil
	}
	if err != nil {
		return Result{}, err
	}

	if cfg.Provider == models.ProviderNone || !cfg.AllowsFeature(req.Feature) {
		return Fallback(req.Feature), nil
	}
	now := g.now()
	if cfg.MonthlyBudgetUSD != nil && cfg.UsageIn(models.UsageMonth(now)) >= *cfg.MonthlyBudgetUSD {
		g.log.Info("Analyze: monthly budget exhausted, serving fallback",
			zap.String("user_id", userID), zap.Float64("budget_usd", *cfg.MonthlyBudgetUSD))
		return Fallback(req.Feature), nil
	}
	if cfg.MaxInputTokens != nil {
		if est := EstimateTokens(req.InputText); est > *cfg.MaxInputTokens {
			return Result{}, apperr.Newf(apperr.Validation,
				"input_text is about %d tokens, above the configured max_input_tokens of %d", est, *cfg.MaxInputTokens)
		}
	}

	model := DefaultModel(cfg.Provider)
	switch {
	case cfg.Model != nil && *cfg.Model != "":
		model = *cfg.Model
	case cfg.Provider == models.ProviderLocal && cfg.LocalModelPath != nil && *cfg.LocalModelPath != "":
		model = *cfg.LocalModelPath
	}

	completion, err := g.invoke(ctx, cfg, model, req)
	if err != nil {
		g.log.Warn("Analyze: provider call failed",
			zap.String("user_id", userID),
			zap.String("provider", string(cfg.Provider)),
			zap.String("fallback_mode", string(cfg.FallbackMode)),
			zap.Error(err))
		if cfg.FallbackMode == models.FallbackAuto {
			return Fallback(req.Feature), nil
		}
		return Result{}, apperr.Wrap(apperr.Unavailable, "AI provider request failed", err)
	}

	cost := Cost(cfg.Provider, model, completion.InputTokens, completion.OutputTokens)
	if err := g.configs.RecordUsage(ctx, userID, cost, now); err != nil {
		g.log.Error("Analyze: failed to record usage", zap.String("user_id", userID), zap.Float64("cost_usd", cost), zap.Error(err))
	}

	return Result{
		Feature:    req.Feature,
		Result:     completion.Text,
		TokensUsed: completion.InputTokens + completion.OutputTokens,
		CostUSD:    cost,
		Provider:   string(cfg.Provider),
		Model:      &model,
		IsFallback: false,
	}, nil
}

func (g *Gateway) invoke(ctx context.Context, cfg *models.AIConfiguration, model string, req Request) (Completion, error) {
	client, ok := g.clients[cfg.Provider]
	if !ok {
		return Completion{}, errors.New("provider " + string(cfg.Provider) + " is not available")
	}

	var apiKey string
	if cfg.HasAPIKey() {
		if g.opener == nil {
			return Completion{}, errors.New("api key opener is not configured")
		}
		key, err := g.opener.Open(*cfg.APIKeyEncrypted)
		if err != nil {
			return Completion{}, err
		}
		apiKey = key
	} else if cfg.Provider != models.ProviderLocal {
		return Completion{}, errors.New("no api key configured for " + string(cfg.Provider))
	}

	prompt := Prompt{
		Model:           model,
		APIKey:          apiKey,
		System:          systemPrompt(req.Feature),
		Input:           composeInput(req),
		MaxOutputTokens: requestedMaxOutput(req.Options),
	}
	if cfg.Provider == models.ProviderLocal {
		prompt.BaseURL = localBaseURL(cfg)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return client.Complete(ctx, prompt)
}

func systemPrompt(featureID string) string {
	f, ok := feature(featureID)
	if !ok {
		return "You are a defense analysis assistant. Answer concisely and state your assumptions."
	}
	return "You are a defense analysis assistant performing " + strings.ToLower(f.Name) +
		": " + f.Description + ". Answer concisely and state your assumptions."
}

func composeInput(req Request) string {
	ctxDoc := strings.TrimSpace(string(req.Context))
	if ctxDoc == "" || ctxDoc == "null" || ctxDoc == "{}" {
		return req.InputText
	}
	return req.InputText + "\n\nContext:\n" + ctxDoc
}

func requestedMaxOutput(options json.RawMessage) int {
	var opts struct {
		MaxOutputTokens int `json:"max_output_tokens"`
	}
	if len(options) == 0 || json.Unmarshal(options, &opts) != nil {
		return 0
	}
	return opts.MaxOutputTokens
}

func localBaseURL(cfg *models.AIConfiguration) string {
	var conf struct {
		BaseURL string `json:"base_url"`
	}
	if len(cfg.LocalModelConfig) > 0 && json.Unmarshal(cfg.LocalModelConfig, &conf) == nil && conf.BaseURL != "" {
		return conf.BaseURL
	}
	return ""
}
