package store

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/patch"
)

// Sealer encrypts API keys before they reach the database.
type Sealer interface {
	Seal(value string) (string, error)
}

// AIConfigStore manages the single AI configuration row each user may own.
type AIConfigStore struct {
	db           *gorm.DB
	sealer       Sealer
	knownFeature func(id string) bool
}

func NewAIConfigStore(db *gorm.DB, sealer Sealer, knownFeature func(id string) bool) *AIConfigStore {
	return &AIConfigStore{db: db, sealer: sealer, knownFeature: knownFeature}
}

type AIConfigInput struct {
	Provider         string          `json:"provider"`
	Model            *string         `json:"model"`
	APIKey           *string         `json:"api_key"`
	MonthlyBudgetUSD *float64        `json:"monthly_budget_usd"`
	MaxInputTokens   *int            `json:"max_input_tokens"`
	FallbackMode     string          `json:"fallback_mode"`
	AllowDataSharing bool            `json:"allow_data_sharing"`
	EnabledFeatures  []string        `json:"enabled_features"`
	FeatureSettings  json.RawMessage `json:"feature_settings"`
	LocalModelPath   *string         `json:"local_model_path"`
	LocalModelConfig json.RawMessage `json:"local_model_config"`
}

type AIConfigPatch struct {
	Provider         patch.Field[string]          `json:"provider"`
	Model            patch.Field[string]          `json:"model"`
	APIKey           patch.Field[string]          `json:"api_key"`
	MonthlyBudgetUSD patch.Field[float64]         `json:"monthly_budget_usd"`
	MaxInputTokens   patch.Field[int]             `json:"max_input_tokens"`
	FallbackMode     patch.Field[string]          `json:"fallback_mode"`
	AllowDataSharing patch.Field[bool]            `json:"allow_data_sharing"`
	EnabledFeatures  patch.Field[[]string]        `json:"enabled_features"`
	FeatureSettings  patch.Field[json.RawMessage] `json:"feature_settings"`
	LocalModelPath   patch.Field[string]          `json:"local_model_path"`
	LocalModelConfig patch.Field[json.RawMessage] `json:"local_model_config"`
}

func (s *AIConfigStore) checkFeatures(ids []string) error {
	for _, id := range ids {
		if s.knownFeature != nil && !s.knownFeature(id) {
			return apperr.Newf(apperr.Validation, "enabled_features contains unknown feature %q", id)
		}
	}
	return nil
}

func checkProvider(p string) error {
	if !models.Provider(p).Valid() {
		return apperr.Newf(apperr.Validation, "provider %q is not a known provider", p)
	}
	return nil
}

func checkFallbackMode(m string) error {
	if !models.FallbackMode(m).Valid() {
		return apperr.Newf(apperr.Validation, "fallback_mode %q must be one of auto, prompt, block", m)
	}
	return nil
}

func checkMaxTokens(v *int) error {
	if v != nil && *v < 1 {
		return apperr.New(apperr.Validation, "max_input_tokens must be at least 1")
	}
	return nil
}

func (s *AIConfigStore) seal(key string) (*string, error) {
	if key == "" {
		return nil, nil
	}
	if s.sealer == nil {
		return nil, apperr.New(apperr.Internal, "api key sealing is not configured")
	}
	sealed, err := s.sealer.Seal(key)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "seal api key", err)
	}
	return &sealed, nil
}

// Get returns the caller's configuration or NotFound.
func (s *AIConfigStore) Get(ctx context.Context, userID string) (*models.AIConfiguration, error) {
	var cfg models.AIConfiguration
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		return nil, lookupErr(err, "AI configuration")
	}
	return &cfg, nil
}

// Create fails with Conflict when the user already has a configuration.
func (s *AIConfigStore) Create(ctx context.Context, userID string, in AIConfigInput) (*models.AIConfiguration, error) {
	if in.Provider == "" {
		in.Provider = string(models.ProviderNone)
	}
	if in.FallbackMode == "" {
		in.FallbackMode = string(models.FallbackPrompt)
	}
	if err := firstErr(
		checkProvider(in.Provider),
		checkFallbackMode(in.FallbackMode),
		checkNonNegative("monthly_budget_usd", in.MonthlyBudgetUSD),
		checkMaxTokens(in.MaxInputTokens),
		s.checkFeatures(in.EnabledFeatures),
	); err != nil {
		return nil, err
	}
	featureSettings, err := models.ObjectDoc(in.FeatureSettings)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "feature_settings must be a JSON object", err)
	}
	localConfig, err := models.ObjectDoc(in.LocalModelConfig)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "local_model_config must be a JSON object", err)
	}

	cfg := models.AIConfiguration{
		UserID:           userID,
		Provider:         models.Provider(in.Provider),
		Model:            in.Model,
		MonthlyBudgetUSD: in.MonthlyBudgetUSD,
		UsageMonth:       models.UsageMonth(time.Now()),
		AllowDataSharing: in.AllowDataSharing,
		MaxInputTokens:   in.MaxInputTokens,
		FallbackMode:     models.FallbackMode(in.FallbackMode),
		EnabledFeatures:  models.StringsDoc(in.EnabledFeatures),
		FeatureSettings:  featureSettings,
		LocalModelPath:   in.LocalModelPath,
		LocalModelConfig: localConfig,
	}
	if in.APIKey != nil {
		if cfg.APIKeyEncrypted, err = s.seal(*in.APIKey); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.AIConfiguration{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.New(apperr.Conflict, "AI configuration already exists. Use PATCH to update.")
		}
		return tx.Create(&cfg).Error
	})
	if err != nil {
		return nil, writeErr(err, "create ai configuration", "AI configuration already exists. Use PATCH to update.")
	}
	return &cfg, nil
}

// Update merges the supplied fields. Sending api_key as null removes the stored key.
func (s *AIConfigStore) Update(ctx context.Context, userID string, p AIConfigPatch) (*models.AIConfiguration, error) {
	if err := firstErr(
		notNull("provider", p.Provider),
		notNull("fallback_mode", p.FallbackMode),
		notNull("allow_data_sharing", p.AllowDataSharing),
		checkNonNegative("monthly_budget_usd", p.MonthlyBudgetUSD.Ptr()),
		checkMaxTokens(p.MaxInputTokens.Ptr()),
		s.checkFeatures(p.EnabledFeatures.Value),
	); err != nil {
		return nil, err
	}
	if p.Provider.Present() {
		if err := checkProvider(p.Provider.Value); err != nil {
			return nil, err
		}
	}
	if p.FallbackMode.Present() {
		if err := checkFallbackMode(p.FallbackMode.Value); err != nil {
			return nil, err
		}
	}

	var sealed *string
	if p.APIKey.Present() {
		var err error
		if sealed, err = s.seal(p.APIKey.Value); err != nil {
			return nil, err
		}
	}

	var cfg models.AIConfiguration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).First(&cfg).Error; err != nil {
			return lookupErr(err, "AI configuration")
		}

		if p.Provider.Present() {
			cfg.Provider = models.Provider(p.Provider.Value)
		}
		p.Model.ApplyPtr(&cfg.Model)
		if p.APIKey.Set {
			cfg.APIKeyEncrypted = sealed
		}
		p.MonthlyBudgetUSD.ApplyPtr(&cfg.MonthlyBudgetUSD)
		p.MaxInputTokens.ApplyPtr(&cfg.MaxInputTokens)
		if p.FallbackMode.Present() {
			cfg.FallbackMode = models.FallbackMode(p.FallbackMode.Value)
		}
		p.AllowDataSharing.Apply(&cfg.AllowDataSharing)
		if p.EnabledFeatures.Set {
			cfg.EnabledFeatures = models.StringsDoc(p.EnabledFeatures.Value)
		}
		p.LocalModelPath.ApplyPtr(&cfg.LocalModelPath)
		if p.FeatureSettings.Set {
			doc, err := models.ObjectDoc(p.FeatureSettings.Value)
			if err != nil {
				return apperr.Wrap(apperr.Validation, "feature_settings must be a JSON object", err)
			}
			cfg.FeatureSettings = doc
		}
		if p.LocalModelConfig.Set {
			doc, err := models.ObjectDoc(p.LocalModelConfig.Value)
			if err != nil {
				return apperr.Wrap(apperr.Validation, "local_model_config must be a JSON object", err)
			}
			cfg.LocalModelConfig = doc
		}

		return tx.Save(&cfg).Error
	})
	if err != nil {
		return nil, writeErr(err, "update ai configuration", "AI configuration already exists")
	}
	return &cfg, nil
}

func (s *AIConfigStore) Delete(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AIConfiguration{})
	if res.Error != nil {
		return apperr.Wrap(apperr.Internal, "delete ai configuration", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "AI configuration not found")
	}
	return nil
}

// RecordUsage adds cost to the month-to-date counter, restarting it when the
// stored month is not the month of at.
func (s *AIConfigStore) RecordUsage(ctx context.Context, userID string, costUSD float64, at time.Time) error {
	if costUSD <= 0 {
		return nil
	}
	month := models.UsageMonth(at)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.AIConfiguration{}).
			Where("user_id = ? AND usage_month = ?", userID, month).
			Update("current_month_usage_usd", gorm.Expr("current_month_usage_usd + ?", costUSD))
		if res.Error != nil {
			return apperr.Wrap(apperr.Internal, "record ai usage", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		res = tx.Model(&models.AIConfiguration{}).Where("user_id = ?", userID).
			Updates(map[string]any{"current_month_usage_usd": costUSD, "usage_month": month})
		if res.Error != nil {
			return apperr.Wrap(apperr.Internal, "record ai usage", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "AI configuration not found")
		}
		return nil
	})
}
