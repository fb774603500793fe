package models

import (
	"encoding/json"
	"slices"
	"time"

	"gorm.io/datatypes"
)

// AIConfiguration is the per-user AI settings row. The API key is stored sealed
// and is only ever reported as a boolean.
type AIConfiguration struct {
	Base
	UserID               string         `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	User                 *User          `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Provider             Provider       `gorm:"size:50;not null" json:"provider"`
	Model                *string        `gorm:"size:100" json:"model"`
	APIKeyEncrypted      *string        `gorm:"column:api_key_encrypted;type:text" json:"-"`
	MonthlyBudgetUSD     *float64       `gorm:"column:monthly_budget_usd" json:"monthly_budget_usd"`
	CurrentMonthUsageUSD float64        `gorm:"column:current_month_usage_usd;not null" json:"current_month_usage_usd"`
	UsageMonth           string         `gorm:"size:7" json:"-"`
	AllowDataSharing     bool           `gorm:"not null" json:"allow_data_sharing"`
	MaxInputTokens       *int           `json:"max_input_tokens"`
	FallbackMode         FallbackMode   `gorm:"size:20;not null" json:"fallback_mode"`
	EnabledFeatures      datatypes.JSON `json:"enabled_features"`
	FeatureSettings      datatypes.JSON `json:"feature_settings"`
	LocalModelPath       *string        `gorm:"size:500" json:"local_model_path"`
	LocalModelConfig     datatypes.JSON `json:"local_model_config"`
}

func (AIConfiguration) TableName() string {
	return "ai_configurations"
}

func (c AIConfiguration) HasAPIKey() bool {
	return c.APIKeyEncrypted != nil && *c.APIKeyEncrypted != ""
}

// Features returns the enabled feature ids. Empty means no restriction was set.
func (c AIConfiguration) Features() []string {
	return Strings(c.EnabledFeatures)
}

// AllowsFeature treats an empty feature set as allowing everything.
func (c AIConfiguration) AllowsFeature(feature string) bool {
	enabled := c.Features()
	return len(enabled) == 0 || slices.Contains(enabled, feature)
}

// MarshalJSON reports usage for the current month, so a counter left over
// from an earlier month reads as zero.
func (c AIConfiguration) MarshalJSON() ([]byte, error) {
	type alias AIConfiguration
	return json.Marshal(struct {
		alias
		CurrentMonthUsageUSD float64 `json:"current_month_usage_usd"`
		HasAPIKey            bool    `json:"has_api_key"`
	}{
		alias:                alias(c),
		CurrentMonthUsageUSD: c.UsageIn(UsageMonth(time.Now())),
		HasAPIKey:            c.HasAPIKey(),
	})
}

const usageMonthLayout = "2006-01"

// UsageMonth is the bucket usage is accumulated under.
func UsageMonth(at time.Time) string {
	return at.UTC().Format(usageMonthLayout)
}

// UsageIn is the month-to-date spend, or zero when the counter belongs to an earlier month.
func (c AIConfiguration) UsageIn(month string) float64 {
	if c.UsageMonth != month {
		return 0
	}
	return c.CurrentMonthUsageUSD
}
