package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/models"
)

type prefixSealer struct{}

func (prefixSealer) Seal(value string) (string, error) {
	return "sealed:" + value, nil
}

type brokenSealer struct{}

func (brokenSealer) Seal(string) (string, error) {
	return "", errors.New("no key")
}

func knownFeature(id string) bool {
	return id == "scenario_analysis" || id == "force_estimation"
}

func newAIConfigStore(t *testing.T) (*AIConfigStore, *models.User) {
	t.Helper()
	db := newTestDB(t)
	user := newTestUser(t, db, "auth|analyst")
	return NewAIConfigStore(db, prefixSealer{}, knownFeature), user
}

func TestAIConfigCreateDefaultsAndConflict(t *testing.T) {
	ctx := context.Background()
	configs, user := newAIConfigStore(t)

	cfg, err := configs.Create(ctx, user.ID, AIConfigInput{})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderNone, cfg.Provider)
	assert.Equal(t, models.FallbackPrompt, cfg.FallbackMode)
	assert.False(t, cfg.HasAPIKey())
	assert.Zero(t, cfg.CurrentMonthUsageUSD)

	_, err = configs.Create(ctx, user.ID, AIConfigInput{Provider: "openai"})
	assert.Equal(t, apperr.Conflict, apperr.CodeOf(err))
	assert.Equal(t, "AI configuration already exists. Use PATCH to update.", apperr.MessageOf(err))
}

func TestAIConfigSealsKeyAndHidesIt(t *testing.T) {
	ctx := context.Background()
	configs, user := newAIConfigStore(t)

	cfg, err := configs.Create(ctx, user.ID, AIConfigInput{Provider: "openai", APIKey: ptr("sk-live-123")})
	require.NoError(t, err)
	require.NotNil(t, cfg.APIKeyEncrypted)
	assert.Equal(t, "sealed:sk-live-123", *cfg.APIKeyEncrypted)

	body, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "sk-live-123")
	assert.Contains(t, string(body), `"has_api_key":true`)

	var p AIConfigPatch
	require.NoError(t, json.Unmarshal([]byte(`{"api_key":null}`), &p))
	cfg, err = configs.Update(ctx, user.ID, p)
	require.NoError(t, err)
	assert.False(t, cfg.HasAPIKey())
	assert.Equal(t, models.ProviderOpenAI, cfg.Provider)
}

func TestAIConfigSealFailureIsInternal(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "auth|analyst")
	configs := NewAIConfigStore(db, brokenSealer{}, nil)

	_, err := configs.Create(context.Background(), user.ID, AIConfigInput{APIKey: ptr("sk")})
	assert.Equal(t, apperr.Internal, apperr.CodeOf(err))
}

func TestAIConfigValidation(t *testing.T) {
	ctx := context.Background()
	configs, user := newAIConfigStore(t)

	cases := []AIConfigInput{
		{Provider: "watson"},
		{FallbackMode: "retry"},
		{MonthlyBudgetUSD: ptr(-1.0)},
		{MaxInputTokens: ptr(0)},
		{EnabledFeatures: []string{"mind_reading"}},
		{FeatureSettings: json.RawMessage(`"flat"`)},
	}
	for _, in := range cases {
		_, err := configs.Create(ctx, user.ID, in)
		assert.Equal(t, apperr.Validation, apperr.CodeOf(err), "%+v", in)
	}

	_, err := configs.Create(ctx, user.ID, AIConfigInput{})
	require.NoError(t, err)
	for _, body := range []string{`{"provider":null}`, `{"fallback_mode":"never"}`, `{"enabled_features":["nope"]}`} {
		var p AIConfigPatch
		require.NoError(t, json.Unmarshal([]byte(body), &p))
		_, err := configs.Update(ctx, user.ID, p)
		assert.Equal(t, apperr.Validation, apperr.CodeOf(err), body)
	}
}

func TestAIConfigUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	configs, user := newAIConfigStore(t)

	_, err := configs.Get(ctx, user.ID)
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
	_, err = configs.Update(ctx, user.ID, AIConfigPatch{})
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))

	_, err = configs.Create(ctx, user.ID, AIConfigInput{Provider: "anthropic", MonthlyBudgetUSD: ptr(20.0)})
	require.NoError(t, err)

	var p AIConfigPatch
	require.NoError(t, json.Unmarshal([]byte(`{"fallback_mode":"auto","enabled_features":["scenario_analysis"]}`), &p))
	cfg, err := configs.Update(ctx, user.ID, p)
	require.NoError(t, err)
	assert.Equal(t, models.FallbackAuto, cfg.FallbackMode)
	assert.Equal(t, models.ProviderAnthropic, cfg.Provider)
	require.NotNil(t, cfg.MonthlyBudgetUSD)
	assert.Equal(t, 20.0, *cfg.MonthlyBudgetUSD)
	assert.True(t, cfg.AllowsFeature("scenario_analysis"))
	assert.False(t, cfg.AllowsFeature("force_estimation"))

	require.NoError(t, configs.Delete(ctx, user.ID))
	assert.Equal(t, apperr.NotFound, apperr.CodeOf(configs.Delete(ctx, user.ID)))
}

func TestRecordUsageAccumulatesWithinMonth(t *testing.T) {
	ctx := context.Background()
	configs, user := newAIConfigStore(t)
	_, err := configs.Create(ctx, user.ID, AIConfigInput{Provider: "openai"})
	require.NoError(t, err)

	march := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	require.NoError(t, configs.RecordUsage(ctx, user.ID, 1.5, march))
	require.NoError(t, configs.RecordUsage(ctx, user.ID, 2.0, march.Add(48*time.Hour)))
	require.NoError(t, configs.RecordUsage(ctx, user.ID, 0, march))

	cfg, err := configs.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, cfg.UsageIn("2026-03"), 1e-9)

	april := time.Date(2026, time.April, 1, 0, 0, 1, 0, time.UTC)
	require.NoError(t, configs.RecordUsage(ctx, user.ID, 0.25, april))

	cfg, err = configs.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, cfg.UsageIn("2026-04"), 1e-9)
	assert.Zero(t, cfg.UsageIn("2026-03"))

	assert.Equal(t, apperr.NotFound, apperr.CodeOf(configs.RecordUsage(ctx, "missing", 1, april)))
}
