package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andrewpaige1/apex-defense-api/config"
	"github.com/andrewpaige1/apex-defense-api/forces"
	"github.com/andrewpaige1/apex-defense-api/models"
	"github.com/andrewpaige1/apex-defense-api/store"
)

func TestDefaultDataset(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)
	require.Len(t, ds.Countries, 50)

	seen := map[string]bool{}
	withBranches := map[string]bool{}
	for _, c := range ds.Countries {
		assert.Len(t, c.ISOCode, 3, c.Name)
		assert.False(t, seen[c.ISOCode], "duplicate %s", c.ISOCode)
		seen[c.ISOCode] = true
		if len(c.Branches) > 0 {
			withBranches[c.ISOCode] = true
		}
		for _, b := range c.Branches {
			assert.True(t, models.BranchType(b.BranchType).Valid(), b.Name)
			for _, e := range b.Equipment {
				assert.True(t, models.EquipmentCategory(e.Category).Valid(), e.Name)
			}
		}
	}
	assert.Equal(t, map[string]bool{"USA": true, "RUS": true, "CHN": true, "IND": true, "GBR": true}, withBranches)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("countries:\n  - name: Atlantis\n    iso: ATL\n"))
	assert.Error(t, err)
}

func TestLoadIsIdempotent(t *testing.T) {
	db, err := config.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()

	ds, err := Default()
	require.NoError(t, err)

	first, err := Load(ctx, db, ds, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 50, first.Countries)
	assert.Equal(t, 20, first.Branches)
	assert.Zero(t, first.Skipped)
	assert.Positive(t, first.Equipment)

	second, err := Load(ctx, db, ds, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, second.Countries)
	assert.Equal(t, 50, second.Skipped)

	var count int64
	require.NoError(t, db.Model(&models.Country{}).Count(&count).Error)
	assert.Equal(t, int64(50), count)

	usa, err := store.NewCountryStore(db).GetByISO(ctx, "usa")
	require.NoError(t, err)
	summary, err := forces.NewAggregator(db, zap.NewNop()).Summarize(ctx, usa.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2509), summary.TotalTanks)
	assert.Equal(t, int64(11+73+68), summary.TotalNavalVessels)
	assert.Equal(t, int64(450+187+218+281), summary.TotalAircraft)
}
