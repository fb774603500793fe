package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/config"
	"github.com/andrewpaige1/apex-defense-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, subject string) *models.User {
	t.Helper()
	user, err := NewUserStore(db).Sync(context.Background(), Identity{Subject: subject, Email: subject + "@apex.test"})
	require.NoError(t, err)
	return user
}

func ptr[T any](v T) *T {
	return &v
}

func usaInput() CountryInput {
	return CountryInput{
		Name:             "United States",
		ISOCode:          "USA",
		ISOCode2:         "US",
		Region:           ptr("Americas"),
		Subregion:        ptr("North America"),
		Capital:          ptr("Washington, D.C."),
		Population:       ptr(int64(334914895)),
		DefenseBudgetUSD: ptr(886000000000.0),
		Lat:              ptr(38.8951),
		Lng:              ptr(-77.0364),
	}
}
