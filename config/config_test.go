package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SECRET_KEY", "")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Apex Global Defense", s.AppName)
	assert.Equal(t, "/api/v1", s.APIPrefix)
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, s.CORSOrigins)
	assert.Equal(t, "postgres", s.Database.Driver)
	assert.Equal(t, time.Hour, s.Database.ConnMaxLifetime)
	assert.Equal(t, 60*time.Second, s.AI.RequestTimeout)
	assert.True(t, s.GeneratedSecret)
	assert.Len(t, s.SecretKey, 64)
}

func TestLoadRequiresSecretOutsideDevelopment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "SECRET_KEY")
}

func TestLoadRejectsUnknownEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "qa")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("CORS_ORIGINS", "https://apex.example")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", s.SecretKey)
	assert.False(t, s.GeneratedSecret)
	assert.Equal(t, "sqlite", s.Database.Driver)
	assert.Equal(t, 7, s.Database.MaxOpenConns)
	assert.Equal(t, []string{"https://apex.example"}, s.CORSOrigins)
}

func TestSQLiteDSNEnablesForeignKeys(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", sqliteDSN("file::memory:"))
	assert.Equal(t, "file:apex.db?cache=shared&_foreign_keys=on", sqliteDSN("file:apex.db?cache=shared"))
	assert.Equal(t, "file:x.db?_foreign_keys=off", sqliteDSN("file:x.db?_foreign_keys=off"))
}

func TestOpenMemoryMigrates(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)

	for _, table := range []string{"countries", "military_branches", "military_equipment", "projects", "scenarios", "ai_configurations", "users"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(Database{Driver: "oracle"}, nil)
	assert.Error(t, err)
}
