package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/internal/db/models"
)

func TestSetDefaults(t *testing.T) {
	opts := setDefaults(Options{})
	assert.Equal(t, DefaultDriver, opts.Driver)
	assert.Equal(t, DefaultHost, opts.Host)
	assert.Equal(t, DefaultPort, opts.Port)
	assert.Equal(t, DefaultDBName, opts.DBName)
	require.NotNil(t, opts.SSLEnabled)
	assert.False(t, *opts.SSLEnabled)
	assert.Equal(t, logger.Warn, opts.LogLevel)
}

func TestPostgresDSN(t *testing.T) {
	ssl := true
	dsn := postgresDSN(setDefaults(Options{Host: "db", User: "u", Password: "p", DBName: "hist", Port: 6543, SSLEnabled: &ssl}))
	assert.Equal(t, "host=db user=u password=p dbname=hist port=6543 sslmode=require", dsn)
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv(constants.EnvDBDriver, DriverSQLite)
	t.Setenv(constants.EnvDBName, "/tmp/history.db")
	t.Setenv(constants.EnvDBPort, "15432")
	t.Setenv(constants.EnvDBSSLEnabled, "true")

	opts, err := OptionsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, opts.Driver)
	assert.Equal(t, "/tmp/history.db", opts.DBName)
	assert.Equal(t, 15432, opts.Port)
	assert.True(t, *opts.SSLEnabled)

	t.Setenv(constants.EnvDBPort, "not-a-port")
	_, err = OptionsFromEnv()
	assert.ErrorContains(t, err, constants.EnvDBPort)
}

func TestNew_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := New(Options{Driver: DriverSQLite, DBName: path, LogLevel: logger.Silent})
	require.NoError(t, err)
	defer func() { assert.NoError(t, Close(db)) }()

	assert.True(t, db.Migrator().HasTable(&models.CheckRun{}))
	assert.True(t, db.Migrator().HasTable(&models.CheckResult{}))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(Options{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
