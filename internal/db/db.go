// Package db provides the check history database
package db

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/internal/db/models"
	applog "github.com/celestiaorg/pitests/internal/logger"
)

// Database configuration constants
const (
	// DriverPostgres selects a PostgreSQL server
	DriverPostgres = "postgres"
	// DriverSQLite selects a local SQLite file; DBName is the file path
	DriverSQLite = "sqlite"

	// DefaultDriver is the default database driver
	DefaultDriver = DriverPostgres
	// DefaultHost is the default database host
	DefaultHost = "localhost"
	// DefaultPort is the default database port
	DefaultPort = 5432
	// DefaultUser is the default database user
	DefaultUser = "postgres"
	// DefaultPassword is the default database password
	DefaultPassword = "postgres"
	// DefaultDBName is the default database name
	DefaultDBName     = "pitests"
	DefaultSSLEnabled = false
)

// Options represents database connection configuration options
type Options struct {
	Driver     string
	Host       string
	User       string
	Password   string
	DBName     string
	Port       int
	SSLEnabled *bool
	LogLevel   logger.LogLevel
}

// OptionsFromEnv reads the connection options from the PITESTS_DB_* variables
func OptionsFromEnv() (Options, error) {
	opts := Options{
		Driver:   config.GetEnv(constants.EnvDBDriver, DefaultDriver),
		Host:     config.GetEnv(constants.EnvDBHost, DefaultHost),
		User:     config.GetEnv(constants.EnvDBUser, DefaultUser),
		Password: config.GetEnv(constants.EnvDBPassword, DefaultPassword),
		DBName:   config.GetEnv(constants.EnvDBName, DefaultDBName),
	}

	port, err := strconv.Atoi(config.GetEnv(constants.EnvDBPort, strconv.Itoa(DefaultPort)))
	if err != nil {
		return Options{}, fmt.Errorf("invalid %s: %w", constants.EnvDBPort, err)
	}
	opts.Port = port

	ssl, err := strconv.ParseBool(config.GetEnv(constants.EnvDBSSLEnabled, strconv.FormatBool(DefaultSSLEnabled)))
	if err != nil {
		return Options{}, fmt.Errorf("invalid %s: %w", constants.EnvDBSSLEnabled, err)
	}
	opts.SSLEnabled = &ssl
	return opts, nil
}

// New creates a new database connection with the given options and migrates the schema
func New(opts Options) (*gorm.DB, error) {
	opts = setDefaults(opts)

	// Route gorm's logger through logrus and ignore record not found errors
	newLogger := logger.New(
		applog.Writer(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
		},
	)

	gormConfig := &gorm.Config{
		Logger: newLogger,
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(postgresDSN(opts))
	case DriverSQLite:
		dialector = sqlite.Open(opts.DBName)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsDuplicateKeyError checks if the given error is a PostgreSQL duplicate key error
func IsDuplicateKeyError(err error) bool {
	return errors.Is(postgres.Dialector{}.Translate(err), gorm.ErrDuplicatedKey)
}

// Migrate creates or updates the check history tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CheckRun{},
		&models.CheckResult{},
	)
}

func postgresDSN(opts Options) string {
	sslMode := "disable"
	if opts.SSLEnabled != nil && *opts.SSLEnabled {
		sslMode = "require"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		opts.Host, opts.User, opts.Password, opts.DBName, opts.Port, sslMode)
}

func setDefaults(opts Options) Options {
	if opts.Driver == "" {
		opts.Driver = DefaultDriver
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.User == "" {
		opts.User = DefaultUser
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.DBName == "" {
		opts.DBName = DefaultDBName
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.SSLEnabled == nil {
		sslMode := DefaultSSLEnabled
		opts.SSLEnabled = &sslMode
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	return opts
}
