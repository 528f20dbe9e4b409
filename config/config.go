// Package config provides access to the settings that describe the PI System under test.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultSettingsFile is the settings file read when PITESTS_SETTINGS is not set
	DefaultSettingsFile = "pitests.env"
	// SettingsFileEnv names the environment variable holding the settings file path
	SettingsFileEnv = "PITESTS_SETTINGS"
	// envPrefix is prepended to the upper-cased setting name for environment overrides
	envPrefix = "PITESTS_"
)

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Store is a read-only source of named settings.
type Store interface {
	// Lookup returns the raw value of a setting and whether it was found.
	Lookup(name string) (string, bool)
}

// MapStore is a Store backed by an in-memory map.
type MapStore map[string]string

// Lookup implements Store
func (m MapStore) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// EnvStore resolves settings from PITESTS_<NAME> environment variables.
type EnvStore struct{}

// Lookup implements Store
func (EnvStore) Lookup(name string) (string, bool) {
	return os.LookupEnv(EnvName(name))
}

// EnvName returns the environment variable that overrides the given setting.
func EnvName(name string) string {
	return envPrefix + strings.ToUpper(name)
}

// Layered consults each store in order and returns the first hit.
type Layered []Store

// Lookup implements Store
func (l Layered) Lookup(name string) (string, bool) {
	for _, s := range l {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

// Load reads the settings file at path and layers environment overrides on top of it.
// A missing file is not an error when path is the default: every setting may come from
// the environment instead.
func Load(path string) (Store, error) {
	if path == "" {
		path = GetEnv(SettingsFileEnv, DefaultSettingsFile)
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultSettingsFile {
			return Layered{EnvStore{}}, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	return Layered{EnvStore{}, MapStore(values)}, nil
}
