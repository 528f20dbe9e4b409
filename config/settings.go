package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/celestiaorg/pitests/internal/constants"
)

// MissingSettingError is returned when a required setting is absent or blank.
type MissingSettingError struct {
	Name string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("the setting '%s' is missing in the settings file", e.Name)
}

// InvalidSettingError is returned when a setting cannot be converted to the requested type.
type InvalidSettingError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidSettingError) Error() string {
	return fmt.Sprintf("the setting '%s' has an invalid value in the settings file", e.Name)
}

func (e *InvalidSettingError) Unwrap() error {
	return e.Err
}

// Settings reads typed values from a Store.
type Settings struct {
	store Store
}

// NewSettings wraps a Store.
func NewSettings(store Store) *Settings {
	if store == nil {
		store = MapStore{}
	}
	return &Settings{store: store}
}

// Store returns the underlying settings store.
func (s *Settings) Store() Store {
	return s.store
}

// Value returns the string value of a setting. When required is true, a missing or blank
// value is a *MissingSettingError.
func (s *Settings) Value(name string, required bool) (string, error) {
	value, _ := s.store.Lookup(name)
	if required && strings.TrimSpace(value) == "" {
		return "", &MissingSettingError{Name: name}
	}
	return value, nil
}

// Bool returns the boolean value of a setting. A missing optional setting is false.
func (s *Settings) Bool(name string, required bool) (bool, error) {
	value, err := s.Value(name, required)
	if err != nil {
		return false, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &InvalidSettingError{Name: name, Value: value, Err: err}
	}
	return b, nil
}

// Int returns the integer value of a setting. A missing optional setting is 0.
func (s *Settings) Int(name string, required bool) (int, error) {
	value, err := s.Value(name, required)
	if err != nil {
		return 0, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, &InvalidSettingError{Name: name, Value: value, Err: err}
	}
	return i, nil
}

// Secret returns the decrypted value of an encrypted setting. An absent optional setting is
// returned as an empty string without consulting the encryption key.
func (s *Settings) Secret(name string, required bool) (string, error) {
	value, err := s.Value(name, required)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		return "", nil
	}

	key, err := s.Value(constants.SettingEncryptionKey, true)
	if err != nil {
		return "", err
	}

	plain, err := Decrypt(value, key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt setting '%s': %w", name, err)
	}
	return plain, nil
}

// PIDataArchive is the name of the PI Data Archive server.
func (s *Settings) PIDataArchive() (string, error) {
	return s.Value(constants.SettingPIDataArchive, true)
}

// AFServer is the name of the PI AF server.
func (s *Settings) AFServer() (string, error) {
	return s.Value(constants.SettingAFServer, true)
}

// AFDatabase is the name of the AF database used by the tests.
func (s *Settings) AFDatabase() (string, error) {
	return s.Value(constants.SettingAFDatabase, true)
}

// PIAnalysisService is the machine running PI Analysis Service.
func (s *Settings) PIAnalysisService() (string, error) {
	return s.Value(constants.SettingPIAnalysisService, true)
}

// PIWebAPI is the PI Web API host name or base URL. Optional.
func (s *Settings) PIWebAPI() string {
	v, _ := s.Value(constants.SettingPIWebAPI, false)
	return strings.TrimSpace(v)
}

// PIWebAPIConfigurationInstance overrides the configuration element name. Optional.
func (s *Settings) PIWebAPIConfigurationInstance() string {
	v, _ := s.Value(constants.SettingPIWebAPIConfigurationInstance, false)
	return strings.TrimSpace(v)
}

// PIWebAPIUser is the decrypted basic authentication user.
func (s *Settings) PIWebAPIUser() (string, error) {
	return s.Secret(constants.SettingPIWebAPIUser, false)
}

// PIWebAPIPassword is the decrypted basic authentication password.
func (s *Settings) PIWebAPIPassword() (string, error) {
	return s.Secret(constants.SettingPIWebAPIPassword, false)
}

// PIVisionServer is the PI Vision site URL. Optional.
func (s *Settings) PIVisionServer() string {
	v, _ := s.Value(constants.SettingPIVisionServer, false)
	return strings.TrimSpace(v)
}

// PIPointName is an existing, actively updated point used by stream tests. Optional.
func (s *Settings) PIPointName() string {
	v, _ := s.Value(constants.SettingPIPointName, false)
	return strings.TrimSpace(v)
}

// SkipCertificateValidation disables TLS verification against the PI System hosts.
func (s *Settings) SkipCertificateValidation() (bool, error) {
	return s.Bool(constants.SettingSkipCertificateValidation, false)
}
