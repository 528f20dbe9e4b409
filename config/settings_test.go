package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celestiaorg/pitests/internal/constants"
)

func TestSettings_Value(t *testing.T) {
	s := NewSettings(MapStore{
		"AFServer": "af01",
		"Blank":    "   ",
	})

	v, err := s.Value("AFServer", true)
	require.NoError(t, err)
	assert.Equal(t, "af01", v)

	v, err = s.Value("Missing", false)
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = s.Value("Missing", true)
	var missing *MissingSettingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Missing", missing.Name)
	assert.Contains(t, err.Error(), "'Missing'")

	_, err = s.Value("Blank", true)
	require.ErrorAs(t, err, &missing)
}

func TestSettings_Bool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		required bool
		want     bool
		wantErr  bool
	}{
		{name: "true", value: "True", want: true},
		{name: "false", value: "false", want: false},
		{name: "missing optional", value: "", want: false},
		{name: "missing required", value: "", required: true, wantErr: true},
		{name: "not a bool", value: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSettings(MapStore{"Flag": tt.value})
			got, err := s.Bool("Flag", tt.required)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewSettings(MapStore{"Flag": "maybe"}).Bool("Flag", false)
	var invalid *InvalidSettingError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "maybe", invalid.Value)
}

func TestSettings_Int(t *testing.T) {
	s := NewSettings(MapStore{"Port": "8443", "Bad": "x"})

	v, err := s.Int("Port", true)
	require.NoError(t, err)
	assert.Equal(t, 8443, v)

	v, err = s.Int("Missing", false)
	require.NoError(t, err)
	assert.Zero(t, v)

	_, err = s.Int("Bad", false)
	assert.Error(t, err)
}

func TestSettings_Secret(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)
	enc, err := Encrypt("piadmin", key)
	require.NoError(t, err)

	s := NewSettings(MapStore{
		constants.SettingPIWebAPIUser:  enc,
		constants.SettingEncryptionKey: key,
	})

	user, err := s.PIWebAPIUser()
	require.NoError(t, err)
	assert.Equal(t, "piadmin", user)

	// Absent optional secrets never touch the key
	password, err := s.PIWebAPIPassword()
	require.NoError(t, err)
	assert.Empty(t, password)

	noKey := NewSettings(MapStore{constants.SettingPIWebAPIUser: enc})
	_, err = noKey.PIWebAPIUser()
	var missing *MissingSettingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, constants.SettingEncryptionKey, missing.Name)
}

func TestLayered(t *testing.T) {
	l := Layered{nil, MapStore{"A": "first"}, MapStore{"A": "second", "B": "b"}}

	v, ok := l.Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = l.Lookup("B")
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = l.Lookup("C")
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.env")
	require.NoError(t, os.WriteFile(path, []byte("AFServer=af01\nAFDatabase=Tests\n"), 0o600))

	t.Setenv(EnvName("AFDatabase"), "Override")

	store, err := Load(path)
	require.NoError(t, err)

	v, ok := store.Lookup("AFServer")
	assert.True(t, ok)
	assert.Equal(t, "af01", v)

	v, ok = store.Lookup("AFDatabase")
	assert.True(t, ok)
	assert.Equal(t, "Override", v)

	_, err = Load(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "PITESTS_PIWEBAPI", EnvName("PIWebAPI"))
}

func TestGetEnv(t *testing.T) {
	t.Setenv("PITESTS_TEST_GETENV", "set")
	assert.Equal(t, "set", GetEnv("PITESTS_TEST_GETENV", "fallback"))
	assert.Equal(t, "fallback", GetEnv("PITESTS_TEST_GETENV_UNSET", "fallback"))
}

func TestSecretRoundTrip(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)

	enc, err := Encrypt("s3cret!", key)
	require.NoError(t, err)
	assert.NotContains(t, enc, "s3cret")

	plain, err := Decrypt(enc, key)
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", plain)

	other, err := NewKey()
	require.NoError(t, err)
	_, err = Decrypt(enc, other)
	assert.True(t, errors.Is(err, ErrDecrypt))

	_, err = Decrypt(enc, "01-02")
	assert.Error(t, err)

	_, err = Decrypt("01-02-03", key)
	assert.True(t, errors.Is(err, ErrDecrypt))
}

func TestParseBytes(t *testing.T) {
	b, err := ParseBytes("0A-ff-10")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0xff, 0x10}, b)
	assert.Equal(t, "0A-FF-10", FormatBytes(b))

	_, err = ParseBytes("")
	assert.Error(t, err)
	_, err = ParseBytes("0A-GG")
	assert.Error(t, err)
	_, err = ParseBytes("100")
	assert.Error(t, err)
}
