package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/envelope"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("BOOKS_TEST_DIR", "/srv/books")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde only", in: "~", want: home},
		{name: "tilde path", in: "~/books.db", want: filepath.Join(home, "books.db")},
		{name: "env var", in: "$BOOKS_TEST_DIR/books.db", want: "/srv/books/books.db"},
		{name: "absolute", in: "/var/lib/books.db", want: "/var/lib/books.db"},
		{name: "tilde in middle", in: "/tmp/~user", want: "/tmp/~user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDirsHonorXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	assert.Equal(t, "/xdg/config/books", ConfigDir())
	assert.Equal(t, "/xdg/data/books", DataDir())
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	v := viper.New()
	SetDefaults(v)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/xdg/data/books/books.db", s.DatabasePath)
	assert.Equal(t, envelope.MethodPriority, s.AllocationMethod)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)

	v.Set(KeyAllocationMethod, "Proportional")
	v.Set(KeyDatabasePath, "/tmp/other.db")
	s, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, envelope.MethodProportional, s.AllocationMethod)
	assert.Equal(t, "/tmp/other.db", s.DatabasePath)
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		wantErr error
		set     map[string]any
		name    string
	}{
		{name: "bad method", set: map[string]any{KeyAllocationMethod: "random"}, wantErr: common.ErrInvalidConfig},
		{name: "bad level", set: map[string]any{KeyLogLevel: "loud"}, wantErr: common.ErrInvalidConfig},
		{name: "no database", set: map[string]any{KeyDatabasePath: ""}, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
		})
	}
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, env := range []string{
		"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_TOKEN_FILE", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
		"GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_SPREADSHEET_NAME",
	} {
		t.Setenv(env, "")
	}
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	v := viper.New()
	SetDefaults(v)

	_, err = LoadSheetsConfig(v)
	assert.True(t, errors.Is(err, common.ErrMissingConfig))

	v.Set("sheets.service_account_path", "~/keys/sa.json")
	v.Set("sheets.spreadsheet_id", "abc123")
	v.Set("sheets.enable_formatting", false)

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "sa.json"), cfg.ServiceAccountPath)
	assert.Equal(t, "abc123", cfg.SpreadsheetID)
	assert.False(t, cfg.EnableFormatting)

	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "Family")
	cfg, err = LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "Family", cfg.SpreadsheetName)
}

func TestLoadSheetsAuthConfig(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_TOKEN_FILE", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	v := viper.New()
	_, err := LoadSheetsAuthConfig(v)
	assert.True(t, errors.Is(err, common.ErrMissingConfig))

	v.Set("sheets.client_id", "id")
	v.Set("sheets.client_secret", "secret")
	cfg, err := LoadSheetsAuthConfig(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName, DefaultTokenFileName), cfg.TokenFile)

	v.Set("sheets.token_file", "/srv/token.json")
	cfg, err = LoadSheetsAuthConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/token.json", cfg.TokenFile)
}
