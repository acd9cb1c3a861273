package config

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/envelope"
	"github.com/spf13/viper"
)

// Viper keys.
const (
	KeyDatabasePath     = "database.path"
	KeyAllocationMethod = "allocation.method"
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
)

// Settings are the resolved application settings.
type Settings struct {
	DatabasePath     string
	LogLevel         string
	LogFormat        string
	AllocationMethod envelope.Method
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, filepath.Join(DataDir(), "books.db"))
	v.SetDefault(KeyAllocationMethod, string(envelope.MethodPriority))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault("sheets.enable_formatting", true)
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	method, err := envelope.ParseMethod(v.GetString(KeyAllocationMethod))
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyAllocationMethod, err)
	}

	if _, err := common.ParseLevel(v.GetString(KeyLogLevel)); err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", common.ErrInvalidConfig, KeyLogLevel, err)
	}

	dbPath := ExpandPath(v.GetString(KeyDatabasePath))
	if dbPath == "" {
		return Settings{}, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}

	return Settings{
		DatabasePath:     dbPath,
		AllocationMethod: method,
		LogLevel:         v.GetString(KeyLogLevel),
		LogFormat:        v.GetString(KeyLogFormat),
	}, nil
}
