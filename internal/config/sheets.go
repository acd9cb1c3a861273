package config

import (
	"fmt"
	"path/filepath"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/sheets"
	"github.com/spf13/viper"
)

// DefaultTokenFileName is where `export auth` stores the OAuth2 token when
// sheets.token_file is not configured.
const DefaultTokenFileName = "sheets-token.json"

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or BOOKS_SHEETS_* env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	config := readSheetsConfig(v)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadSheetsAuthConfig loads the OAuth2 client settings needed to run the
// authorization flow. Only the client id and secret are required.
func LoadSheetsAuthConfig(v *viper.Viper) (*sheets.Config, error) {
	config := readSheetsConfig(v)
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: sheets.client_id and sheets.client_secret are required", common.ErrMissingConfig)
	}
	if config.TokenFile == "" {
		config.TokenFile = filepath.Join(ConfigDir(), DefaultTokenFileName)
	}
	return &config, nil
}

func readSheetsConfig(v *viper.Viper) sheets.Config {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = v.GetString("sheets.service_account_path")
	config.TokenFile = v.GetString("sheets.token_file")
	config.ClientID = v.GetString("sheets.client_id")
	config.ClientSecret = v.GetString("sheets.client_secret")
	config.RefreshToken = v.GetString("sheets.refresh_token")
	config.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if name := v.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		config.TimeZone = tz
	}
	if v.IsSet("sheets.enable_formatting") {
		config.EnableFormatting = v.GetBool("sheets.enable_formatting")
	}
	if v.IsSet("sheets.retry_attempts") {
		config.RetryAttempts = v.GetInt("sheets.retry_attempts")
	}

	config.LoadFromEnv()
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)
	config.TokenFile = ExpandPath(config.TokenFile)
	return config
}
