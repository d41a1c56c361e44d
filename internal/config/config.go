package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Log
		Mouser
		DigiKey
		InvenTree
		Importer
		Database
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Log struct {
		Level       string
		Development bool
	}
	Mouser struct {
		APIKey    string
		CompanyID int    // destination company id for Mouser supplier links
		Locale    string // e.g. "www.mouser.com"
		SearchURL string
	}
	DigiKey struct {
		ClientID          string
		ClientSecret      string
		CompanyID         int // destination company id for Digi-Key supplier links
		TokenURL          string
		ProductDetailsURL string
	}
	InvenTree struct {
		BaseURL              string
		Token                string
		AutoCreateCategories bool
		TimeoutInSeconds     int
	}
	Importer struct {
		DefaultCurrency  string
		DefaultCountry   string
		TimeoutInSeconds int // per supplier fetch
	}
	Database struct {
		Path string
	}
	Audit struct {
		Enabled         bool
		RetentionDays   int
		CleanupSchedule string // cron format: "30 3 * * *" = daily at 03:30
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	v.SetDefault("mouser_api_key", "")
	v.SetDefault("mouser_locale", "www.mouser.com")
	v.SetDefault("mouser_url", "https://api.mouser.com/api/v1/search/partnumber")
	v.SetDefault("inventree_mouser_company_id", 0)

	v.SetDefault("digikey_client_id", "")
	v.SetDefault("digikey_client_secret", "")
	v.SetDefault("digikey_token_url", "https://api.digikey.com/v1/token")
	v.SetDefault("digikey_product_details_url", "https://api.digikey.com/services/products/v4/productdetails")
	v.SetDefault("inventree_digikey_company_id", 0)

	v.SetDefault("inventree_base_url", "")
	v.SetDefault("inventree_token", "")
	v.SetDefault("inventree_auto_create_categories", false)
	v.SetDefault("inventree_timeout_in_seconds", 30)

	v.SetDefault("default_currency", "EUR")
	v.SetDefault("default_country", "PT")
	v.SetDefault("importer_timeout_in_seconds", 30)

	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Mouser: Mouser{
			APIKey:    v.GetString("MOUSER_API_KEY"),
			CompanyID: v.GetInt("INVENTREE_MOUSER_COMPANY_ID"),
			Locale:    v.GetString("MOUSER_LOCALE"),
			SearchURL: v.GetString("MOUSER_URL"),
		},
		DigiKey: DigiKey{
			ClientID:          v.GetString("DIGIKEY_CLIENT_ID"),
			ClientSecret:      v.GetString("DIGIKEY_CLIENT_SECRET"),
			CompanyID:         v.GetInt("INVENTREE_DIGIKEY_COMPANY_ID"),
			TokenURL:          v.GetString("DIGIKEY_TOKEN_URL"),
			ProductDetailsURL: v.GetString("DIGIKEY_PRODUCT_DETAILS_URL"),
		},
		InvenTree: InvenTree{
			BaseURL:              v.GetString("INVENTREE_BASE_URL"),
			Token:                v.GetString("INVENTREE_TOKEN"),
			AutoCreateCategories: v.GetBool("INVENTREE_AUTO_CREATE_CATEGORIES"),
			TimeoutInSeconds:     v.GetInt("INVENTREE_TIMEOUT_IN_SECONDS"),
		},
		Importer: Importer{
			DefaultCurrency:  v.GetString("DEFAULT_CURRENCY"),
			DefaultCountry:   v.GetString("DEFAULT_COUNTRY"),
			TimeoutInSeconds: v.GetInt("IMPORTER_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
	}
}
