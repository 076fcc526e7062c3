package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig       = "SPO_CONFIG"
	EnvSiteURL      = "SPO_SITE_URL"
	EnvClientID     = "SPO_CLIENT_ID"
	EnvClientSecret = "SPO_CLIENT_SECRET"
)

// EnvOverrides holds values derived from environment variables. The secret
// override exists so CI jobs can avoid writing credentials to disk.
type EnvOverrides struct {
	ConfigPath   string // SPO_CONFIG: override config file path
	SiteURL      string // SPO_SITE_URL: site collection URL
	ClientID     string // SPO_CLIENT_ID: app registration id
	ClientSecret string // SPO_CLIENT_SECRET: app registration secret
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; callers apply the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		SiteURL:      os.Getenv(EnvSiteURL),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
}
