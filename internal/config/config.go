// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for spo-go. It supports a four-layer
// override chain (defaults -> config file -> environment -> CLI flags).
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Site      SiteConfig      `toml:"site"`
	Auth      AuthConfig      `toml:"auth"`
	Hydration HydrationConfig `toml:"hydration"`
	Network   NetworkConfig   `toml:"network"`
	Logging   LoggingConfig   `toml:"logging"`
}

// SiteConfig identifies the site collection the client talks to.
type SiteConfig struct {
	URL string `toml:"url"`
}

// AuthConfig holds the app registration credentials. authority_url and
// resource are only needed for the app-only flow; the delegated flow
// discovers its token service from the context assertion.
type AuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AuthorityURL string `toml:"authority_url"`
	Resource     string `toml:"resource"`
}

// HydrationConfig controls how payloads map onto entities. With strict
// enabled, a declared field path missing from a payload is an error instead
// of being skipped.
type HydrationConfig struct {
	Strict bool `toml:"strict"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	ConnectTimeout string `toml:"connect_timeout"`
	RequestTimeout string `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to zero value" — --strict=false is different from
// not passing --strict at all.
type CLIOverrides struct {
	ConfigPath string // --config flag (empty = use default)
	SiteURL    string // --site flag
	Strict     *bool  // --strict flag
}
