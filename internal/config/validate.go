package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Validation bounds.
const (
	minConnectTimeout = 1 * time.Second
	minRequestTimeout = 5 * time.Second
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"auto": true, "text": true, "json": true,
}

// Validate checks all configuration values and returns all errors found. It
// accumulates every error rather than stopping at the first, so users see a
// complete report and can fix all issues in one pass.
//
// Credential completeness is not checked here — which auth fields are
// required depends on the flow being used, so that check happens at token
// acquisition.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateSite(&cfg.Site)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateSite(s *SiteConfig) []error {
	if s.URL == "" {
		return nil // supplied later via env or flag
	}

	if err := checkAbsoluteURL(s.URL); err != nil {
		return []error{fmt.Errorf("site.url: %w", err)}
	}

	return nil
}

func validateAuth(a *AuthConfig) []error {
	if a.AuthorityURL == "" {
		return nil
	}

	if err := checkAbsoluteURL(a.AuthorityURL); err != nil {
		return []error{fmt.Errorf("auth.authority_url: %w", err)}
	}

	return nil
}

func validateNetwork(n *NetworkConfig) []error {
	var errs []error

	if d, err := time.ParseDuration(n.ConnectTimeout); err != nil {
		errs = append(errs, fmt.Errorf("network.connect_timeout: invalid duration %q", n.ConnectTimeout))
	} else if d < minConnectTimeout {
		errs = append(errs, fmt.Errorf("network.connect_timeout: must be at least %s, got %s", minConnectTimeout, d))
	}

	if d, err := time.ParseDuration(n.RequestTimeout); err != nil {
		errs = append(errs, fmt.Errorf("network.request_timeout: invalid duration %q", n.RequestTimeout))
	} else if d < minRequestTimeout {
		errs = append(errs, fmt.Errorf("network.request_timeout: must be at least %s, got %s", minRequestTimeout, d))
	}

	return errs
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	if !validLogLevels[l.LogLevel] {
		errs = append(errs, fmt.Errorf("logging.log_level: must be debug, info, warn, or error, got %q", l.LogLevel))
	}

	if !validLogFormats[l.LogFormat] {
		errs = append(errs, fmt.Errorf("logging.log_format: must be auto, text, or json, got %q", l.LogFormat))
	}

	return errs
}

func checkAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("must be an absolute URL, got %q", raw)
	}

	return nil
}
