package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_SiteURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Site.URL = "contoso.sharepoint.com/sites/dev"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site.url")

	cfg.Site.URL = "https://contoso.sharepoint.com/sites/dev"
	assert.NoError(t, Validate(cfg))
}

func TestValidate_AuthorityURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.AuthorityURL = "/tokens/OAuth/2"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.authority_url")
}

func TestValidate_Timeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network.ConnectTimeout = "never"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect_timeout")

	cfg.Network.ConnectTimeout = "100ms"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")

	cfg.Network.ConnectTimeout = "2s"
	cfg.Network.RequestTimeout = "1s"
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout")
}

func TestValidate_Logging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.LogLevel = "trace"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")

	cfg = DefaultConfig()
	cfg.Logging.LogFormat = "xml"

	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_format")
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Site.URL = "not-a-url"
	cfg.Network.ConnectTimeout = "bogus"
	cfg.Logging.LogLevel = "loud"

	err := Validate(cfg)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "site.url")
	assert.Contains(t, msg, "connect_timeout")
	assert.Contains(t, msg, "log_level")
}
