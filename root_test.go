package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlaine/spo-go/internal/config"
)

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()

	want := []string{
		"login", "logout", "whoami",
		"lists", "items", "item-add", "item-rm",
		"ls", "get", "put", "rm", "mkdir", "mv", "cp",
	}

	got := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		got[sub.Name()] = true
	}

	for _, name := range want {
		assert.True(t, got[name], "missing subcommand %q", name)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, flag := range []string{"config", "site", "strict", "json", "verbose", "quiet"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestBuildLogger_Levels(t *testing.T) {
	t.Cleanup(func() {
		resolvedCfg = nil
		flagVerbose = false
		flagQuiet = false
	})

	resolvedCfg = config.DefaultConfig()
	resolvedCfg.Logging.LogLevel = "warn"
	resolvedCfg.Logging.LogFormat = "text"

	logger := buildLogger()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), -4)) // debug disabled
	assert.True(t, logger.Enabled(context.Background(), 4))   // warn enabled

	// --verbose wins over config.
	flagVerbose = true
	logger = buildLogger()
	assert.True(t, logger.Enabled(context.Background(), -4))

	// --quiet wins over everything.
	flagVerbose = false
	flagQuiet = true
	logger = buildLogger()
	assert.False(t, logger.Enabled(context.Background(), 4))
	assert.True(t, logger.Enabled(context.Background(), 8)) // error still enabled
}

func TestAuthConfig_MapsResolvedConfig(t *testing.T) {
	t.Cleanup(func() { resolvedCfg = nil })

	resolvedCfg = config.DefaultConfig()
	resolvedCfg.Auth.ClientID = "id"
	resolvedCfg.Auth.ClientSecret = "secret"
	resolvedCfg.Auth.AuthorityURL = "https://login.example.com/token"
	resolvedCfg.Auth.Resource = "principal/host@realm"

	cfg := authConfig()
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, "https://login.example.com/token", cfg.AuthorityURL)
	assert.Equal(t, "principal/host@realm", cfg.Resource)
}
