package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlaine/spo-go/internal/config"
	"github.com/jlaine/spo-go/internal/sharepoint"
	"github.com/jlaine/spo-go/internal/tokenfile"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagSite       string
	flagStrict     bool
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// It is available to all subcommands after the root pre-run phase completes.
var resolvedCfg *config.Config

// fallbackRequestTimeout is used when the configured request timeout fails
// to parse, which validation should have prevented.
const fallbackRequestTimeout = 60 * time.Second

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spo",
		Short:   "SharePoint Online CLI client",
		Long:    "A command-line client for SharePoint Online lists, files, and folders over the REST API.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		// PersistentPreRunE resolves configuration before every command.
		// Resolve works without a config file, so nothing is skipped.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagSite, "site", "", "site collection URL")
	cmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "fail when a declared field is missing from a payload")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	// Register subcommands.
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())
	cmd.AddCommand(newListsCmd())
	cmd.AddCommand(newItemsCmd())
	cmd.AddCommand(newItemAddCmd())
	cmd.AddCommand(newItemRmCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newMkdirCmd())
	cmd.AddCommand(newMvCmd())
	cmd.AddCommand(newCpCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the four-layer
// override chain and stores the result in resolvedCfg for use by
// subcommands.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
		SiteURL:    flagSite,
	}

	// Only pass --strict to the resolver if the user explicitly set it.
	if cmd.Flags().Changed("strict") {
		cli.Strict = &flagStrict
	}

	env := config.ReadEnvOverrides()

	resolved, err := config.Resolve(env, cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = resolved

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo
	format := defaultLogFormatName

	if resolvedCfg != nil {
		switch resolvedCfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		format = resolvedCfg.Logging.LogFormat
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if resolveLogFormat(format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newHTTPClient returns an HTTP client with the configured request timeout.
// Prevents hung connections from blocking CLI commands indefinitely.
func newHTTPClient() *http.Client {
	timeout := fallbackRequestTimeout
	if d, err := time.ParseDuration(resolvedCfg.Network.RequestTimeout); err == nil {
		timeout = d
	}

	return &http.Client{Timeout: timeout}
}

// authConfig maps the resolved config onto the credential set used for
// token acquisition.
func authConfig() sharepoint.AuthConfig {
	return sharepoint.AuthConfig{
		ClientID:     resolvedCfg.Auth.ClientID,
		ClientSecret: resolvedCfg.Auth.ClientSecret,
		AuthorityURL: resolvedCfg.Auth.AuthorityURL,
		Resource:     resolvedCfg.Auth.Resource,
	}
}

// siteClient loads the saved token and binds a Site to the configured site
// URL. Fails with a login hint when no token is saved.
func siteClient(logger *slog.Logger) (*sharepoint.Site, error) {
	if resolvedCfg.Site.URL == "" {
		return nil, fmt.Errorf("no site URL configured — set site.url, %s, or --site", config.EnvSiteURL)
	}

	tok, err := tokenfile.Load(config.DefaultTokenPath())
	if err != nil {
		return nil, err
	}

	if tok == nil {
		return nil, fmt.Errorf("not logged in — run 'spo login' first")
	}

	if tok.HasExpired() {
		return nil, fmt.Errorf("saved token has expired — run 'spo login' again")
	}

	client := sharepoint.NewClient(resolvedCfg.Site.URL, newHTTPClient(), tok, logger)

	return sharepoint.NewSite(client, resolvedCfg.Hydration.Strict), nil
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
