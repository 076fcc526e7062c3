package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jlaine/spo-go/internal/config"
	"github.com/jlaine/spo-go/internal/sharepoint"
	"github.com/jlaine/spo-go/internal/tokenfile"
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Acquire and save an access token",
		Long: `Acquire an access token and save it for later commands.

Without flags the app-only client-credentials flow is used, which needs
auth.client_id, auth.client_secret, auth.authority_url, and auth.resource.

With --assertion-file the delegated context-token flow is used: the file
must contain a context assertion received from SharePoint, and the token
is acquired on behalf of the user it names.`,
		RunE: runLogin,
	}

	cmd.Flags().String("assertion-file", "", "file containing a context assertion for the delegated flow")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved access token",
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the saved token and site info",
		RunE:  runWhoami,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)

	assertionFile, err := cmd.Flags().GetString("assertion-file")
	if err != nil {
		return err
	}

	var tok *sharepoint.AccessToken

	if assertionFile != "" {
		raw, readErr := os.ReadFile(assertionFile)
		if readErr != nil {
			return fmt.Errorf("reading assertion file: %w", readErr)
		}

		assertion := strings.TrimSpace(string(raw))

		tok, err = sharepoint.AcquireUserToken(ctx, authConfig(), resolvedCfg.Site.URL, assertion, newHTTPClient(), nil, logger)
	} else {
		tok, err = sharepoint.AcquireAppOnlyToken(ctx, authConfig(), newHTTPClient(), nil, logger)
	}

	if err != nil {
		return err
	}

	if err := tokenfile.Save(config.DefaultTokenPath(), tok); err != nil {
		return err
	}

	logger.Info("login successful", "expires_on", tok.ExpiresOn())
	statusf("Login successful. Token expires %s.\n", tok.ExpiresOn().Format(time.RFC3339))

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	if err := tokenfile.Remove(config.DefaultTokenPath()); err != nil {
		return err
	}

	logger.Info("logout successful")
	statusf("Logged out.\n")

	return nil
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	SiteURL   string `json:"site_url"`
	SiteTitle string `json:"site_title"`
	ExpiresOn string `json:"token_expires_on"`
	Expired   bool   `json:"token_expired"`
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	tok, err := tokenfile.Load(config.DefaultTokenPath())
	if err != nil {
		return err
	}

	if tok == nil {
		return fmt.Errorf("not logged in — run 'spo login' first")
	}

	// An expired token still has a reportable state; skip the site fetch.
	var siteTitle, siteURL string

	if !tok.HasExpired() {
		site, siteErr := siteClient(logger)
		if siteErr != nil {
			return siteErr
		}

		if err := site.Load(ctx, nil); err != nil {
			return fmt.Errorf("fetching site info: %w", err)
		}

		siteTitle, siteURL = site.Title, site.URL
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(whoamiOutput{
			SiteURL:   siteURL,
			SiteTitle: siteTitle,
			ExpiresOn: tok.ExpiresOn().Format(time.RFC3339),
			Expired:   tok.HasExpired(),
		})
	}

	if siteURL != "" {
		fmt.Printf("Site:    %s (%s)\n", siteTitle, siteURL)
	}

	fmt.Printf("Token:   expires %s\n", tok.ExpiresOn().Format(time.RFC3339))

	if tok.HasExpired() {
		fmt.Printf("Status:  expired — run 'spo login' again\n")
	} else {
		fmt.Printf("Status:  valid\n")
	}

	return nil
}
