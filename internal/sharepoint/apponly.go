package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthConfig carries the credential material for token acquisition.
type AuthConfig struct {
	// ClientID is the registered application (principal) id.
	ClientID string
	// ClientSecret is the shared secret, used both to verify context
	// assertions and as the client credential in exchanges.
	ClientSecret string
	// AuthorityURL is the token endpoint for the app-only flow. Must be a
	// well-formed absolute URL.
	AuthorityURL string
	// Resource identifies the audience the token is requested for
	// (principal/hostname@realm).
	Resource string
}

// AcquireAppOnlyToken obtains an access token via the client-credentials
// flow against the configured authority. Configuration is validated first —
// secret, authority presence, authority well-formedness, client id,
// resource, in that order — and the first failing field is reported in a
// ConfigError. Transport failures wrap into TransportError. No retries.
//
// extra entries are added to the token request form. httpClient may be nil,
// in which case http.DefaultClient is used.
func AcquireAppOnlyToken(
	ctx context.Context,
	cfg AuthConfig,
	httpClient *http.Client,
	extra url.Values,
	logger *slog.Logger,
) (*AccessToken, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := validateAppOnlyConfig(cfg); err != nil {
		return nil, err
	}

	logger.Info("acquiring app-only token",
		slog.String("authority", cfg.AuthorityURL),
		slog.String("client_id", cfg.ClientID),
		slog.String("resource", cfg.Resource),
	)

	params := url.Values{"resource": {cfg.Resource}}
	for key, values := range extra {
		params[key] = values
	}

	cc := clientcredentials.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		TokenURL:       cfg.AuthorityURL,
		EndpointParams: params,
		AuthStyle:      oauth2.AuthStyleInParams,
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	tok, err := cc.Token(ctx)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return nil, &TransportError{
				StatusCode: rerr.Response.StatusCode,
				Message:    string(rerr.Body),
				Err:        err,
			}
		}

		return nil, &TransportError{Err: err}
	}

	if tok.Expiry.IsZero() {
		return nil, fmt.Errorf("sharepoint: token response missing expiry")
	}

	token := NewAccessToken(tok.AccessToken, tok.Expiry)
	logger.Info("app-only token acquired", slog.Time("expires_on", token.ExpiresOn()))

	return token, nil
}

// validateAppOnlyConfig checks required fields in a fixed order so callers
// always learn about the same field first.
func validateAppOnlyConfig(cfg AuthConfig) error {
	if cfg.ClientSecret == "" {
		return &ConfigError{Field: "client_secret"}
	}

	if cfg.AuthorityURL == "" {
		return &ConfigError{Field: "authority_url"}
	}

	if u, err := url.Parse(cfg.AuthorityURL); err != nil || !u.IsAbs() || u.Host == "" {
		return &ConfigError{Field: "authority_url"}
	}

	if cfg.ClientID == "" {
		return &ConfigError{Field: "client_id"}
	}

	if cfg.Resource == "" {
		return &ConfigError{Field: "resource"}
	}

	return nil
}
