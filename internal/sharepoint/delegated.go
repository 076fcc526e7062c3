package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// contextAssertion holds the claims extracted from a verified context
// token: the refresh token to exchange, the token-service endpoint from the
// appctx sub-claim, and the sender identity ("principal@realm").
type contextAssertion struct {
	refreshToken string
	stsURI       string
	sender       string
}

// appContext is the JSON-encoded appctx sub-claim.
type appContext struct {
	SecurityTokenServiceURI string `json:"SecurityTokenServiceUri"`
}

// AcquireUserToken obtains a delegated access token by verifying a signed
// context assertion and exchanging its refresh token at the token service
// the assertion names. siteURL identifies the site the token is requested
// for; its hostname becomes part of the resource identifier.
//
// The assertion is an HMAC-SHA256 JWT signed with the shared client secret.
// Verification or decoding failures surface as AuthError; transport
// failures as TransportError. No retries.
func AcquireUserToken(
	ctx context.Context,
	cfg AuthConfig,
	siteURL string,
	assertion string,
	httpClient *http.Client,
	extra url.Values,
	logger *slog.Logger,
) (*AccessToken, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.ClientSecret == "" {
		return nil, &ConfigError{Field: "client_secret"}
	}

	host, err := siteHost(siteURL)
	if err != nil {
		return nil, &ConfigError{Field: "site_url"}
	}

	ca, err := verifyContextAssertion(assertion, cfg.ClientSecret)
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	// The resource identifier is the sender claim with the site hostname
	// inserted at the '@' delimiter: "app@tenant" + "host" -> "app/host@tenant".
	principal, realm, found := strings.Cut(ca.sender, "@")
	if !found {
		return nil, &AuthError{Err: fmt.Errorf("sender claim %q has no realm", ca.sender)}
	}

	resource := principal + "/" + host + "@" + realm

	logger.Info("acquiring delegated token",
		slog.String("token_service", ca.stsURI),
		slog.String("resource", resource),
	)

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {cfg.ClientID + "@" + realm},
		"client_secret": {cfg.ClientSecret},
		"refresh_token": {ca.refreshToken},
		"resource":      {resource},
	}
	for key, values := range extra {
		form[key] = values
	}

	payload, err := exchangeForm(ctx, httpClient, ca.stsURI, form)
	if err != nil {
		return nil, err
	}

	token, err := newAccessTokenFromPayload(payload, timeNow())
	if err != nil {
		return nil, fmt.Errorf("sharepoint: %w", err)
	}

	logger.Info("delegated token acquired", slog.Time("expires_on", token.ExpiresOn()))

	return token, nil
}

// verifyContextAssertion checks the assertion's HMAC-SHA256 signature
// against the shared secret and extracts the claims needed for the
// exchange. Malformed assertions, wrong algorithms, and bad signatures all
// fail here.
func verifyContextAssertion(assertion, secret string) (*contextAssertion, error) {
	claims := jwt.MapClaims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	_, err := parser.ParseWithClaims(assertion, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("verifying context assertion: %w", err)
	}

	refreshToken, err := stringClaim(claims, "refreshtoken")
	if err != nil {
		return nil, err
	}

	sender, err := stringClaim(claims, "iss")
	if err != nil {
		return nil, err
	}

	rawCtx, err := stringClaim(claims, "appctx")
	if err != nil {
		return nil, err
	}

	var appCtx appContext
	if err := json.Unmarshal([]byte(rawCtx), &appCtx); err != nil {
		return nil, fmt.Errorf("decoding appctx claim: %w", err)
	}

	if appCtx.SecurityTokenServiceURI == "" {
		return nil, fmt.Errorf("appctx claim missing token service URI")
	}

	return &contextAssertion{
		refreshToken: refreshToken,
		stsURI:       appCtx.SecurityTokenServiceURI,
		sender:       sender,
	}, nil
}

// stringClaim extracts a required non-empty string claim.
func stringClaim(claims jwt.MapClaims, name string) (string, error) {
	raw, ok := claims[name]
	if !ok {
		return "", fmt.Errorf("assertion missing %q claim", name)
	}

	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("assertion has invalid %q claim", name)
	}

	return s, nil
}

// siteHost extracts the hostname from an absolute site URL.
func siteHost(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid site URL %q", siteURL)
	}

	return u.Hostname(), nil
}
