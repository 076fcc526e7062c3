package sharepoint

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "shared-client-secret"
	testSite   = "https://contoso.sharepoint.com/sites/dev"
)

// signAssertion builds an HMAC-SHA256 context assertion the way the remote
// would, pointing its token service at stsURL.
func signAssertion(t *testing.T, secret, stsURL string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss":          "app-principal@tenant-id",
		"aud":          "client-id/contoso.sharepoint.com@tenant-id",
		"refreshtoken": "the-refresh-token",
		"appctx":       fmt.Sprintf(`{"SecurityTokenServiceUri":%q}`, stsURL),
		"exp":          time.Now().Add(time.Hour).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return signed
}

func newTokenService(t *testing.T, capture *url.Values) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		if capture != nil {
			*capture = r.PostForm
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"user-token","expires_in":"3600"}`))
	}))
}

func TestAcquireUserToken_Success(t *testing.T) {
	var gotForm url.Values

	srv := newTokenService(t, &gotForm)
	defer srv.Close()

	cfg := AuthConfig{ClientID: "client-id", ClientSecret: testSecret}
	assertion := signAssertion(t, testSecret, srv.URL)

	pinClock(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	tok, err := AcquireUserToken(context.Background(), cfg, testSite, assertion, srv.Client(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "user-token", tok.Value())
	assert.Equal(t, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), tok.ExpiresOn())

	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
	assert.Equal(t, "client-id@tenant-id", gotForm.Get("client_id"))
	assert.Equal(t, testSecret, gotForm.Get("client_secret"))
	assert.Equal(t, "the-refresh-token", gotForm.Get("refresh_token"))
	// The sender claim with the site host spliced in at the realm delimiter.
	assert.Equal(t, "app-principal/contoso.sharepoint.com@tenant-id", gotForm.Get("resource"))
}

func TestAcquireUserToken_ExtraFormValues(t *testing.T) {
	var gotForm url.Values

	srv := newTokenService(t, &gotForm)
	defer srv.Close()

	cfg := AuthConfig{ClientID: "client-id", ClientSecret: testSecret}
	assertion := signAssertion(t, testSecret, srv.URL)

	_, err := AcquireUserToken(context.Background(), cfg, testSite, assertion, srv.Client(),
		url.Values{"redirect_uri": {"https://app.example.com/callback"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://app.example.com/callback", gotForm.Get("redirect_uri"))
}

func TestAcquireUserToken_BadSignature(t *testing.T) {
	srv := newTokenService(t, nil)
	defer srv.Close()

	cfg := AuthConfig{ClientID: "client-id", ClientSecret: testSecret}
	assertion := signAssertion(t, "some-other-secret", srv.URL)

	_, err := AcquireUserToken(context.Background(), cfg, testSite, assertion, srv.Client(), nil, nil)
	require.Error(t, err)

	var aerr *AuthError
	assert.ErrorAs(t, err, &aerr)
}

func TestAcquireUserToken_MalformedAssertion(t *testing.T) {
	cfg := AuthConfig{ClientID: "client-id", ClientSecret: testSecret}

	_, err := AcquireUserToken(context.Background(), cfg, testSite, "not.a.jwt", nil, nil, nil)
	require.Error(t, err)

	var aerr *AuthError
	assert.ErrorAs(t, err, &aerr)
}

func TestAcquireUserToken_MissingClaims(t *testing.T) {
	cfg := AuthConfig{ClientID: "client-id", ClientSecret: testSecret}

	claims := jwt.MapClaims{
		"iss": "app-principal@tenant-id",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = AcquireUserToken(context.Background(), cfg, testSite, assertion, nil, nil, nil)
	require.Error(t, err)

	var aerr *AuthError
	assert.ErrorAs(t, err, &aerr)
}

func TestAcquireUserToken_SenderWithoutRealm(t *testing.T) {
	srv := newTokenService(t, nil)
	defer srv.Close()

	cfg := AuthConfig{ClientID: "client-id", ClientSecret: testSecret}

	claims := jwt.MapClaims{
		"iss":          "no-realm-here",
		"refreshtoken": "rt",
		"appctx":       fmt.Sprintf(`{"SecurityTokenServiceUri":%q}`, srv.URL),
		"exp":          time.Now().Add(time.Hour).Unix(),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = AcquireUserToken(context.Background(), cfg, testSite, assertion, srv.Client(), nil, nil)
	require.Error(t, err)

	var aerr *AuthError
	assert.ErrorAs(t, err, &aerr)
}

func TestAcquireUserToken_ConfigErrors(t *testing.T) {
	_, err := AcquireUserToken(context.Background(), AuthConfig{}, testSite, "x", nil, nil, nil)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "client_secret", cerr.Field)

	cfg := AuthConfig{ClientSecret: testSecret}

	_, err = AcquireUserToken(context.Background(), cfg, "://bad", "x", nil, nil, nil)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "site_url", cerr.Field)
}

func TestAcquireUserToken_TokenServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	cfg := AuthConfig{ClientID: "client-id", ClientSecret: testSecret}
	assertion := signAssertion(t, testSecret, srv.URL)

	_, err := AcquireUserToken(context.Background(), cfg, testSite, assertion, srv.Client(), nil, nil)
	require.Error(t, err)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.ErrorIs(t, err, ErrServerError)
}
