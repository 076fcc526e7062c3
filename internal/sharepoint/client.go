package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultUserAgent = "spo-go/0.1"

	// digestSlack is subtracted from the form digest lifetime so a digest
	// is never presented right at its expiry boundary.
	digestSlack = 30 * time.Second
)

// RequestOptions carries the optional parts of a REST request. All fields
// may be nil/empty.
type RequestOptions struct {
	Query   url.Values
	Headers http.Header
	Body    any    // JSON-encoded when non-nil
	Raw     []byte // raw request body; takes precedence over Body
}

// RequestIssuer is the capability entities use to talk to the remote API.
// Client implements it; entities hold a non-owning reference to the issuer
// that created them.
type RequestIssuer interface {
	// Request issues a call and decodes the JSON response body. Empty
	// bodies (204, mutations) yield an empty map.
	Request(ctx context.Context, method, path string, opt *RequestOptions) (map[string]any, error)
	// RequestBytes issues a call and returns the raw response body, for
	// binary content retrieval.
	RequestBytes(ctx context.Context, method, path string, opt *RequestOptions) ([]byte, error)
	// AccessToken returns the bearer credential threaded into requests.
	AccessToken() *AccessToken
	// FormDigest returns a request digest valid for mutating calls,
	// fetching a fresh one when the cached digest has expired.
	FormDigest(ctx context.Context) (string, error)
}

// Client issues one-shot requests against a site's REST endpoint. Every
// call is a single blocking request — no retries, no batching; failures
// propagate synchronously as TransportError.
//
// Client is not safe for concurrent use: the form digest cache is unsynchronized.
type Client struct {
	siteURL    string
	httpClient *http.Client
	token      *AccessToken
	logger     *slog.Logger
	userAgent  string

	digest        string
	digestExpires time.Time
}

// NewClient creates a REST client for the given site URL
// (e.g. "https://contoso.sharepoint.com/sites/dev"). token may be nil for
// anonymous endpoints; httpClient nil falls back to http.DefaultClient.
func NewClient(siteURL string, httpClient *http.Client, token *AccessToken, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		siteURL:    strings.TrimRight(siteURL, "/"),
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  defaultUserAgent,
	}
}

// AccessToken returns the client's bearer credential (nil when anonymous).
func (c *Client) AccessToken() *AccessToken {
	return c.token
}

// Request issues a call against the site's _api endpoint and decodes the
// JSON response. The path is relative to _api (e.g. "/web/lists").
func (c *Client) Request(ctx context.Context, method, path string, opt *RequestOptions) (map[string]any, error) {
	body, err := c.RequestBytes(ctx, method, path, opt)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("sharepoint: decoding %s %s response: %w", method, path, err)
	}

	return payload, nil
}

// RequestBytes issues a call and returns the raw response body.
func (c *Client) RequestBytes(ctx context.Context, method, path string, opt *RequestOptions) ([]byte, error) {
	fullURL := c.siteURL + "/_api" + path
	if opt != nil && len(opt.Query) > 0 {
		fullURL += "?" + opt.Query.Encode()
	}

	var reqBody io.Reader

	contentType := "application/json;odata=nometadata"

	switch {
	case opt != nil && opt.Raw != nil:
		reqBody = bytes.NewReader(opt.Raw)
		contentType = "application/octet-stream"
	case opt != nil && opt.Body != nil:
		encoded, err := json.Marshal(opt.Body)
		if err != nil {
			return nil, fmt.Errorf("sharepoint: encoding %s %s request: %w", method, path, err)
		}

		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	req.Header.Set("Accept", "application/json;odata=nometadata")
	req.Header.Set("User-Agent", c.userAgent)

	if c.token != nil {
		req.Header.Set("Authorization", "Bearer "+c.token.Value())
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", contentType)
	}

	if opt != nil {
		for key, values := range opt.Headers {
			req.Header[key] = values
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)

		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Err:        classifyStatus(resp.StatusCode),
		}
	}

	c.logger.Debug("request succeeded",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return body, nil
}

// FormDigest returns the anti-forgery digest required by mutating
// endpoints, fetching a new one from contextinfo when the cached digest
// has passed its validity window.
func (c *Client) FormDigest(ctx context.Context) (string, error) {
	if c.digest != "" && timeNow().Before(c.digestExpires) {
		return c.digest, nil
	}

	payload, err := c.Request(ctx, http.MethodPost, "/contextinfo", nil)
	if err != nil {
		return "", fmt.Errorf("sharepoint: fetching form digest: %w", err)
	}

	raw, ok := ResolvePath(payload, "FormDigestValue")
	if !ok {
		return "", fmt.Errorf("sharepoint: contextinfo response missing FormDigestValue")
	}

	digest, err := coerceString(raw)
	if err != nil {
		return "", fmt.Errorf("sharepoint: contextinfo response: %w", err)
	}

	lifetime := 30 * time.Minute

	if raw, ok := ResolvePath(payload, "FormDigestTimeoutSeconds"); ok {
		if seconds, err := coerceInt64(raw); err == nil && seconds > 0 {
			lifetime = time.Duration(seconds) * time.Second
		}
	}

	c.digest = digest
	c.digestExpires = timeNow().Add(lifetime - digestSlack)

	c.logger.Debug("form digest refreshed", slog.Time("expires", c.digestExpires))

	return digest, nil
}

var _ RequestIssuer = (*Client)(nil)

// QueryOptions express OData query parameters on collection fetches.
type QueryOptions struct {
	Select []string
	Expand []string
	Filter string
	Top    int
}

// values renders the options as URL query parameters.
func (q *QueryOptions) values() url.Values {
	v := url.Values{}

	if q == nil {
		return v
	}

	if len(q.Select) > 0 {
		v.Set("$select", strings.Join(q.Select, ","))
	}

	if len(q.Expand) > 0 {
		v.Set("$expand", strings.Join(q.Expand, ","))
	}

	if q.Filter != "" {
		v.Set("$filter", q.Filter)
	}

	if q.Top > 0 {
		v.Set("$top", fmt.Sprintf("%d", q.Top))
	}

	return v
}

// escapeODataString doubles single quotes for safe interpolation inside
// OData string literals like getbytitle('...').
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
