package sharepoint

import (
	"encoding/json"
	"fmt"
	"time"
)

// timeNow returns the current instant. Package variable so tests can pin
// the clock.
var timeNow = time.Now

// AccessToken is a bearer credential with an absolute expiration instant.
// It is immutable after construction and therefore safe to share read-only;
// an expired token is never refreshed in place — callers acquire a new one.
type AccessToken struct {
	value     string
	expiresOn time.Time
}

// NewAccessToken constructs a token from an opaque bearer value and an
// absolute expiration instant.
func NewAccessToken(value string, expiresOn time.Time) *AccessToken {
	return &AccessToken{value: value, expiresOn: expiresOn}
}

// newAccessTokenFromPayload builds a token from a token-service response
// payload. The relative "expires_in" duration is converted to an absolute
// instant exactly once, here; it is never recomputed later.
func newAccessTokenFromPayload(payload map[string]any, now time.Time) (*AccessToken, error) {
	raw, ok := ResolvePath(payload, "access_token")
	if !ok {
		return nil, fmt.Errorf("token response missing access_token")
	}

	value, err := coerceString(raw)
	if err != nil || value == "" {
		return nil, fmt.Errorf("token response has invalid access_token")
	}

	lifetime, ok := ResolvePath(payload, "expires_in")
	if !ok {
		return nil, fmt.Errorf("token response missing expires_in")
	}

	// ACS returns expires_in as a decimal string; AAD returns a number.
	seconds, err := coerceInt64(lifetime)
	if err != nil {
		return nil, fmt.Errorf("token response has invalid expires_in: %w", err)
	}

	return NewAccessToken(value, now.Add(time.Duration(seconds)*time.Second)), nil
}

// Value returns the opaque bearer string.
func (t *AccessToken) Value() string {
	return t.value
}

// ExpiresOn returns the absolute expiration instant.
func (t *AccessToken) ExpiresOn() time.Time {
	return t.expiresOn
}

// HasExpired reports whether the current instant is at or past the
// expiration instant. Pure predicate — evaluating it never mutates the
// token, and an expired token stays expired.
func (t *AccessToken) HasExpired() bool {
	return !timeNow().Before(t.expiresOn)
}

// serializedToken is the wire form of an AccessToken: the bearer value,
// the expiration as epoch seconds, and the timezone identifier needed to
// reconstruct the same absolute instant.
type serializedToken struct {
	Value     string `json:"value"`
	ExpiresOn int64  `json:"expires_on"`
	Timezone  string `json:"tz"`
}

// MarshalJSON implements json.Marshaler.
func (t *AccessToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(serializedToken{
		Value:     t.value,
		ExpiresOn: t.expiresOn.Unix(),
		Timezone:  t.expiresOn.Location().String(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. The expiration round-trips
// exactly (epoch seconds in the recorded timezone); it is not re-derived
// from the current time, so HasExpired gives the same answer as the
// original at any evaluation instant.
func (t *AccessToken) UnmarshalJSON(data []byte) error {
	var st serializedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("sharepoint: decoding token: %w", err)
	}

	loc, err := time.LoadLocation(st.Timezone)
	if err != nil {
		return fmt.Errorf("sharepoint: token has unknown timezone %q", st.Timezone)
	}

	t.value = st.Value
	t.expiresOn = time.Unix(st.ExpiresOn, 0).In(loc)

	return nil
}

// Serialize encodes the token for persistence.
func (t *AccessToken) Serialize() ([]byte, error) {
	return json.Marshal(t)
}

// DeserializeAccessToken reconstructs a token produced by Serialize.
func DeserializeAccessToken(data []byte) (*AccessToken, error) {
	var t AccessToken
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// String masks the bearer value so tokens can be logged safely.
func (t *AccessToken) String() string {
	masked := t.value
	if len(masked) > 8 {
		masked = masked[:8] + "..."
	}

	return fmt.Sprintf("AccessToken(%s, expires %s)", masked, t.expiresOn.Format(time.RFC3339))
}

var _ fmt.Stringer = (*AccessToken)(nil)
