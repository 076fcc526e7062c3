package sharepoint

import (
	"context"
	"fmt"
	"net/http"
)

// collectionValue extracts the entries of a collection response
// ({"value": [...]}) as payload maps.
func collectionValue(payload map[string]any) ([]map[string]any, error) {
	raw, ok := ResolvePath(payload, "value")
	if !ok {
		return nil, fmt.Errorf("sharepoint: collection response missing value array")
	}

	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("sharepoint: collection value is %T, not an array", raw)
	}

	out := make([]map[string]any, 0, len(entries))

	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sharepoint: collection entry is %T, not an object", entry)
		}

		out = append(out, m)
	}

	return out, nil
}

// mutationOptions builds RequestOptions for a mutating call: the form
// digest plus the X-HTTP-Method verb tunneled over POST, and an IF-MATCH
// precondition ("*" when no etag is tracked).
func mutationOptions(ctx context.Context, issuer RequestIssuer, verb string, body any) (*RequestOptions, error) {
	digest, err := issuer.FormDigest(ctx)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("X-RequestDigest", digest)

	if verb != "" {
		headers.Set("X-HTTP-Method", verb)
		headers.Set("IF-MATCH", "*")
	}

	return &RequestOptions{Headers: headers, Body: body}, nil
}
