package sharepoint

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// hydratable is implemented by entity types that can be populated from a
// payload. applyCore assigns a resolved value to a declared core attribute,
// returning false when the local name is not a core attribute of the type;
// setExtra stores a value for a non-core name.
type hydratable interface {
	applyCore(name string, value any) (bool, error)
	setExtra(name string, value any)
}

// hydrate populates target from payload using the given field mapping.
// For each (localName, path) pair the path is resolved via ResolvePath.
// An absent path fails with a MappingError in strict mode and is silently
// skipped otherwise, leaving the target's existing value untouched.
// Resolved values go to a declared core attribute when the local name
// matches one (with type coercion), and into the extra set otherwise.
//
// Assignment is overwrite per field, so re-hydrating with the same payload
// and mapping yields the same final state.
func hydrate(target hydratable, payload map[string]any, fields FieldMap, strict bool) error {
	for name, expr := range fields {
		value, ok := ResolvePath(payload, expr)
		if !ok {
			if strict {
				return &MappingError{Path: expr}
			}

			continue
		}

		handled, err := target.applyCore(name, value)
		if err != nil {
			return &MappingError{Path: expr, Err: err}
		}

		if !handled {
			target.setExtra(name, value)
		}
	}

	return nil
}

// Coercion helpers for core attributes. Payloads come from encoding/json,
// so numbers arrive as float64 and everything else as string/bool/nil.

func coerceString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}

	return s, nil
}

func coerceInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n)
		}

		return parsed, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func coerceInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n)
		}

		return parsed, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func coerceBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}

	return b, nil
}

// coerceTime parses timestamp fields. The REST API returns RFC3339 in
// nometadata mode; some endpoints omit the timezone suffix.
func coerceTime(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected timestamp string, got %T", v)
	}

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}

	return t.UTC(), nil
}

// coerceGUID parses GUID fields, tolerating the brace-wrapped form some
// endpoints return ("{...}").
func coerceGUID(v any) (uuid.UUID, error) {
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("expected GUID string, got %T", v)
	}

	id, err := uuid.Parse(strings.Trim(s, "{}"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid GUID %q", s)
	}

	return id, nil
}
