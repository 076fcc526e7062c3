package sharepoint

import "strings"

// ResolvePath resolves a path expression against a nested JSON payload.
// Both '.' and '/' descend into a nested object by key; resolution is
// left-to-right. The second return value is false when any segment is
// missing or an intermediate node is not an object — an unresolved path
// is "absent", never an error.
//
// There is no wildcard, array-index, or filter syntax.
func ResolvePath(payload map[string]any, expr string) (any, bool) {
	segments := splitPathExpr(expr)
	if len(segments) == 0 {
		return nil, false
	}

	var current any = payload

	for _, seg := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[seg]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// splitPathExpr splits a path expression on both separators, dropping
// empty segments so "a..b" and "a/b/" behave like "a.b".
func splitPathExpr(expr string) []string {
	return strings.FieldsFunc(expr, func(r rune) bool {
		return r == '.' || r == '/'
	})
}
