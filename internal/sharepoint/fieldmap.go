package sharepoint

import "maps"

// FieldMap maps a local attribute name to the path expression that locates
// its value in a payload. Keys are unique; merging is last-write-wins.
type FieldMap map[string]string

// MergeFieldMaps combines a type's built-in default mapping with a
// caller-supplied extra mapping. Extra entries extend the defaults and win
// on conflicting keys. Neither input is modified.
func MergeFieldMaps(defaults, extra FieldMap) FieldMap {
	merged := make(FieldMap, len(defaults)+len(extra))
	maps.Copy(merged, defaults)
	maps.Copy(merged, extra)

	return merged
}
