package sharepoint

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listPayload() map[string]any {
	return map[string]any{
		"Id":                   "bf2d6f3b-1c3a-4c8e-9a84-5f0e4d9a2b11",
		"Title":                "Documents",
		"Description":          "Team files",
		"ItemCount":            12.0,
		"BaseTemplate":         101.0,
		"Hidden":               false,
		"Created":              "2024-03-01T10:00:00Z",
		"LastItemModifiedDate": "2024-03-02T11:30:00Z",
	}
}

func TestNewList_HydratesCoreFields(t *testing.T) {
	l, err := NewList(nil, listPayload(), nil, false)
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse("bf2d6f3b-1c3a-4c8e-9a84-5f0e4d9a2b11"), l.ID)
	assert.Equal(t, "Documents", l.Title)
	assert.Equal(t, "Team files", l.Description)
	assert.Equal(t, 12, l.ItemCount)
	assert.Equal(t, 101, l.BaseTemplate)
	assert.False(t, l.Hidden)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), l.Created.UTC())
}

func TestNewList_UnknownLocalNameGoesToExtra(t *testing.T) {
	payload := listPayload()
	payload["EnableVersioning"] = true

	l, err := NewList(nil, payload, FieldMap{"Versioned": "EnableVersioning"}, false)
	require.NoError(t, err)

	assert.Equal(t, true, l.Extra["Versioned"])
	assert.Equal(t, true, l.ToMap()["Versioned"])
}

func TestNewList_ExtraMappingOverridesDefault(t *testing.T) {
	payload := listPayload()
	payload["DisplayTitle"] = "Shown Title"

	l, err := NewList(nil, payload, FieldMap{"Title": "DisplayTitle"}, false)
	require.NoError(t, err)

	assert.Equal(t, "Shown Title", l.Title)
}

// fullListPayload includes the expanded RootFolder so every default path
// resolves, which strict hydration requires.
func fullListPayload() map[string]any {
	payload := listPayload()
	payload["RootFolder"] = map[string]any{
		"ServerRelativeUrl": "/sites/dev/Shared Documents",
	}

	return payload
}

func TestNewList_StrictAbsentPathFails(t *testing.T) {
	payload := fullListPayload()
	delete(payload, "Title")

	_, err := NewList(nil, payload, nil, true)
	require.Error(t, err)

	var merr *MappingError
	require.ErrorAs(t, err, &merr)
	// Strict hydration names the offending path, not the local attribute.
	assert.Equal(t, "Title", merr.Path)
	assert.NoError(t, merr.Err)
}

func TestNewList_StrictSucceedsWithFullPayload(t *testing.T) {
	l, err := NewList(nil, fullListPayload(), nil, true)
	require.NoError(t, err)
	assert.Equal(t, "/sites/dev/Shared Documents", l.RootFolderURL)
}

func TestNewList_NonStrictAbsentPathSkipped(t *testing.T) {
	payload := listPayload()
	delete(payload, "Description")

	l, err := NewList(nil, payload, nil, false)
	require.NoError(t, err)
	assert.Empty(t, l.Description)
}

func TestNewList_CoercionFailureFailsInBothModes(t *testing.T) {
	for _, strict := range []bool{false, true} {
		payload := fullListPayload()
		payload["ItemCount"] = "not a number"

		_, err := NewList(nil, payload, nil, strict)
		require.Error(t, err)

		var merr *MappingError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, "ItemCount", merr.Path)
		assert.Error(t, merr.Err)
	}
}

func TestHydrate_RehydrationIdempotent(t *testing.T) {
	payload := listPayload()

	l, err := NewList(nil, payload, nil, false)
	require.NoError(t, err)

	before := l.ToMap()

	require.NoError(t, hydrate(l, payload, defaultListFields, false))
	assert.Equal(t, before, l.ToMap())
}

func TestHydrate_OverwritesPriorValue(t *testing.T) {
	l, err := NewList(nil, listPayload(), nil, false)
	require.NoError(t, err)

	require.NoError(t, hydrate(l, map[string]any{"Title": "Renamed"}, FieldMap{"Title": "Title"}, false))
	assert.Equal(t, "Renamed", l.Title)
}

func TestMergeFieldMaps_ExtraWins(t *testing.T) {
	defaults := FieldMap{"A": "a", "B": "b"}
	extra := FieldMap{"B": "other/b", "C": "c"}

	merged := MergeFieldMaps(defaults, extra)

	assert.Equal(t, FieldMap{"A": "a", "B": "other/b", "C": "c"}, merged)
	// Inputs untouched.
	assert.Equal(t, FieldMap{"A": "a", "B": "b"}, defaults)
	assert.Equal(t, FieldMap{"B": "other/b", "C": "c"}, extra)
}

func TestCoerceTime_AcceptsBothFormats(t *testing.T) {
	withZone, err := coerceTime("2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), withZone)

	bare, err := coerceTime("2024-03-01T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), bare)
}

func TestCoerceTime_RejectsGarbage(t *testing.T) {
	_, err := coerceTime("yesterday")
	assert.Error(t, err)

	_, err = coerceTime(12.0)
	assert.Error(t, err)
}

func TestCoerceGUID_TrimsBraces(t *testing.T) {
	want := uuid.MustParse("bf2d6f3b-1c3a-4c8e-9a84-5f0e4d9a2b11")

	got, err := coerceGUID("{BF2D6F3B-1C3A-4C8E-9A84-5F0E4D9A2B11}")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCoerceInt64_AcceptsDecimalString(t *testing.T) {
	got, err := coerceInt64("1048576")
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), got)

	got, err = coerceInt64(42.0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}
