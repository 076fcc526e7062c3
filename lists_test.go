package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldArgs(t *testing.T) {
	fields, err := parseFieldArgs([]string{"Title=Hello", "Status=Active"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Title": "Hello", "Status": "Active"}, fields)
}

func TestParseFieldArgs_ValueWithEquals(t *testing.T) {
	fields, err := parseFieldArgs([]string{"Formula=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Formula": "a=b"}, fields)
}

func TestParseFieldArgs_Invalid(t *testing.T) {
	_, err := parseFieldArgs([]string{"NoEquals"})
	assert.Error(t, err)

	_, err = parseFieldArgs([]string{"=value"})
	assert.Error(t, err)
}

func TestParseFieldArgs_Empty(t *testing.T) {
	fields, err := parseFieldArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, fields)
}
