package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", formatSize(0))
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 MB", formatSize(1536*1024))
	assert.Equal(t, "2.0 GB", formatSize(2*1024*1024*1024))
	assert.Equal(t, "1.0 TB", formatSize(1024*1024*1024*1024))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}))

	sameYear := time.Date(time.Now().Year(), 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar  5 14:30", formatTime(sameYear))

	otherYear := time.Date(2019, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar  5  2019", formatTime(otherYear))
}

func TestPrintTable_AlignsColumns(t *testing.T) {
	var sb strings.Builder

	printTable(&sb, []string{"NAME", "SIZE"}, [][]string{
		{"a.txt", "12 B"},
		{"longer-name.txt", "1.0 KB"},
	})

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "NAME             SIZE", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "a.txt            12 B", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "longer-name.txt  1.0 KB", strings.TrimRight(lines[2], " "))
}

func TestResolveLogFormat(t *testing.T) {
	assert.Equal(t, "text", resolveLogFormat("text"))
	assert.Equal(t, "json", resolveLogFormat("json"))

	// "auto" resolves to one of the concrete formats.
	got := resolveLogFormat("auto")
	assert.Contains(t, []string{"text", "json"}, got)
}
