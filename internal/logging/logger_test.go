// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/amidict/pkg/types"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogConfig{Level: "info", Format: "json"}, &buf)

	logger.With("component", "lookup").Info("looked up", "term", "acetone")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "looked up", m["msg"])
	assert.Equal(t, "lookup", m["component"])
	assert.Equal(t, "acetone", m["term"])
}

func TestNew_TextFormatAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogConfig{Level: "debug", Format: "text"}, &buf)

	logger.Debug("source test")
	assert.Contains(t, buf.String(), "source=")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(types.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_SetsDefault(t *testing.T) {
	old := slog.Default()
	defer slog.SetDefault(old)

	logger := NewLogger(types.LogConfig{Level: "info", Format: "json"})
	assert.Same(t, logger, slog.Default())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
