package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"workpro/internal/app/server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		wantDebug bool
		wantJSON  bool
	}{
		{name: "local", env: config.EnvLocal, wantDebug: true},
		{name: "dev", env: config.EnvDev, wantDebug: true, wantJSON: true},
		{name: "prod", env: config.EnvProd, wantJSON: true},
		{name: "unknown falls back to prod", env: "staging", wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var buf bytes.Buffer
			log := NewWithWriter(tt.env, &buf)

			// Act
			log.Info("action applied", "action_id", "a-1")

			// Assert
			assert.Equal(t, tt.wantDebug, log.Enabled(context.Background(), slog.LevelDebug))
			assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
			assert.Contains(t, buf.String(), "action applied")

			if tt.wantJSON {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "a-1", entry["action_id"])
			}
		})
	}
}

func TestNewWithWriter_ProdDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.EnvProd, &buf)

	log.Debug("outbox scanned", "count", 3)
	log.Warn("telemetry update failed", "device_id", "dev-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "telemetry update failed")
}

func TestNew(t *testing.T) {
	log := New(config.EnvProd)
	require.NotNil(t, log)
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}
