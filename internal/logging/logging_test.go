package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(tt.level, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New("chatty", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_Writes(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("visible")

	out := buf.String()
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "component=")
	assert.NotContains(t, out, "hidden")
}
