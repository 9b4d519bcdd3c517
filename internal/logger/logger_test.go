package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetLevel(LevelDebug)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("chunked %s into %d pieces", "report.pdf", 3)

	assert.Equal(t, "[DEBUG] chunked report.pdf into 3 pieces\n", buf.String())
}

func TestQuietUnlessVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("d")
	Info("i")
	Warn("w")
	Section("s")

	assert.Empty(t, buf.String())
}

func TestError_AlwaysWritten(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Error("store unreachable: %v", "timeout")

	assert.Equal(t, "[ERROR] store unreachable: timeout\n", buf.String())
}

func TestSetLevel_FiltersLowerLevels(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)
	SetLevel(LevelWarn)

	Debug("hidden")
	Info("hidden")
	Warn("shown")

	assert.Equal(t, "[WARN] shown\n", buf.String())
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Retrieval")

	assert.Equal(t, "\n=== Retrieval ===\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{" warning ", LevelWarn, true},
		{"error", LevelError, true},
		{"loud", LevelError, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseLevel(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}
