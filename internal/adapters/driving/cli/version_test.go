package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	old := version
	version = v
	t.Cleanup(func() { version = old })
}

func TestVersionCmd_PrintsBuildInfo(t *testing.T) {
	withVersion(t, "1.2.3")

	out, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "ragapp version 1.2.3")
	assert.Contains(t, out, runtime.Version())
}

func TestVersionCmd_Short(t *testing.T) {
	withVersion(t, "1.2.3")

	out, err := execute(t, "", "version", "--short")

	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestVersionCmd_DevByDefault(t *testing.T) {
	withVersion(t, "dev")

	out, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "ragapp version dev")
}

func TestSetVersion(t *testing.T) {
	withVersion(t, "dev")

	SetVersion("2.0.0")

	assert.Equal(t, "2.0.0", version)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := execute(t, "", "version", "extra")
	assert.Error(t, err)
}
