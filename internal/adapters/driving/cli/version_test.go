package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, v string, args ...string) string {
	t.Helper()
	original := version
	version = v
	t.Cleanup(func() {
		version = original
		rootCmd.SetArgs(nil)
		_ = versionCmd.Flags().Set("short", "false")
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(append([]string{"version"}, args...))
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestVersionCmd_Full(t *testing.T) {
	out := runVersion(t, "1.2.3")

	assert.Contains(t, out, "dossier 1.2.3")
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCmd_Short(t *testing.T) {
	out := runVersion(t, "dev", "--short")
	assert.Equal(t, "dev", strings.TrimSpace(out))
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	rootCmd.SetArgs([]string{"version", "extra"})
	defer rootCmd.SetArgs(nil)
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	assert.Error(t, rootCmd.Execute())
}
