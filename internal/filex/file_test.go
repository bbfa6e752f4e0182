package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureAppDir_CreatesDirectory(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	got, err := EnsureAppDir(".eduterm-test")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, ".eduterm-test"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureAppDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	first, err := EnsureAppDir(".eduterm-test")
	require.NoError(t, err)
	second, err := EnsureAppDir(".eduterm-test")
	require.NoError(t, err)
	require.Equal(t, first, second)
}
