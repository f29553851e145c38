package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// UpdateGoldenEnv names the variable that rewrites golden files from the
// current output instead of comparing.
const UpdateGoldenEnv = "TASKTRACK_UPDATE_GOLDEN"

// Golden compares got with testdata/<name>.golden.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	path := filepath.Join("testdata", name+".golden")
	if os.Getenv(UpdateGoldenEnv) != "" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, got, 0o644))
		return
	}

	want, err := os.ReadFile(path)
	require.NoError(t, err, "read golden file %s (set %s=1 to create it)", path, UpdateGoldenEnv)
	require.Equal(t, string(want), string(got), "output mismatch for %s", name)
}
