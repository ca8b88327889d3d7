package testsupp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree creates files under root. Keys are '/'-separated relative paths;
// parent directories are created as needed.
func WriteTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()

	for name, content := range files {
		fsPath := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(fsPath), os.ModePerm))
		require.NoError(t, os.WriteFile(fsPath, content, 0o644))
	}
}
