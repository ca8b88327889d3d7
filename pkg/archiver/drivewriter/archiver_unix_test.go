//go:build unix

package drivewriter

import (
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeldaos/drivepack/pkg/testsupp"
)

func TestWriteDirectory_SkipsFifo(t *testing.T) {
	root := t.TempDir()
	testsupp.WriteTree(t, root, map[string][]byte{"a.txt": []byte("a")})
	if err := syscall.Mkfifo(filepath.Join(root, "pipe"), 0o644); err != nil {
		t.Skipf("fifos are not supported: %v", err)
	}

	records := testsupp.ReadDrive(t, packDir(t, root, nil))
	require.Len(t, records, 1)
	require.Equal(t, "a.txt", records[0].Path)
}
