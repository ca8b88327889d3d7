//go:build unix

package packer

import (
	"context"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeldaos/drivepack/pkg/testsupp"
)

func TestPack_SpecialFilesSkipped(t *testing.T) {
	testsupp.InitLog(t)

	root := t.TempDir()
	testsupp.WriteTree(t, root, map[string][]byte{"a.txt": []byte("a")})
	if err := syscall.Mkfifo(filepath.Join(root, "pipe"), 0o644); err != nil {
		t.Skipf("fifos are not supported: %v", err)
	}

	for _, staging := range []bool{false, true} {
		dst := filepath.Join(t.TempDir(), "out.drive")
		res, err := newPacker(t, WithStaging(staging)).Pack(context.Background(), root, dst)
		require.NoError(t, err, "staging=%v", staging)
		require.Equal(t, []string{"a.txt"}, res.Files, "staging=%v", staging)
		require.Equal(t, 1, res.Skipped, "staging=%v", staging)

		records := testsupp.ReadDrive(t, dst)
		require.Len(t, records, 1)
		require.Equal(t, "a.txt", records[0].Path)
	}
}
