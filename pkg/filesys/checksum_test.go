package filesys

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeldaos/drivepack/pkg/testsupp"
)

func TestComputeFileChecksum(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("hello"), 0o644))

	sumA, err := ComputeFileChecksum(a)
	require.NoError(t, err)
	require.Len(t, sumA, 32)

	sumB, err := ComputeFileChecksum(b)
	require.NoError(t, err)
	require.Equal(t, sumA, sumB)

	require.NoError(t, os.WriteFile(b, []byte("hellO"), 0o644))
	sumB, err = ComputeFileChecksum(b)
	require.NoError(t, err)
	require.NotEqual(t, sumA, sumB)

	_, err = ComputeFileChecksum(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestComputeTreeHash(t *testing.T) {
	root := t.TempDir()
	testsupp.WriteTree(t, root, map[string][]byte{
		"x.txt":     []byte("hi"),
		"sub/y.bin": {0xde, 0xad},
	})

	h1, err := ComputeTreeHash(root, []string{"x.txt", "sub/y.bin"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h1, "xxh3:"))

	h2, err := ComputeTreeHash(root, []string{"sub/y.bin", "x.txt"})
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	testsupp.WriteTree(t, root, map[string][]byte{"sub/y.bin": {0xbe, 0xef}})
	h3, err := ComputeTreeHash(root, []string{"x.txt", "sub/y.bin"})
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)

	_, err = ComputeTreeHash(root, []string{"bad\nname"})
	require.ErrorContains(t, err, "newlines")
}
