package filesys

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeldaos/drivepack/pkg/testsupp"
)

func TestStageCopy(t *testing.T) {
	src := t.TempDir()
	testsupp.WriteTree(t, src, map[string][]byte{
		"a.txt":     []byte("a"),
		"sub/b.txt": []byte("b"),
		"out.drive": []byte("old image"),
	})

	dst, err := StageCopy(src, false, filepath.Join(src, "out.drive"))
	require.NoError(t, err)
	defer os.RemoveAll(dst)

	require.NotEqual(t, src, dst)

	content, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	require.NoError(t, err)
	require.Equal(t, []byte("b"), content)

	_, err = os.Stat(filepath.Join(dst, "out.drive"))
	require.True(t, os.IsNotExist(err))

	// the snapshot does not follow later changes
	testsupp.WriteTree(t, src, map[string][]byte{"a.txt": []byte("changed")})
	content, err = os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), content)
}

func TestStageCopy_Symlinks(t *testing.T) {
	src := t.TempDir()
	testsupp.WriteTree(t, src, map[string][]byte{"target.txt": []byte("t")})
	if err := os.Symlink(filepath.Join(src, "target.txt"), filepath.Join(src, "link.txt")); err != nil {
		t.Skipf("symlinks are not supported: %v", err)
	}

	shallow, err := StageCopy(src, false)
	require.NoError(t, err)
	defer os.RemoveAll(shallow)
	fi, err := os.Lstat(filepath.Join(shallow, "link.txt"))
	require.NoError(t, err)
	require.NotZero(t, fi.Mode()&os.ModeSymlink)

	deep, err := StageCopy(src, true)
	require.NoError(t, err)
	defer os.RemoveAll(deep)
	fi, err = os.Lstat(filepath.Join(deep, "link.txt"))
	require.NoError(t, err)
	require.True(t, fi.Mode().IsRegular())
}

func TestStageCopy_MissingSource(t *testing.T) {
	_, err := StageCopy(filepath.Join(t.TempDir(), "missing"), false)
	require.Error(t, err)
}

func TestStageCopy_SymlinkCycles(t *testing.T) {
	src := t.TempDir()
	testsupp.WriteTree(t, src, map[string][]byte{
		"dir/f.txt": []byte("f"),
		"a/x.txt":   []byte("x"),
		"b/y.txt":   []byte("y"),
	})
	if err := os.Symlink(src, filepath.Join(src, "dir", "loop")); err != nil {
		t.Skipf("symlinks are not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(src, "b"), filepath.Join(src, "a", "tob")))
	require.NoError(t, os.Symlink(filepath.Join(src, "a"), filepath.Join(src, "b", "toa")))

	dst, err := StageCopy(src, true)
	require.NoError(t, err)
	defer os.RemoveAll(dst)

	var files []string
	require.NoError(t, Walk(dst, func(_ string, rel string, d fs.DirEntry) error {
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	}))
	require.Equal(t, []string{"a/tob/y.txt", "a/x.txt", "b/toa/x.txt", "b/y.txt", "dir/f.txt"}, files)
}
