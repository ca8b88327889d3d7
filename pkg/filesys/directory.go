package filesys

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
)

// StageCopy snapshots src into a fresh temporary directory and returns its
// path. Symlinks are copied as links unless deref is set, in which case
// their targets are copied. Paths listed in exclude are left out of the
// snapshot. The caller removes the directory with os.RemoveAll.
func StageCopy(src string, deref bool, exclude ...string) (string, error) {
	dst, err := os.MkdirTemp("", "drivepack-stage-")
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	skip := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		skip[filepath.Clean(p)] = struct{}{}
	}

	slog.Debug("Staging source tree", slog.String("src", src), slog.String("dst", dst))

	if deref {
		err = stageResolved(src, dst, skip)
	} else {
		err = copy.Copy(src, dst, copy.Options{
			OnSymlink: func(string) copy.SymlinkAction {
				return copy.Shallow
			},
			Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
				_, ok := skip[filepath.Clean(src)]
				return ok, nil
			},
		})
	}
	if err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			slog.Error("Failed to remove staging directory",
				slog.String("path", dst),
				slog.String("error", rmErr.Error()))
		}
		return "", fmt.Errorf("copy %s -> %s: %w", src, dst, err)
	}
	return dst, nil
}

// stageResolved copies the tree the way Walk sees it with symlinks followed,
// so symlink cycles are cut at the same entries as in a live walk.
func stageResolved(src, dst string, skip map[string]struct{}) error {
	deep := copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Deep
		},
	}

	return Walk(src, func(fsPath string, rel string, d fs.DirEntry) error {
		if _, ok := skip[filepath.Clean(fsPath)]; ok {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(dst, filepath.FromSlash(rel))
		if d.IsDir() {
			if err := os.MkdirAll(target, os.ModePerm); err != nil {
				return fmt.Errorf("create directory %s: %w", rel, err)
			}
			return nil
		}
		if err := copy.Copy(fsPath, target, deep); err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		return nil
	}, WithFollowSymlinks())
}
