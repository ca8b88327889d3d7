package filesys

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
)

// WalkFunc is called for every entry below the walk root. fsPath is the path
// on disk, rel is the '/'-separated path relative to the root.
// Returning filepath.SkipDir on a directory prunes it; on a file it skips the
// remaining entries of the parent directory.
type WalkFunc func(fsPath string, rel string, d fs.DirEntry) error

type WalkOption func(*walker)

// WithFollowSymlinks resolves symbolic links and reports them as their
// target. Links to a directory that is already being walked are skipped.
func WithFollowSymlinks() WalkOption {
	return func(w *walker) {
		w.followSymlinks = true
	}
}

type walker struct {
	followSymlinks bool
}

type frame struct {
	fsPath  string
	rel     string
	info    fs.FileInfo
	entries []fs.DirEntry
	next    int
}

// Walk traverses root depth-first in pre-order. Entries of a directory are
// visited in lexical order. Pending directories are kept on an explicit
// stack so the depth of the tree does not grow the call stack.
func Walk(root string, fn WalkFunc, opts ...WalkOption) error {
	w := &walker{}
	for _, opt := range opts {
		opt(w)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("walk %s: not a directory", root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", root, err)
	}

	stack := []*frame{{fsPath: root, info: info, entries: entries}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		d := top.entries[top.next]
		top.next++

		fsPath := filepath.Join(top.fsPath, d.Name())
		rel := path.Join(top.rel, d.Name())

		if w.followSymlinks && d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(fsPath)
			if err != nil {
				return fmt.Errorf("resolve symlink %s: %w", fsPath, err)
			}
			if target.IsDir() && onStack(stack, target) {
				slog.Warn("Skipping symlink cycle", slog.String("path", fsPath))
				continue
			}
			d = fs.FileInfoToDirEntry(target)
		}

		err := fn(fsPath, rel, d)
		if !d.IsDir() {
			if errors.Is(err, filepath.SkipDir) {
				top.next = len(top.entries)
				continue
			}
			if err != nil {
				return err
			}
			continue
		}

		if errors.Is(err, filepath.SkipDir) {
			continue
		}
		if err != nil {
			return err
		}

		dirInfo, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat directory %s: %w", fsPath, err)
		}
		children, err := os.ReadDir(fsPath)
		if err != nil {
			return fmt.Errorf("read directory %s: %w", fsPath, err)
		}
		stack = append(stack, &frame{fsPath: fsPath, rel: rel, info: dirInfo, entries: children})
	}
	return nil
}

func onStack(stack []*frame, dir fs.FileInfo) bool {
	for _, f := range stack {
		if os.SameFile(f.info, dir) {
			return true
		}
	}
	return false
}
