package archiver

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

var (
	SkipFile error = errors.New("skip this file")
	SkipDir  error = filepath.SkipDir
)

// Archiver writes files of a directory tree into a single destination.
// Init must be called before any Write method; the returned io.Closer
// finalizes the destination.
type Archiver interface {
	Init(dst string) (io.Closer, error)
	WriteFile(baseDir string, fName string) error
	// WriteDirectory walks baseDir and writes every regular file. excludeFn is
	// called for each entry with its filesystem path and may return SkipFile
	// or SkipDir; any other non-nil error aborts the walk.
	WriteDirectory(baseDir string, excludeFn func(fsPath string, d os.DirEntry) error) error
}
