package packer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/zeldaos/drivepack/pkg/archiver"
	"github.com/zeldaos/drivepack/pkg/filesys"
)

const (
	ArchiveExtension = ".drive"
)

var (
	SkipFile error = errors.New("skip this file")
	SkipDir  error = filepath.SkipDir

	ErrNotDirectory = errors.New("root is not a directory")
	ErrSymlink      = errors.New("symbolic links are not allowed")
	// ErrUnresolvedSymlink is returned under SymlinkFollow when the archiver
	// hands over a link instead of its target.
	ErrUnresolvedSymlink = errors.New("archiver does not follow symbolic links")
)

type Packer struct {
	Archiver        archiver.Archiver
	SymlinkPolicy   SymlinkPolicy
	ExcludePatterns []string
	Staging         bool
	// ExcludeFunction is called for each entry below the root.
	// If SkipFile is returned, the file will be excluded from the archive.
	// If SkipDir is returned, whole directory will be excluded from the archive.
	ExcludeFunction func(fsPath string, e os.DirEntry) error
}

type Result struct {
	Destination string
	Files       []string
	Bytes       int64
	Skipped     int
}

type Option func(*Packer) error

func WithArchiver(w archiver.Archiver) Option {
	return func(p *Packer) error {
		p.Archiver = w
		return nil
	}
}

func WithSymlinkPolicy(policy SymlinkPolicy) Option {
	return func(p *Packer) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		p.SymlinkPolicy = policy
		return nil
	}
}

// WithExcludePatterns excludes entries whose relative path or base name
// matches one of the path.Match patterns.
func WithExcludePatterns(patterns ...string) Option {
	return func(p *Packer) error {
		for _, pattern := range patterns {
			if _, err := path.Match(pattern, ""); err != nil {
				return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
			}
		}
		p.ExcludePatterns = append(p.ExcludePatterns, patterns...)
		return nil
	}
}

func WithExcludeFunction(f func(fsPath string, e os.DirEntry) error) Option {
	return func(p *Packer) error {
		p.ExcludeFunction = f
		return nil
	}
}

// WithStaging packs a snapshot copy of the root instead of the live tree.
func WithStaging(enabled bool) Option {
	return func(p *Packer) error {
		p.Staging = enabled
		return nil
	}
}

func New(opts ...Option) (*Packer, error) {
	pkr := &Packer{SymlinkPolicy: SymlinkSkip}

	for _, opt := range opts {
		if err := opt(pkr); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	return pkr, nil
}

// Pack writes every regular file below root into destination.
func (p *Packer) Pack(ctx context.Context, root string, destination string) (*Result, error) {
	if p.Archiver == nil {
		return nil, fmt.Errorf("archiver is not set")
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	destination, err = filepath.Abs(destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	baseDir := root
	if p.Staging {
		baseDir, err = filesys.StageCopy(root, p.SymlinkPolicy == SymlinkFollow, destination)
		if err != nil {
			return nil, fmt.Errorf("stage root: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(baseDir); err != nil {
				slog.Error("Failed to remove staging directory",
					slog.String("path", baseDir),
					slog.String("error", err.Error()))
			}
		}()
	}

	slog.Debug("Packing directory",
		slog.String("root", root),
		slog.String("destination", destination),
		slog.String("symlinks", p.SymlinkPolicy.String()),
		slog.Any("exclude", p.ExcludePatterns))

	res := &Result{Destination: destination}

	closer, err := p.Archiver.Init(destination)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	destInfo, err := os.Stat(destination)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	walkErr := p.Archiver.WriteDirectory(baseDir, func(fsPath string, e os.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch err := p.exclude(baseDir, destInfo, fsPath, e); {
		case errors.Is(err, archiver.SkipFile), errors.Is(err, archiver.SkipDir):
			res.Skipped++
			return err
		case err != nil:
			return err
		}

		if e.Type().IsRegular() {
			info, err := e.Info()
			if err != nil {
				return fmt.Errorf("get file info: %w", err)
			}
			rel, err := filepath.Rel(baseDir, fsPath)
			if err != nil {
				return fmt.Errorf("relative path for %s: %w", fsPath, err)
			}
			res.Files = append(res.Files, filepath.ToSlash(rel))
			res.Bytes += info.Size()
		}
		return nil
	})
	closeErr := closer.Close()
	if walkErr != nil {
		return nil, fmt.Errorf("write sources: %w", walkErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("finalize archive: %w", closeErr)
	}

	return res, nil
}

func (p *Packer) exclude(baseDir string, destInfo fs.FileInfo, fsPath string, e os.DirEntry) error {
	if e.Type().IsRegular() {
		if info, err := e.Info(); err == nil && os.SameFile(info, destInfo) {
			slog.Debug("Skipping destination archive", slog.String("path", fsPath))
			return archiver.SkipFile
		}
	}

	skip := archiver.SkipFile
	if e.IsDir() {
		skip = archiver.SkipDir
	}

	rel, err := filepath.Rel(baseDir, fsPath)
	if err != nil {
		return fmt.Errorf("relative path for %s: %w", fsPath, err)
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range p.ExcludePatterns {
		if matched, _ := path.Match(pattern, rel); matched {
			return skip
		}
		if matched, _ := path.Match(pattern, e.Name()); matched {
			return skip
		}
	}

	switch t := e.Type(); {
	case t&fs.ModeSymlink != 0:
		switch p.SymlinkPolicy {
		case SymlinkError:
			return fmt.Errorf("%s: %w", rel, ErrSymlink)
		case SymlinkFollow:
			return fmt.Errorf("%s: %w", rel, ErrUnresolvedSymlink)
		default:
			slog.Warn("Skipping symbolic link", slog.String("path", rel))
			return archiver.SkipFile
		}
	case !t.IsRegular() && !t.IsDir():
		slog.Warn("Skipping special file", slog.String("path", rel), slog.String("type", t.String()))
		return archiver.SkipFile
	}

	if p.ExcludeFunction != nil {
		switch err := p.ExcludeFunction(fsPath, e); {
		case errors.Is(err, SkipFile):
			return archiver.SkipFile
		case errors.Is(err, SkipDir):
			return archiver.SkipDir
		default:
			return err
		}
	}

	return nil
}
