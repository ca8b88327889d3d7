package drivewriter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zeldaos/drivepack/pkg/archiver"
	"github.com/zeldaos/drivepack/pkg/drive"
	"github.com/zeldaos/drivepack/pkg/filesys"
)

const copyChunkSize = 32 * 1024

var ErrSizeMismatch = errors.New("file changed while packing")

type Option func(*driveWriter)

// WithFollowSymlinks makes WriteDirectory store the target of symbolic links.
func WithFollowSymlinks() Option {
	return func(wr *driveWriter) {
		wr.followSymlinks = true
	}
}

type sourceFile interface {
	io.ReadCloser
	Stat() (fs.FileInfo, error)
}

func openFile(name string) (sourceFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

type driveWriter struct {
	archive        *os.File
	bw             *bufio.Writer
	buf            []byte
	followSymlinks bool
	open           func(name string) (sourceFile, error)
}

func New(opts ...Option) *driveWriter {
	wr := &driveWriter{open: openFile}
	for _, opt := range opts {
		opt(wr)
	}
	return wr
}

func (wr *driveWriter) Close() error {
	if wr.archive == nil {
		return nil
	}
	flushErr := wr.bw.Flush()
	closeErr := wr.archive.Close()
	wr.archive = nil
	if flushErr != nil {
		return fmt.Errorf("flush archive: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close archive: %w", closeErr)
	}
	return nil
}

func (wr *driveWriter) Init(destination string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(destination), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	archive, err := os.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	wr.archive = archive
	wr.bw = bufio.NewWriterSize(archive, copyChunkSize)
	wr.buf = make([]byte, copyChunkSize)

	return wr, nil
}

// WriteFile appends the record of baseDir/fName. fName is the '/'-separated
// path stored in the record.
func (wr *driveWriter) WriteFile(baseDir string, fName string) error {
	if wr.archive == nil {
		return errors.New("archive is not initialized")
	}

	f, err := wr.open(filepath.Join(baseDir, filepath.FromSlash(fName)))
	if err != nil {
		return fmt.Errorf("open %s: %w", fName, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("get file info: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", fName)
	}

	header, err := drive.Header(fName, info.Size())
	if err != nil {
		return fmt.Errorf("encode record header: %w", err)
	}
	if _, err := wr.bw.Write(header[:]); err != nil {
		return fmt.Errorf("write record header: %w", err)
	}

	n, err := io.CopyBuffer(wr.bw, io.LimitReader(f, info.Size()), wr.buf)
	if err != nil {
		return fmt.Errorf("copy %s into archive: %w", fName, err)
	}
	if n != info.Size() {
		return fmt.Errorf("%w: %s declared %d bytes, read %d", ErrSizeMismatch, fName, info.Size(), n)
	}

	slog.Info("Found file", slog.String("path", fName), slog.Int64("size", info.Size()))
	return nil
}

func (wr *driveWriter) WriteDirectory(baseDir string, excludeFn func(fsPath string, d os.DirEntry) error) error {
	var opts []filesys.WalkOption
	if wr.followSymlinks {
		opts = append(opts, filesys.WithFollowSymlinks())
	}

	if err := filesys.Walk(baseDir, func(fsPath string, rel string, d fs.DirEntry) error {
		if excludeFn != nil {
			switch err := excludeFn(fsPath, d); {
			case errors.Is(err, archiver.SkipDir):
				return filepath.SkipDir
			case errors.Is(err, archiver.SkipFile):
				return nil
			case err != nil:
				return err
			}
		}

		switch {
		case d.IsDir():
			return nil
		case d.Type().IsRegular():
			return wr.WriteFile(baseDir, rel)
		default:
			slog.Warn("Skipping non-regular file",
				slog.String("path", rel),
				slog.String("type", d.Type().String()))
			return nil
		}
	}, opts...); err != nil {
		return fmt.Errorf("walk directory: %w", err)
	}
	return nil
}
