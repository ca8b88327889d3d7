package filesys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"
)

func ComputeFileChecksum(filePath string) (string, error) {
	slog.Debug("Computing checksum", slog.String("path", filePath))
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	hasher := xxh3.New()
	if _, err := io.CopyBuffer(hasher, f, make([]byte, 1024*1024)); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	sum128 := hasher.Sum128()
	hexDigest := fmt.Sprintf("%016x%016x", sum128.Hi, sum128.Lo)
	slog.Debug("Checksum created", slog.String("hex", hexDigest))
	return hexDigest, nil
}

// ComputeTreeHash hashes the given files of root, named by their
// '/'-separated paths relative to root. The result does not depend on the
// order of files.
func ComputeTreeHash(root string, files []string) (string, error) {
	return hashXXH3(files, func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(root, filepath.FromSlash(name)))
	})
}

func hashXXH3(files []string, open func(string) (io.ReadCloser, error)) (string, error) {
	h := xxh3.New()
	files = append([]string(nil), files...)
	sort.Strings(files)
	for _, file := range files {
		if strings.Contains(file, "\n") {
			return "", errors.New("tree hash: filenames with newlines are not supported")
		}
		r, err := open(file)
		if err != nil {
			return "", fmt.Errorf("open %s: %w", file, err)
		}
		hf := xxh3.New()
		_, err = io.Copy(hf, r)
		r.Close()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		fmt.Fprintf(h, "%x  %s\n", hf.Sum(nil), file)
	}
	return "xxh3:" + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}
