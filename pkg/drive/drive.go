// Package drive defines the on-disk layout of a drive image.
//
// A drive image is a plain concatenation of records with no header, footer
// or record count:
//
//	[256 bytes: zero-padded path][4 bytes: little-endian uint32 size][size bytes: content]
//
// Paths are UTF-8, relative to the packed root and always use '/' as the
// separator. Readers find record boundaries only through the size field.
package drive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	PathFieldSize = 256
	SizeFieldSize = 4
	HeaderSize    = PathFieldSize + SizeFieldSize

	MaxContentSize = math.MaxUint32
)

var (
	ErrEmptyPath    = errors.New("empty record path")
	ErrPathTooLong  = fmt.Errorf("record path exceeds %d bytes", PathFieldSize)
	ErrFileTooLarge = fmt.Errorf("record content exceeds %d bytes", uint64(MaxContentSize))
)

// PathField is the fixed-width path area of a record header.
type PathField [PathFieldSize]byte

// EncodePath writes the UTF-8 bytes of p at the start of buf. The remaining
// bytes of buf are expected to be zero and are left as is.
func EncodePath(buf *PathField, p string) error {
	if p == "" {
		return ErrEmptyPath
	}
	if len(p) > PathFieldSize {
		return fmt.Errorf("%w: %q is %d bytes", ErrPathTooLong, p, len(p))
	}
	copy(buf[:], p)
	return nil
}

// EncodeSize returns size in little-endian order.
func EncodeSize(size uint32) [SizeFieldSize]byte {
	var b [SizeFieldSize]byte
	binary.LittleEndian.PutUint32(b[:], size)
	return b
}

// Header builds the 260-byte record header for a file of the given size.
func Header(p string, size int64) ([HeaderSize]byte, error) {
	var hdr [HeaderSize]byte
	if size < 0 || size > MaxContentSize {
		return hdr, fmt.Errorf("%w: %q is %d bytes", ErrFileTooLarge, p, size)
	}

	var name PathField
	if err := EncodePath(&name, p); err != nil {
		return hdr, err
	}
	sz := EncodeSize(uint32(size))

	copy(hdr[:PathFieldSize], name[:])
	copy(hdr[PathFieldSize:], sz[:])
	return hdr, nil
}

// RecordSize is the number of archive bytes taken by a record with the given
// content size.
func RecordSize(size int64) int64 {
	return HeaderSize + size
}
