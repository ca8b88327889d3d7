package testsupp

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeldaos/drivepack/pkg/drive"
)

type Record struct {
	Offset    int64
	PathField drive.PathField
	Path      string
	Size      uint32
	Content   []byte
}

// ReadDrive parses a drive image the way the kernel loader does: records are
// read back to back until the end of the stream.
func ReadDrive(t *testing.T, fName string) []Record {
	t.Helper()

	data, err := os.ReadFile(fName)
	require.NoError(t, err)
	return ParseDrive(t, data)
}

func ParseDrive(t *testing.T, data []byte) []Record {
	t.Helper()

	var records []Record
	r := bytes.NewReader(data)
	for {
		offset := int64(len(data) - r.Len())

		var rec Record
		_, err := io.ReadFull(r, rec.PathField[:])
		if err == io.EOF {
			return records
		}
		require.NoError(t, err, "read path field at offset %d", offset)
		require.NoError(t, binary.Read(r, binary.LittleEndian, &rec.Size), "read size at offset %d", offset)

		rec.Offset = offset
		rec.Content = make([]byte, rec.Size)
		_, err = io.ReadFull(r, rec.Content)
		require.NoError(t, err, "read content at offset %d", offset)

		if i := bytes.IndexByte(rec.PathField[:], 0); i >= 0 {
			rec.Path = string(rec.PathField[:i])
		} else {
			rec.Path = string(rec.PathField[:])
		}
		records = append(records, rec)
	}
}

// Contents maps record paths to their content.
func Contents(records []Record) map[string][]byte {
	m := make(map[string][]byte, len(records))
	for _, rec := range records {
		m[rec.Path] = rec.Content
	}
	return m
}
