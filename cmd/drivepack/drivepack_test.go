package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/zeldaos/drivepack/pkg/drive"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"drivepack": mainFn,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"records": cmdRecords,
		},
	})
}

// cmdRecords prints "path size" for every record of a drive image.
func cmdRecords(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! records")
	}
	if len(args) != 1 {
		ts.Fatalf("usage: records image")
	}

	data, err := os.ReadFile(ts.MkAbs(args[0]))
	ts.Check(err)

	for len(data) > 0 {
		if len(data) < drive.HeaderSize {
			ts.Fatalf("truncated record header: %d bytes left", len(data))
		}
		name := data[:drive.PathFieldSize]
		if i := bytes.IndexByte(name, 0); i >= 0 {
			name = name[:i]
		}
		size := binary.LittleEndian.Uint32(data[drive.PathFieldSize:drive.HeaderSize])
		data = data[drive.HeaderSize:]
		if uint64(len(data)) < uint64(size) {
			ts.Fatalf("truncated content of %s: want %d bytes, have %d", name, size, len(data))
		}
		data = data[size:]
		fmt.Fprintf(ts.Stdout(), "%s %d\n", name, size)
	}
}
