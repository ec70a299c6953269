package bgzf

import (
	"bytes"
	"io"
)

// HasEOFBlock reports whether the last EOFBlockSize bytes readable from ra
// (a file of the given size) equal the canonical empty BGZF block. This is
// §4.8's EOF probe.
func HasEOFBlock(ra io.ReaderAt, size int64) (bool, error) {
	if size < EOFBlockSize {
		return false, nil
	}
	var tail [EOFBlockSize]byte
	if _, err := ra.ReadAt(tail[:], size-EOFBlockSize); err != nil && err != io.EOF {
		return false, err
	}
	return bytes.Equal(tail[:], eofBlock[:]), nil
}

// EOFVirtualOffset returns the virtual offset just past the last real
// alignment record: (size-28, 0) when the file carries the canonical EOF
// marker, else (size, 0).
func EOFVirtualOffset(ra io.ReaderAt, size int64) (VirtualOffset, error) {
	has, err := HasEOFBlock(ra, size)
	if err != nil {
		return VirtualOffset{}, err
	}
	if has {
		return VirtualOffset{Coffset: size - EOFBlockSize}, nil
	}
	return VirtualOffset{Coffset: size}, nil
}
