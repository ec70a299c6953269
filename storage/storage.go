// Package storage provides positioned reads over the backing bytes of a BAM
// file, local or remote. It plays the role of the "block-range producer"'s
// upstream byte source: the randomaccess manager opens a path once per query
// via an Opener, and the splicer carves that single reader into one
// io.SectionReader per chunk.
package storage

import (
	"context"
	"io"
)

// ReaderAtCloser is a positioned, closable byte source.
type ReaderAtCloser interface {
	io.ReaderAt
	io.Closer
}

// Opener resolves a path to a backend-specific reader plus the object's
// total size. A query opens a path exactly once, regardless of how many
// chunks it splices; see §9's "fresh stream per chunk" note, resolved in
// DESIGN.md: what varies per backend is whether a ReadAt against the
// returned reader is itself a fresh round trip (S3) or a cheap local seek,
// not how often Open is called.
type Opener interface {
	// Open returns a reader over the whole object and its size.
	Open(ctx context.Context, path string) (ReaderAtCloser, int64, error)
}

// NewChunkReader returns an io.Reader over ra, already open with known
// size, starting at byte offset off and running to the end of the object.
// It does not take ownership of ra: closing ra is the caller's
// responsibility, so many chunk readers can share one opened object.
func NewChunkReader(ra ReaderAtCloser, size, off int64) io.Reader {
	if off > size {
		off = size
	}
	return io.NewSectionReader(ra, off, size-off)
}
