package randomaccess

import (
	"io"

	"github.com/grailbio/bamra/encoding/bai"
	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/grailbio/bamra/storage"
)

// Splicer produces a single ordered stream of raw BGZF blocks covering
// exactly a disjoint chunk list, per §4.3. It reads from a single reader the
// Manager opened once for the whole query (see §9's resolved open
// question): each chunk gets its own io.SectionReader over that one
// ReaderAtCloser, not a freshly reopened object.
type Splicer struct {
	ra     storage.ReaderAtCloser
	size   int64
	chunks []bai.Chunk

	chunkIdx int
	src      bgzf.BlockSource
	done     bool
}

// NewSplicer returns a Splicer reading exactly the bytes covered by the
// (already coalesced) disjoint chunks from ra, a reader already open over
// the whole object with the given size.
func NewSplicer(ra storage.ReaderAtCloser, size int64, chunks []bai.Chunk) *Splicer {
	return &Splicer{ra: ra, size: size, chunks: chunks}
}

// Next returns the next raw block in the spliced stream, or io.EOF when the
// stream is exhausted.
func (s *Splicer) Next() (bgzf.RawBlock, error) {
	for {
		if s.done {
			return bgzf.RawBlock{}, io.EOF
		}
		if s.src == nil {
			if s.chunkIdx >= len(s.chunks) {
				s.done = true
				continue
			}
			chunk := s.chunks[s.chunkIdx]
			r := storage.NewChunkReader(s.ra, s.size, chunk.Beg.Coffset)
			s.src = bgzf.NewFileBlockSource(r, chunk.Beg.Coffset)
		}

		chunk := s.chunks[s.chunkIdx]
		blk, err := s.src.Next()
		if err == io.EOF {
			s.closeSrc()
			s.chunkIdx++
			continue
		}
		if err != nil {
			s.closeSrc()
			return bgzf.RawBlock{}, classifyBlockErr(err)
		}
		if blk.StartOffset > chunk.End.Coffset {
			// This chunk's blocks are exhausted; the boundary block
			// (start_offset == end.coffset) was already yielded on a prior
			// iteration, per §4.3's inclusion rule.
			s.closeSrc()
			s.chunkIdx++
			continue
		}
		return blk, nil
	}
}

// Close releases any open reader. Safe to call multiple times.
func (s *Splicer) Close() error {
	s.closeSrc()
	return nil
}

func (s *Splicer) closeSrc() {
	if s.src != nil {
		s.src.Close()
		s.src = nil
	}
}

// causedBy reports whether err was produced by errors.Wrap(target, ...): it
// walks the Cause() chain pkg/errors builds, rather than the stdlib
// Unwrap()-based errors.Is (this module's pinned pkg/errors predates
// Unwrap support).
func causedBy(err, target error) bool {
	for err != nil {
		if err == target {
			return true
		}
		causer, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = causer.Cause()
	}
	return false
}

func classifyBlockErr(err error) error {
	if err == io.EOF {
		return err
	}
	if causedBy(err, bgzf.ErrTruncated) {
		return newError("Splicer.Next", UnexpectedEof, err)
	}
	if causedBy(err, bgzf.ErrBadMagic) || causedBy(err, bgzf.ErrCorrupt) {
		return newError("Splicer.Next", CorruptBlock, err)
	}
	return newError("Splicer.Next", IoError, err)
}
