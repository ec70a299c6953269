package randomaccess

import (
	"context"
	"io"

	"github.com/grailbio/bamra/encoding/bai"
	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/grailbio/bamra/encoding/record"
	"github.com/grailbio/bamra/genomic"
	"github.com/grailbio/bamra/storage"
	"v.io/x/lib/vlog"
)

// Manager wires the whole pipeline from §2's diagram: index resolution,
// chunk coalescing, splicing, parallel decompression, trimming, the
// virtual-offset byte stream, record decoding, and the overlap filter.
type Manager struct {
	Opener  storage.Opener
	Path    string
	Index   *bai.Index
	Decoder record.Decoder

	// Workers configures the parallel decompressor; <= 1 means synchronous.
	Workers int
	// Cache, if non-nil, memoizes decompressed blocks across queries.
	Cache bgzf.Cache
}

// emptyIterator is returned for queries that are structurally empty
// (beg >= end), per §8 property 3 and scenario 1. It never touches storage.
type emptyIterator struct{}

func (emptyIterator) Next() (*record.Record, error) { return nil, io.EOF }

// Iterator yields alignment records overlapping a query, in file order.
type Iterator interface {
	Next() (*record.Record, error)
}

// Query implements §4.1 through §4.7 end to end: given q, the genomic
// range from §3's Coord/Range entities, it returns an Iterator over
// exactly the overlapping records, reading only the chunks the index
// proves might contain them.
func (m *Manager) Query(ctx context.Context, q genomic.Range) (Iterator, error) {
	if q.Beg >= q.End {
		return emptyIterator{}, nil
	}
	chunks, err := ResolveChunks(m.Index, q)
	if err != nil {
		return nil, err
	}
	vlog.VI(1).Infof("randomaccess: query %s: %d candidate chunks", q, len(chunks))
	disjoint := CoalesceChunks(chunks)
	vlog.VI(1).Infof("randomaccess: coalesced to %d disjoint chunks", len(disjoint))
	if len(disjoint) == 0 {
		return emptyIterator{}, nil
	}

	// A query opens its backing file exactly once, regardless of how many
	// disjoint chunks it splices; the splicer below carves this one reader
	// into a fresh io.SectionReader per chunk instead of reopening (§9).
	ra, size, err := m.Opener.Open(ctx, m.Path)
	if err != nil {
		return nil, newError("Query", IoError, err)
	}

	splicer := NewSplicer(ra, size, disjoint)
	decomp := NewDecompressor(ctx, splicer, m.Path, m.Workers, m.Cache)
	trimmer := NewTrimmer(ctx, decomp, disjoint)
	stream := NewVOStream(trimmer)

	dec := m.Decoder
	if dec == nil {
		dec = record.NewDecoder()
	}
	filter := NewFilter(dec, stream, q.RefID, q.Beg, q.End)
	return &closingIterator{Filter: filter, ra: ra, splicer: splicer, decomp: decomp}, nil
}

// closingIterator releases the query's open reader and cancels any
// in-flight prefetch tasks once the underlying filter reports the stream is
// exhausted or errored. It has no Close method: an iterator abandoned before
// that point is never closed.
type closingIterator struct {
	*Filter
	ra      storage.ReaderAtCloser
	splicer *Splicer
	decomp  *Decompressor
	closed  bool
}

func (c *closingIterator) Next() (*record.Record, error) {
	rec, err := c.Filter.Next()
	if err != nil && !c.closed {
		c.closed = true
		c.splicer.Close()
		c.decomp.Close()
		c.ra.Close()
	}
	return rec, err
}

// HasEOFBlock and EOFVirtualOffset expose §4.8's EOF probe against m's
// backing file.
func (m *Manager) HasEOFBlock(ctx context.Context) (bool, error) {
	ra, size, err := m.Opener.Open(ctx, m.Path)
	if err != nil {
		return false, newError("HasEOFBlock", IoError, err)
	}
	defer ra.Close()
	return bgzf.HasEOFBlock(ra, size)
}

func (m *Manager) EOFVirtualOffset(ctx context.Context) (bgzf.VirtualOffset, error) {
	ra, size, err := m.Opener.Open(ctx, m.Path)
	if err != nil {
		return bgzf.VirtualOffset{}, newError("EOFVirtualOffset", IoError, err)
	}
	defer ra.Close()
	return bgzf.EOFVirtualOffset(ra, size)
}
