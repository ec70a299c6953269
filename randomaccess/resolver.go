package randomaccess

import (
	"github.com/grailbio/bamra/encoding/bai"
	"github.com/grailbio/bamra/genomic"
)

// ResolveChunks implements §4.1: it turns a query range into an
// unordered-then-sorted list of candidate chunks that may contain
// overlapping reads.
func ResolveChunks(idx *bai.Index, q genomic.Range) ([]bai.Chunk, error) {
	if idx == nil {
		return nil, newError("ResolveChunks", IndexMissing, nil)
	}
	if q.RefID < 0 || int(q.RefID) >= len(idx.References) {
		return nil, newError("ResolveChunks", InvalidQuery, nil)
	}
	if q.End < q.Beg {
		return nil, newError("ResolveChunks", InvalidQuery, nil)
	}

	ref := &idx.References[q.RefID]
	minOffset := ref.MinOffsetFor(q.Beg)

	var chunks []bai.Chunk
	for _, bin := range ref.BinsOverlapping(q.Beg, q.End) {
		for _, c := range bin.Chunks {
			if c.End.LE(minOffset) {
				continue
			}
			if c.Beg.LT(minOffset) {
				c.Beg = minOffset
			}
			chunks = append(chunks, c)
		}
	}
	sortChunksByBeg(chunks)
	return chunks, nil
}

func sortChunksByBeg(chunks []bai.Chunk) {
	// Insertion sort is fine here: chunk lists per query are small (bounded
	// by the number of overlapping bins), and this avoids pulling in a
	// comparator-heavy sort.Slice closure for a hot path called once per
	// query.
	for i := 1; i < len(chunks); i++ {
		for j := i; j > 0 && chunks[j].Beg.LT(chunks[j-1].Beg); j-- {
			chunks[j], chunks[j-1] = chunks[j-1], chunks[j]
		}
	}
}
