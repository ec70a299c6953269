package randomaccess

import (
	"context"

	"github.com/grailbio/bamra/encoding/bai"
	"github.com/grailbio/bamra/encoding/bgzf"
)

// AugmentedBlock is a decompressed block plus the trim amounts computed by
// the Trimmer, per §3's Augmented Block entity.
type AugmentedBlock struct {
	bgzf.DecompressedBlock
	SkipStart, SkipEnd int
}

// decompressedSource is the interface Trimmer needs from the decompressor:
// pull one decompressed block, in order.
type decompressedSource interface {
	Next(ctx context.Context) (bgzf.DecompressedBlock, error)
}

// Trimmer implements §4.5: it walks the decompressed block stream in
// lockstep with the sorted disjoint chunk list, marking each block's
// skip_start/skip_end.
type Trimmer struct {
	ctx     context.Context
	src     decompressedSource
	chunks  []bai.Chunk
	chunkIx int
}

// NewTrimmer returns a Trimmer over src using the same disjoint chunk list
// the Splicer was constructed with.
func NewTrimmer(ctx context.Context, src decompressedSource, chunks []bai.Chunk) *Trimmer {
	return &Trimmer{ctx: ctx, src: src, chunks: chunks}
}

// Next returns the next augmented block, or the source's terminal error
// (typically io.EOF) once the stream ends.
func (t *Trimmer) Next() (AugmentedBlock, error) {
	blk, err := t.src.Next(t.ctx)
	if err != nil {
		return AugmentedBlock{}, err
	}
	aug := AugmentedBlock{DecompressedBlock: blk}

	if t.chunkIx < len(t.chunks) {
		chunk := t.chunks[t.chunkIx]
		if blk.StartOffset == chunk.Beg.Coffset {
			aug.SkipStart = int(chunk.Beg.Uoffset)
		}
		if blk.StartOffset == chunk.End.Coffset {
			aug.SkipEnd = len(blk.Data) - int(chunk.End.Uoffset)
			t.chunkIx++
		}
	}
	return aug, nil
}
