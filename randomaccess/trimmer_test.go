package randomaccess

import (
	"context"
	"io"
	"testing"

	"github.com/grailbio/bamra/encoding/bai"
	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/stretchr/testify/require"
)

// fakeDecompressedSource replays a fixed slice of decompressed blocks.
type fakeDecompressedSource struct {
	blocks []bgzf.DecompressedBlock
	pos    int
}

func (f *fakeDecompressedSource) Next(ctx context.Context) (bgzf.DecompressedBlock, error) {
	if f.pos >= len(f.blocks) {
		return bgzf.DecompressedBlock{}, io.EOF
	}
	blk := f.blocks[f.pos]
	f.pos++
	return blk, nil
}

func TestTrimmerMarksSkipStartOnFirstBlock(t *testing.T) {
	src := &fakeDecompressedSource{blocks: []bgzf.DecompressedBlock{
		{StartOffset: 0, Data: []byte("0123456789")},
	}}
	chunks := []bai.Chunk{{Beg: vo(0, 3), End: vo(100, 5)}}
	tr := NewTrimmer(context.Background(), src, chunks)

	aug, err := tr.Next()
	require.NoError(t, err)
	require.Equal(t, 3, aug.SkipStart)
	require.Equal(t, 0, aug.SkipEnd, "end.coffset points at a later block, not this one")
}

func TestTrimmerMarksSkipEndOnLastBlock(t *testing.T) {
	src := &fakeDecompressedSource{blocks: []bgzf.DecompressedBlock{
		{StartOffset: 0, Data: []byte("0123456789")},
		{StartOffset: 50, Data: []byte("abcdefghij")},
	}}
	chunks := []bai.Chunk{{Beg: vo(0, 0), End: vo(50, 4)}}
	tr := NewTrimmer(context.Background(), src, chunks)

	aug, err := tr.Next()
	require.NoError(t, err)
	require.Equal(t, 0, aug.SkipStart)
	require.Equal(t, 0, aug.SkipEnd)

	aug, err = tr.Next()
	require.NoError(t, err)
	require.Equal(t, 0, aug.SkipStart)
	require.Equal(t, len(aug.Data)-4, aug.SkipEnd, "end.uoffset=4 means the last 6 bytes of a 10-byte block are trimmed")
}

func TestTrimmerBothBoundariesOnSameBlock(t *testing.T) {
	src := &fakeDecompressedSource{blocks: []bgzf.DecompressedBlock{
		{StartOffset: 0, Data: []byte("0123456789")},
	}}
	chunks := []bai.Chunk{{Beg: vo(0, 2), End: vo(0, 8)}}
	tr := NewTrimmer(context.Background(), src, chunks)

	aug, err := tr.Next()
	require.NoError(t, err)
	require.Equal(t, 2, aug.SkipStart)
	require.Equal(t, len(aug.Data)-8, aug.SkipEnd)
}

func TestTrimmerAdvancesToNextChunkAfterBoundary(t *testing.T) {
	src := &fakeDecompressedSource{blocks: []bgzf.DecompressedBlock{
		{StartOffset: 0, Data: []byte("0123456789")},  // closes chunk 0
		{StartOffset: 50, Data: []byte("abcdefghij")}, // opens chunk 1
	}}
	chunks := []bai.Chunk{
		{Beg: vo(0, 0), End: vo(0, 10)},
		{Beg: vo(50, 1), End: vo(100, 0)},
	}
	tr := NewTrimmer(context.Background(), src, chunks)

	aug, err := tr.Next()
	require.NoError(t, err)
	require.Equal(t, 0, aug.SkipStart)
	require.Equal(t, 0, aug.SkipEnd, "end.uoffset==len(Data) trims nothing")

	aug, err = tr.Next()
	require.NoError(t, err)
	require.Equal(t, 1, aug.SkipStart, "second chunk's own skip_start applies once chunk 0 has closed")
}

func TestTrimmerPropagatesTerminalError(t *testing.T) {
	src := &fakeDecompressedSource{}
	tr := NewTrimmer(context.Background(), src, nil)
	_, err := tr.Next()
	require.Equal(t, io.EOF, err)
}
