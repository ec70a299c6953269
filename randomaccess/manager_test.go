package randomaccess

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/grailbio/bamra/encoding/bai"
	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/grailbio/bamra/encoding/record"
	"github.com/grailbio/bamra/genomic"
	"github.com/stretchr/testify/require"
)

// encodeAlignmentRecord builds the on-disk bytes (including the block_size
// prefix) of one untagged BAM record with a single all-matching CIGAR op.
func encodeAlignmentRecord(t *testing.T, refID, pos int32, basesCovered uint32) []byte {
	t.Helper()
	le := binary.LittleEndian
	name := []byte("r\x00")

	var body bytes.Buffer
	write := func(v interface{}) { require.NoError(t, binary.Write(&body, le, v)) }
	write(refID)
	write(pos)
	write(uint8(len(name)))
	write(uint8(0)) // mapq
	write(uint16(0))
	write(uint16(1)) // n_cigar_op
	write(uint16(0)) // flag
	write(int32(0))  // l_seq
	write(int32(-1))
	write(int32(-1))
	write(int32(0))
	body.Write(name)
	write(uint32(record.NewOp(basesCovered, record.OpMatch)))

	var out bytes.Buffer
	require.NoError(t, binary.Write(&out, le, int32(body.Len())))
	out.Write(body.Bytes())
	return out.Bytes()
}

// buildSingleBlockBAM packs recs into one BGZF block and an index whose sole
// bin (bin 0, always overlap-eligible per the classic scheme) spans the
// whole block as a single chunk.
func buildSingleBlockBAM(t *testing.T, recs [][]byte) ([]byte, *bai.Index) {
	t.Helper()
	var payload []byte
	for _, r := range recs {
		payload = append(payload, r...)
	}
	block := encodeBlock(t, payload)
	idx := &bai.Index{References: []bai.Reference{{
		Bins: []bai.Bin{{ID: 0, Chunks: []bai.Chunk{{Beg: vo(0, 0), End: vo(int64(len(block)), 0)}}}},
	}}}
	return block, idx
}

func collect(t *testing.T, it Iterator) []*record.Record {
	t.Helper()
	var out []*record.Record
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestManagerQueryReturnsOnlyOverlappingRecords(t *testing.T) {
	recs := [][]byte{
		encodeAlignmentRecord(t, 0, 100, 50), // [100,150)
		encodeAlignmentRecord(t, 0, 200, 50), // [200,250): the only match for [150,250)
		encodeAlignmentRecord(t, 0, 300, 50), // [300,350)
	}
	data, idx := buildSingleBlockBAM(t, recs)
	m := &Manager{Opener: memOpener{data}, Path: "mem", Index: idx, Workers: 1}

	it, err := m.Query(context.Background(), genomic.Range{RefID: 0, Beg: 150, End: 250})
	require.NoError(t, err)
	got := collect(t, it)
	require.Len(t, got, 1)
	require.Equal(t, int32(200), got[0].Position)
}

func TestManagerQueryEmptyRangeShortCircuits(t *testing.T) {
	m := &Manager{Index: &bai.Index{References: make([]bai.Reference, 1)}}
	it, err := m.Query(context.Background(), genomic.Range{RefID: 0, Beg: 100, End: 100})
	require.NoError(t, err)
	_, err = it.Next()
	require.Equal(t, io.EOF, err)
}

func TestManagerQueryInvalidRefID(t *testing.T) {
	m := &Manager{Index: &bai.Index{References: make([]bai.Reference, 1)}}
	_, err := m.Query(context.Background(), genomic.Range{RefID: 5, Beg: 0, End: 10})
	require.Equal(t, InvalidQuery, KindOf(err))
}

func TestManagerQueryIndexMissing(t *testing.T) {
	m := &Manager{Index: nil}
	_, err := m.Query(context.Background(), genomic.Range{RefID: 0, Beg: 0, End: 10})
	require.Equal(t, IndexMissing, KindOf(err))
}

func TestManagerQueryParallelMatchesSerial(t *testing.T) {
	var recs [][]byte
	var positions []int32
	for i := int32(0); i < 12; i++ {
		pos := i * 20
		positions = append(positions, pos)
		recs = append(recs, encodeAlignmentRecord(t, 0, pos, 15))
	}

	// Spread the records across several independent blocks so the parallel
	// decompressor actually has more than one task in flight at once.
	var blocks [][]byte
	for i := 0; i < len(recs); i += 3 {
		end := i + 3
		if end > len(recs) {
			end = len(recs)
		}
		var payload []byte
		for _, r := range recs[i:end] {
			payload = append(payload, r...)
		}
		blocks = append(blocks, encodeBlock(t, payload))
	}
	var data []byte
	for _, b := range blocks {
		data = append(data, b...)
	}
	idx := &bai.Index{References: []bai.Reference{{
		Bins: []bai.Bin{{ID: 0, Chunks: []bai.Chunk{{Beg: vo(0, 0), End: vo(int64(len(data)), 0)}}}},
	}}}

	run := func(workers int) []*record.Record {
		m := &Manager{Opener: memOpener{data}, Path: "mem", Index: idx, Workers: workers}
		it, err := m.Query(context.Background(), genomic.Range{RefID: 0, Beg: 0, End: 240})
		require.NoError(t, err)
		return collect(t, it)
	}

	serial := run(1)
	parallel := run(4)
	require.Equal(t, len(serial), len(parallel))
	for i := range serial {
		require.Equal(t, serial[i].Position, parallel[i].Position)
	}
	for i := 1; i < len(serial); i++ {
		require.True(t, serial[i-1].Position <= serial[i].Position, "records must come out in non-decreasing position order")
	}
}

func TestManagerHasEOFBlockAndVirtualOffset(t *testing.T) {
	block := encodeBlock(t, nil)
	m := &Manager{Opener: memOpener{block}, Path: "mem"}

	has, err := m.HasEOFBlock(context.Background())
	require.NoError(t, err)
	// This isn't the canonical 28-byte EOF marker, so it should read false
	// rather than error.
	require.False(t, has)

	got, err := m.EOFVirtualOffset(context.Background())
	require.NoError(t, err)
	require.Equal(t, bgzf.VirtualOffset{Coffset: int64(len(block))}, got)
}
