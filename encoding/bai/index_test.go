package bai

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/stretchr/testify/require"
)

type binaryWriter struct {
	buf bytes.Buffer
}

func (w *binaryWriter) i32(v int32)  { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *binaryWriter) u32(v uint32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *binaryWriter) u64(v uint64) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *binaryWriter) raw(b []byte) { w.buf.Write(b) }

func buildIndex(t *testing.T) []byte {
	t.Helper()
	w := &binaryWriter{}
	w.raw(magic[:])
	w.i32(1) // n_ref

	// one reference: one real bin, one metadata pseudo-bin.
	w.i32(2) // n_bin

	w.u32(4681) // a finest-level bin id
	w.i32(1)    // n_chunk
	w.u64(bgzf.VirtualOffset{Coffset: 100}.Pack())
	w.u64(bgzf.VirtualOffset{Coffset: 200}.Pack())

	w.u32(metadataBin)
	w.i32(2)
	w.u64(bgzf.VirtualOffset{Coffset: 0}.Pack())
	w.u64(bgzf.VirtualOffset{Coffset: 1}.Pack())
	w.u64(500) // mapped count, packed as a raw virtual offset value
	w.u64(7)   // unmapped count

	w.i32(2) // n_intv
	w.u64(bgzf.VirtualOffset{Coffset: 100}.Pack())
	w.u64(bgzf.VirtualOffset{Coffset: 150}.Pack())

	w.u64(3) // trailing n_no_coor

	return w.buf.Bytes()
}

func TestReadIndex(t *testing.T) {
	data := buildIndex(t)
	idx, err := ReadIndex(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, idx.References, 1)
	ref := idx.References[0]

	require.Len(t, ref.Bins, 1)
	require.Equal(t, uint32(4681), ref.Bins[0].ID)
	require.Equal(t, int64(100), ref.Bins[0].Chunks[0].Beg.Coffset)
	require.Equal(t, int64(200), ref.Bins[0].Chunks[0].End.Coffset)

	require.NotNil(t, ref.Meta)
	require.Equal(t, uint64(7), ref.Meta.Unmapped)

	require.Len(t, ref.LinearIndex, 2)
	require.Equal(t, int64(150), ref.LinearIndex[1].Coffset)

	require.NotNil(t, idx.Unmapped)
	require.Equal(t, uint64(3), *idx.Unmapped)
}

func TestReadIndexBadMagic(t *testing.T) {
	_, err := ReadIndex(bytes.NewReader([]byte("nope")))
	require.Error(t, err)
}

func TestMinOffsetFor(t *testing.T) {
	ref := &Reference{LinearIndex: []bgzf.VirtualOffset{
		{Coffset: 10},
		{Coffset: 20},
	}}
	require.Equal(t, int64(10), ref.MinOffsetFor(0).Coffset)
	require.Equal(t, int64(20), ref.MinOffsetFor(1 << 14).Coffset)
	require.True(t, ref.MinOffsetFor(1<<20).IsZero())
}

func TestBinsOverlapping(t *testing.T) {
	ref := &Reference{Bins: []Bin{
		{ID: 0},
		{ID: reg2bin(0, 100)},
		{ID: 999999}, // never a candidate, must not appear
	}}
	got := ref.BinsOverlapping(0, 100)
	ids := make([]uint32, len(got))
	for i, b := range got {
		ids[i] = b.ID
	}
	require.Contains(t, ids, uint32(0))
	require.Contains(t, ids, reg2bin(0, 100))
	require.NotContains(t, ids, uint32(999999))
}
