package bgzf

import "fmt"

// VirtualOffset is a BGZF "virtual address": the high 48 bits are the file
// offset of a compressed block (Coffset), the low 16 bits are a byte offset
// within that block's decompressed payload (Uoffset). See §3 and §6 of the
// design: this is the addressing scheme used throughout the BAI index and
// the BAM file itself.
type VirtualOffset struct {
	Coffset int64
	Uoffset uint16
}

// Pack encodes v as the 64-bit value used on disk in .bai and .bam files.
func (v VirtualOffset) Pack() uint64 {
	return uint64(v.Coffset)<<16 | uint64(v.Uoffset)
}

// Unpack decodes a 64-bit on-disk virtual offset.
func Unpack(v uint64) VirtualOffset {
	return VirtualOffset{
		Coffset: int64(v >> 16),
		Uoffset: uint16(v),
	}
}

// Compare returns -1, 0 or 1 as v is less than, equal to, or greater than o,
// under the ordering contract in §3: compare Coffset, then Uoffset.
func (v VirtualOffset) Compare(o VirtualOffset) int {
	switch {
	case v.Coffset < o.Coffset:
		return -1
	case v.Coffset > o.Coffset:
		return 1
	case v.Uoffset < o.Uoffset:
		return -1
	case v.Uoffset > o.Uoffset:
		return 1
	default:
		return 0
	}
}

// LT reports whether v sorts strictly before o.
func (v VirtualOffset) LT(o VirtualOffset) bool { return v.Compare(o) < 0 }

// LE reports whether v sorts at or before o.
func (v VirtualOffset) LE(o VirtualOffset) bool { return v.Compare(o) <= 0 }

// IsZero reports whether v is the zero virtual offset, which is what
// bai.Reference.MinOffsetFor returns for a tile past the linear index.
func (v VirtualOffset) IsZero() bool { return v.Coffset == 0 && v.Uoffset == 0 }

func (v VirtualOffset) String() string { return fmt.Sprintf("vo(%d,%d)", v.Coffset, v.Uoffset) }
