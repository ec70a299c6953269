// Package record decodes BAM alignment records from a byte stream. It plays
// the "alignment-record decoder" external collaborator from §1: it knows how
// to turn bytes into a record and nothing about chunks or bins. Virtual
// offsets reach it only through ByteReader.CurrentVirtualOffset, which
// TaggingDecoder reads to fill a record's StartVO/EndVO.
package record

import "github.com/grailbio/bamra/encoding/bgzf"

// Unmapped is the ref_id/next_ref_id sentinel for "no reference".
const Unmapped = -1

// seqTable is the BAM 4-bit nucleotide code table, index by nibble.
var seqTable = [16]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'}

// Record is one decoded alignment. Fields mirror §3's Alignment Record entity.
type Record struct {
	RefID         int32
	Position      int32 // 0-based
	MapQ          uint8
	Flag          uint16
	Cigar         []Op
	NextRefID     int32
	NextPos       int32
	TemplateLen   int32
	Name          string
	Seq           []byte // packed, 2 bases/byte, see Bases()
	SeqLen        int32
	Qual          []byte // per-base raw phred score (no +33 offset), or nil/0xff-filled if absent
	Tags          []Tag

	// StartVO and EndVO are set only when decoded via a TaggingDecoder; they
	// bracket the record's on-disk extent as virtual offsets.
	StartVO, EndVO bgzf.VirtualOffset
}

// Bases renders the packed 4-bit sequence as an ASCII string, trimmed to
// SeqLen bases.
func (r *Record) Bases() string {
	if r.SeqLen == 0 {
		return ""
	}
	out := make([]byte, r.SeqLen)
	for i := int32(0); i < r.SeqLen; i++ {
		b := r.Seq[i/2]
		var nibble byte
		if i%2 == 0 {
			nibble = b >> 4
		} else {
			nibble = b & 0xf
		}
		out[i] = seqTable[nibble]
	}
	return string(out)
}

// HasQual reports whether per-base qualities are present (BAM represents
// "absent" as every byte equal to 0xff).
func (r *Record) HasQual() bool {
	if len(r.Qual) == 0 {
		return false
	}
	for _, b := range r.Qual {
		if b != 0xff {
			return true
		}
	}
	return false
}

// TagType identifies a Tag's on-disk representation, per §3's Tag Value entity.
type TagType byte

const (
	TagInt8    TagType = 'c'
	TagUint8   TagType = 'C'
	TagInt16   TagType = 's'
	TagUint16  TagType = 'S'
	TagInt32   TagType = 'i'
	TagUint32  TagType = 'I'
	TagFloat   TagType = 'f'
	TagChar    TagType = 'A'
	TagString  TagType = 'Z'
	TagHex     TagType = 'H'
	TagArray   TagType = 'B'
)

// Tag is one two-character-keyed value in a record's tag list.
type Tag struct {
	Key      [2]byte
	Type     TagType
	Int      int64   // valid for TagInt8/Uint8/Int16/Uint16/Int32/Uint32
	Float    float32 // valid for TagFloat
	Char     byte    // valid for TagChar
	Str      string  // valid for TagString/TagHex
	ArrayEl  TagType // element type, valid for TagArray
	IntArray []int64 // valid for TagArray with an integer element type
	FltArray []float32
}
