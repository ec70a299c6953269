package record

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/pkg/errors"
)

// fixedBytes is the size, in bytes, of a BAM record's fixed-layout prefix
// (everything between block_size and the variable-length name/cigar/seq/
// qual/tag tail): refID, pos, l_read_name, mapq, bin, n_cigar_op, flag,
// l_seq, next_refID, next_pos, tlen.
const fixedBytes = 32

// ErrTruncated is wrapped and returned when the stream ends inside a record.
var ErrTruncated = errors.New("record: truncated")

// ErrCorrupt is wrapped and returned when a record's structure is invalid:
// an unrecognized tag type, or a length field implying bytes past the
// available data.
var ErrCorrupt = errors.New("record: corrupt")

// ByteReader is the minimal interface a Decoder needs: sequential reads plus
// the virtual offset of the next unread byte. randomaccess.VOStream
// implements this.
type ByteReader interface {
	io.Reader
	CurrentVirtualOffset() bgzf.VirtualOffset
}

// Decoder decodes one alignment record at a time from a byte stream,
// advancing the stream by exactly the record's on-disk length. This is the
// "record decoder interface" of §6.
type Decoder interface {
	Decode(r ByteReader) (*Record, error)
}

// TaggingDecoder wraps a Decoder and additionally records each decoded
// record's (start_vo, end_vo), per §6's tagging variant.
type TaggingDecoder struct {
	Decoder
}

// NewDecoder returns the default binary BAM record decoder.
func NewDecoder() Decoder { return binDecoder{} }

// NewTaggingDecoder wraps the default decoder to also report virtual offsets.
func NewTaggingDecoder() Decoder { return TaggingDecoder{binDecoder{}} }

func (d TaggingDecoder) Decode(r ByteReader) (*Record, error) {
	start := r.CurrentVirtualOffset()
	rec, err := d.Decoder.Decode(r)
	if err != nil {
		return nil, err
	}
	rec.StartVO = start
	rec.EndVO = r.CurrentVirtualOffset()
	return rec, nil
}

type binDecoder struct{}

func (binDecoder) Decode(r ByteReader) (*Record, error) {
	var blockSize int32
	if err := binary.Read(r, binary.LittleEndian, &blockSize); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(ErrTruncated, "reading block_size")
	}
	if blockSize < fixedBytes {
		return nil, errors.Wrapf(ErrCorrupt, "block_size %d smaller than fixed prefix", blockSize)
	}
	body := make([]byte, blockSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Wrap(ErrTruncated, "reading record body")
	}
	return decodeBody(body)
}

func decodeBody(b []byte) (*Record, error) {
	le := binary.LittleEndian
	rec := &Record{
		RefID:       int32(le.Uint32(b[0:4])),
		Position:    int32(le.Uint32(b[4:8])),
		NextRefID:   int32(le.Uint32(b[20:24])),
		NextPos:     int32(le.Uint32(b[24:28])),
		TemplateLen: int32(le.Uint32(b[28:32])),
	}
	lReadName := int(b[8])
	rec.MapQ = b[9]
	// bin (b[10:12]) is redundant with (RefID,Position,cigar) and is not
	// stored; readers should recompute it if they need it.
	nCigarOp := int(le.Uint16(b[12:14]))
	rec.Flag = le.Uint16(b[14:16])
	lSeq := int32(le.Uint32(b[16:20]))
	rec.SeqLen = lSeq

	off := fixedBytes
	if off+lReadName > len(b) {
		return nil, errors.Wrapf(ErrCorrupt, "read_name overruns record")
	}
	if lReadName > 0 {
		rec.Name = string(b[off : off+lReadName-1]) // drop the trailing NUL
	}
	off += lReadName

	if off+nCigarOp*4 > len(b) {
		return nil, errors.Wrapf(ErrCorrupt, "cigar overruns record")
	}
	if nCigarOp > 0 {
		rec.Cigar = make([]Op, nCigarOp)
		for i := 0; i < nCigarOp; i++ {
			rec.Cigar[i] = Op(le.Uint32(b[off+i*4 : off+i*4+4]))
		}
	}
	off += nCigarOp * 4

	seqBytes := int((lSeq + 1) / 2)
	if off+seqBytes > len(b) {
		return nil, errors.Wrapf(ErrCorrupt, "seq overruns record")
	}
	rec.Seq = b[off : off+seqBytes]
	off += seqBytes

	if off+int(lSeq) > len(b) {
		return nil, errors.Wrapf(ErrCorrupt, "qual overruns record")
	}
	rec.Qual = b[off : off+int(lSeq)]
	off += int(lSeq)

	tags, err := decodeTags(b[off:])
	if err != nil {
		return nil, err
	}
	rec.Tags = tags
	return rec, nil
}

func decodeTags(b []byte) ([]Tag, error) {
	var tags []Tag
	for len(b) > 0 {
		if len(b) < 3 {
			return nil, errors.Wrapf(ErrCorrupt, "truncated tag header")
		}
		tag := Tag{Key: [2]byte{b[0], b[1]}, Type: TagType(b[2])}
		b = b[3:]
		var err error
		b, err = decodeTagValue(&tag, b)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func decodeTagValue(tag *Tag, b []byte) ([]byte, error) {
	le := binary.LittleEndian
	need := func(n int) error {
		if len(b) < n {
			return errors.Wrapf(ErrCorrupt, "truncated %c-tag value", tag.Type)
		}
		return nil
	}
	switch tag.Type {
	case TagInt8:
		if err := need(1); err != nil {
			return nil, err
		}
		tag.Int = int64(int8(b[0]))
		return b[1:], nil
	case TagUint8:
		if err := need(1); err != nil {
			return nil, err
		}
		tag.Int = int64(b[0])
		return b[1:], nil
	case TagInt16:
		if err := need(2); err != nil {
			return nil, err
		}
		tag.Int = int64(int16(le.Uint16(b)))
		return b[2:], nil
	case TagUint16:
		if err := need(2); err != nil {
			return nil, err
		}
		tag.Int = int64(le.Uint16(b))
		return b[2:], nil
	case TagInt32:
		if err := need(4); err != nil {
			return nil, err
		}
		tag.Int = int64(int32(le.Uint32(b)))
		return b[4:], nil
	case TagUint32:
		if err := need(4); err != nil {
			return nil, err
		}
		tag.Int = int64(le.Uint32(b))
		return b[4:], nil
	case TagFloat:
		if err := need(4); err != nil {
			return nil, err
		}
		tag.Float = math.Float32frombits(le.Uint32(b))
		return b[4:], nil
	case TagChar:
		if err := need(1); err != nil {
			return nil, err
		}
		tag.Char = b[0]
		return b[1:], nil
	case TagString, TagHex:
		i := indexNUL(b)
		if i < 0 {
			return nil, errors.Wrapf(ErrCorrupt, "unterminated %c-tag string", tag.Type)
		}
		tag.Str = string(b[:i])
		return b[i+1:], nil
	case TagArray:
		if err := need(5); err != nil {
			return nil, err
		}
		el := TagType(b[0])
		count := int(le.Uint32(b[1:5]))
		b = b[5:]
		tag.ArrayEl = el
		elemSize, isFloat, err := arrayElemSize(el)
		if err != nil {
			return nil, err
		}
		if err := need(elemSize * count); err != nil {
			return nil, err
		}
		if isFloat {
			tag.FltArray = make([]float32, count)
			for i := 0; i < count; i++ {
				tag.FltArray[i] = math.Float32frombits(le.Uint32(b[i*4 : i*4+4]))
			}
		} else {
			tag.IntArray = make([]int64, count)
			for i := 0; i < count; i++ {
				tag.IntArray[i] = readIntElem(el, b[i*elemSize:i*elemSize+elemSize])
			}
		}
		return b[elemSize*count:], nil
	default:
		return nil, errors.Wrapf(ErrCorrupt, "unknown tag type %q", byte(tag.Type))
	}
}

func arrayElemSize(el TagType) (size int, isFloat bool, err error) {
	switch el {
	case TagInt8, TagUint8:
		return 1, false, nil
	case TagInt16, TagUint16:
		return 2, false, nil
	case TagInt32, TagUint32:
		return 4, false, nil
	case TagFloat:
		return 4, true, nil
	default:
		return 0, false, errors.Wrapf(ErrCorrupt, "unknown array element type %q", byte(el))
	}
}

func readIntElem(el TagType, b []byte) int64 {
	le := binary.LittleEndian
	switch el {
	case TagInt8:
		return int64(int8(b[0]))
	case TagUint8:
		return int64(b[0])
	case TagInt16:
		return int64(int16(le.Uint16(b)))
	case TagUint16:
		return int64(le.Uint16(b))
	case TagInt32:
		return int64(int32(le.Uint32(b)))
	default: // TagUint32
		return int64(le.Uint32(b))
	}
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
