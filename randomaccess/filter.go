package randomaccess

import (
	"io"

	"github.com/grailbio/bamra/encoding/record"
	"github.com/grailbio/bamra/genomic"
)

// classifyRecordErr maps the record decoder's sentinel errors onto this
// package's Kind taxonomy, the way classifyBlockErr does for BGZF errors.
// io.EOF (the natural end of the stream) passes through unchanged.
func classifyRecordErr(err error) error {
	if err == io.EOF {
		return err
	}
	if causedBy(err, record.ErrTruncated) {
		return newError("Filter.Next", UnexpectedEof, err)
	}
	if causedBy(err, record.ErrCorrupt) {
		return newError("Filter.Next", CorruptRecord, err)
	}
	return newError("Filter.Next", IoError, err)
}

// recordSource is anything that yields decoded records in file order.
type recordSource interface {
	Decode(r record.ByteReader) (*record.Record, error)
}

// Filter implements §4.7: it consumes records in file order and yields only
// those overlapping [beg, end) on refID, stopping as soon as the sorted
// stream proves no further record can match.
type Filter struct {
	dec      recordSource
	stream   record.ByteReader
	refID    int32
	beg      uint32
	end      uint32
	endCoord genomic.Coord
	done     bool
}

// NewFilter returns a Filter reading records from stream via dec, keeping
// only those overlapping [beg, end) on refID.
func NewFilter(dec recordSource, stream record.ByteReader, refID int32, beg, end uint32) *Filter {
	return &Filter{
		dec:      dec,
		stream:   stream,
		refID:    refID,
		beg:      beg,
		end:      end,
		endCoord: genomic.Coord{RefID: refID, Pos: int32(end)},
	}
}

// Next returns the next overlapping record, or io.EOF when no more records
// can match (either the stream ended or the sort order proves we're past
// the region).
func (f *Filter) Next() (*record.Record, error) {
	if f.done {
		return nil, io.EOF
	}
	for {
		rec, err := f.dec.Decode(f.stream)
		if err != nil {
			f.done = true
			return nil, classifyRecordErr(err)
		}
		recCoord := genomic.Coord{RefID: rec.RefID, Pos: rec.Position}
		switch {
		case rec.RefID < f.refID:
			continue
		case recCoord.GE(f.endCoord):
			// Covers both rec having moved past refID entirely and rec
			// sitting on refID at or beyond end; Coord's RefID-then-Pos
			// ordering makes both cases a single comparison.
			f.done = true
			return nil, io.EOF
		case uint32(rec.Position) > f.beg:
			return rec, nil
		case uint32(rec.Position)+record.BasesCovered(rec.Cigar) <= f.beg:
			continue
		default:
			return rec, nil
		}
	}
}
