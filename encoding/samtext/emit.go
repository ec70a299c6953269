// Package samtext renders decoded alignment records as SAM text, the
// boundary format described in §4.9. It is a thin, mechanical layer: no
// query logic lives here.
package samtext

import (
	"bufio"
	"strconv"

	"github.com/grailbio/bamra/encoding/record"
)

// RefNamer resolves a reference id to its name, as carried in the BAM
// header's reference dictionary. Callers own the dictionary; this package
// only consumes it.
type RefNamer interface {
	Name(refID int32) string
}

// Write renders one record as a tab-separated SAM line, including the
// trailing newline, in the field order fixed by §4.9.
func Write(out *bufio.Writer, r *record.Record, refs RefNamer) error {
	out.WriteString(qname(r))
	out.WriteByte('\t')
	writeInt(out, int64(r.Flag))
	out.WriteByte('\t')
	out.WriteString(rname(r, refs))
	out.WriteByte('\t')
	writeInt(out, int64(r.Position)+1)
	out.WriteByte('\t')
	writeInt(out, int64(r.MapQ))
	out.WriteByte('\t')
	out.WriteString(cigarString(r))
	out.WriteByte('\t')
	out.WriteString(rnext(r, refs))
	out.WriteByte('\t')
	writeInt(out, int64(r.NextPos)+1)
	out.WriteByte('\t')
	writeInt(out, int64(r.TemplateLen))
	out.WriteByte('\t')
	out.WriteString(seqField(r))
	out.WriteByte('\t')
	out.WriteString(qualField(r))
	for _, tag := range r.Tags {
		if err := writeTag(out, tag); err != nil {
			return err
		}
	}
	out.WriteByte('\n')
	return out.Flush()
}

func qname(r *record.Record) string {
	if r.Name == "" {
		return "*"
	}
	return r.Name
}

func rname(r *record.Record, refs RefNamer) string {
	if r.RefID == record.Unmapped {
		return "*"
	}
	return refs.Name(r.RefID)
}

func rnext(r *record.Record, refs RefNamer) string {
	switch {
	case r.NextRefID == record.Unmapped:
		return "*"
	case r.NextRefID == r.RefID:
		return "="
	default:
		return refs.Name(r.NextRefID)
	}
}

func cigarString(r *record.Record) string {
	if len(r.Cigar) == 0 {
		return "*"
	}
	var b []byte
	for _, op := range r.Cigar {
		b = strconv.AppendUint(b, uint64(op.Len()), 10)
		b = append(b, op.Char())
	}
	return string(b)
}

func seqField(r *record.Record) string {
	if r.SeqLen == 0 {
		return "*"
	}
	return r.Bases()
}

func qualField(r *record.Record) string {
	if !r.HasQual() {
		return "*"
	}
	out := make([]byte, len(r.Qual))
	for i, q := range r.Qual {
		out[i] = q + 33
	}
	return string(out)
}

func writeInt(out *bufio.Writer, v int64) {
	var buf [20]byte
	out.Write(strconv.AppendInt(buf[:0], v, 10))
}
