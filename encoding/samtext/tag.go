package samtext

import (
	"bufio"
	"strconv"

	"github.com/grailbio/bamra/encoding/record"
	"github.com/pkg/errors"
)

// writeTag renders one tag as "\tXX:<type-specific>", per §4.9's exact
// oracle format: integers always render with type char 'i' regardless of
// their on-disk width, floats via %g, Z/H keep their original type char.
func writeTag(out *bufio.Writer, tag record.Tag) error {
	out.WriteByte('\t')
	out.Write(tag.Key[:])
	out.WriteByte(':')

	switch tag.Type {
	case record.TagInt8, record.TagUint8, record.TagInt16, record.TagUint16,
		record.TagInt32, record.TagUint32:
		out.WriteString("i:")
		writeInt(out, tag.Int)
	case record.TagFloat:
		out.WriteString("f:")
		out.WriteString(formatFloat(tag.Float))
	case record.TagChar:
		out.WriteString("A:")
		out.WriteByte(tag.Char)
	case record.TagString:
		out.WriteString("Z:")
		out.WriteString(tag.Str)
	case record.TagHex:
		out.WriteString("H:")
		out.WriteString(tag.Str)
	case record.TagArray:
		out.WriteString("B:")
		out.WriteByte(byte(tag.ArrayEl))
		if tag.ArrayEl == record.TagFloat {
			for _, v := range tag.FltArray {
				out.WriteByte(',')
				out.WriteString(formatFloat(v))
			}
		} else {
			for _, v := range tag.IntArray {
				out.WriteByte(',')
				writeInt(out, v)
			}
		}
	default:
		return errors.Errorf("samtext: unknown tag type %q", byte(tag.Type))
	}
	return nil
}

func formatFloat(f float32) string {
	return string(strconv.AppendFloat(nil, float64(f), 'g', -1, 32))
}
