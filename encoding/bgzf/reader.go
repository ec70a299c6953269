package bgzf

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// header is the 18-byte fixed prefix common to every BGZF block (including
// the EOF marker): the gzip fixed header, the FEXTRA length, and the single
// "BC" subfield BGZF uses to record the block's on-disk size.
const headerSize = 18
const footerSize = 8 // CRC32 + ISIZE, little-endian

// ErrTruncated is returned (wrapped) when a block is cut off mid-header,
// mid-payload or mid-footer.
var ErrTruncated = errors.New("bgzf: truncated block")

// ErrBadMagic is returned (wrapped) when a block's header doesn't match the
// fixed BGZF byte layout from §6.
var ErrBadMagic = errors.New("bgzf: bad block header")

// fileBlockSource reads consecutive raw BGZF blocks from an io.Reader that
// is already positioned at the desired starting file offset. It is the
// default BlockSource: the splicer creates one per chunk, each an
// io.SectionReader over the single reader its Manager opened for the whole
// query, not a freshly reopened file or object.
type fileBlockSource struct {
	r      io.Reader
	offset int64
}

// NewFileBlockSource returns a BlockSource that reads raw blocks from r,
// which must already be positioned at file offset startOffset.
func NewFileBlockSource(r io.Reader, startOffset int64) BlockSource {
	return &fileBlockSource{r: r, offset: startOffset}
}

func (s *fileBlockSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *fileBlockSource) Next() (RawBlock, error) {
	var header [headerSize]byte
	n, err := io.ReadFull(s.r, header[:])
	if err != nil {
		if err == io.EOF && n == 0 {
			return RawBlock{}, io.EOF
		}
		return RawBlock{}, errors.Wrap(ErrTruncated, "reading block header")
	}
	if header[0] != magic[0] || header[1] != magic[1] || header[2] != magic[2] || header[3] != magic[3] {
		return RawBlock{}, errors.Wrapf(ErrBadMagic, "offset %d: magic %x", s.offset, header[0:4])
	}
	xlen := binary.LittleEndian.Uint16(header[10:12])
	if xlen != 6 {
		return RawBlock{}, errors.Wrapf(ErrBadMagic, "offset %d: XLEN %d, want 6", s.offset, xlen)
	}
	if header[12] != 'B' || header[13] != 'C' {
		return RawBlock{}, errors.Wrapf(ErrBadMagic, "offset %d: subfield id %q, want BC", s.offset, header[12:14])
	}
	slen := binary.LittleEndian.Uint16(header[14:16])
	if slen != 2 {
		return RawBlock{}, errors.Wrapf(ErrBadMagic, "offset %d: SLEN %d, want 2", s.offset, slen)
	}
	bsize := binary.LittleEndian.Uint16(header[16:18])
	totalSize := int(bsize) + 1
	payloadLen := totalSize - headerSize - footerSize
	if payloadLen < 0 {
		return RawBlock{}, errors.Wrapf(ErrBadMagic, "offset %d: BSIZE %d too small", s.offset, bsize)
	}

	compressed := make([]byte, payloadLen)
	if _, err := io.ReadFull(s.r, compressed); err != nil {
		return RawBlock{}, errors.Wrap(ErrTruncated, "reading block payload")
	}

	var footer [footerSize]byte
	if _, err := io.ReadFull(s.r, footer[:]); err != nil {
		return RawBlock{}, errors.Wrap(ErrTruncated, "reading block footer")
	}

	block := RawBlock{
		StartOffset: s.offset,
		Compressed:  compressed,
		CRC32:       binary.LittleEndian.Uint32(footer[0:4]),
		ISize:       binary.LittleEndian.Uint32(footer[4:8]),
	}
	s.offset += int64(totalSize)
	return block, nil
}
