package bgzf

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// ErrCorrupt is returned (wrapped) when a decompressed block's CRC32 or
// decompressed size doesn't match its footer.
var ErrCorrupt = errors.New("bgzf: corrupt block")

// flateDecompressor inflates the raw deflate payload of a BGZF member with
// klauspost/compress, the inflate implementation used throughout this
// module's ecosystem (the teacher and several sibling repos in the corpus
// depend on it for the same purpose).
type flateDecompressor struct{}

// NewDecompressor returns the default Decompressor.
func NewDecompressor() Decompressor { return flateDecompressor{} }

func (flateDecompressor) Decompress(b RawBlock) (DecompressedBlock, error) {
	fr := flate.NewReader(bytes.NewReader(b.Compressed))
	defer fr.Close()

	var buf bytes.Buffer
	buf.Grow(int(b.ISize))
	if _, err := io.Copy(&buf, fr); err != nil {
		return DecompressedBlock{}, errors.Wrapf(ErrCorrupt, "offset %d: inflate: %v", b.StartOffset, err)
	}
	data := buf.Bytes()

	if uint32(len(data)) != b.ISize {
		return DecompressedBlock{}, errors.Wrapf(ErrCorrupt, "offset %d: decompressed size %d, want %d", b.StartOffset, len(data), b.ISize)
	}
	if crc32.ChecksumIEEE(data) != b.CRC32 {
		return DecompressedBlock{}, errors.Wrapf(ErrCorrupt, "offset %d: CRC32 mismatch", b.StartOffset)
	}
	return DecompressedBlock{StartOffset: b.StartOffset, Data: data}, nil
}
