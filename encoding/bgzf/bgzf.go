// Package bgzf implements the BGZF (block gzip) container format used by
// BAM: a concatenation of independently-inflatable gzip members, each
// holding at most 64KiB of uncompressed payload, with an "extra" subfield
// recording the compressed size of the member so a reader can walk the
// block boundaries without inflating.
//
// This package plays the role the specification calls an "external
// collaborator": it supplies the block framing parser and inflate
// implementation that the randomaccess engine is built against, behind the
// BlockSource, Decompressor and Cache interfaces. Nothing in this package
// knows about chunks, bins or genomic coordinates.
package bgzf

// MaxBlockSize is the largest legal decompressed size of a single BGZF
// block, per the BAM specification.
const MaxBlockSize = 65536

// magic is the 4-byte gzip+BGZF magic prefix common to every block,
// including the empty EOF marker.
var magic = [4]byte{0x1f, 0x8b, 0x08, 0x04}

// eofBlock is the canonical 28-byte empty BGZF block appended to every
// well-formed BAM/BGZF file to mark EOF.
var eofBlock = [28]byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00,
	0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
}

// EOFBlockSize is len(eofBlock).
const EOFBlockSize = int64(len(eofBlock))
