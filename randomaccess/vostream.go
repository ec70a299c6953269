package randomaccess

import "github.com/grailbio/bamra/encoding/bgzf"

// augmentedSource is the interface VOStream needs from the trimmer.
type augmentedSource interface {
	Next() (AugmentedBlock, error)
}

// VOStream is the linear byte reader of §4.6: it exposes the trimmed block
// stream as a plain io.Reader while tracking the virtual offset of the next
// unread byte. It implements record.ByteReader.
//
// Per §4.6, a newly pulled block is trimmed eagerly (skip_start bytes
// dropped immediately), so CurrentVirtualOffset always reflects the next
// unread byte even when that byte is the first one of a freshly loaded
// block — it never reports a stale offset into an already-exhausted block.
type VOStream struct {
	src augmentedSource

	curOffset int64  // StartOffset of the block currently loaded
	skipStart int    // bytes skipped from the front of the current block
	payload   []byte // effective (already-trimmed) payload of the current block
	pos       int    // bytes consumed from payload so far
	loaded    bool
	pendingErr error // terminal error seen while priming; returned by the next advance()
}

// NewVOStream returns a VOStream over the trimmed block stream produced by
// src, primed so CurrentVirtualOffset is correct even before the first Read.
func NewVOStream(src augmentedSource) *VOStream {
	v := &VOStream{src: src}
	v.primeFirstBlock()
	return v
}

func (v *VOStream) primeFirstBlock() {
	for {
		aug, err := v.src.Next()
		if err != nil {
			v.pendingErr = err
			return
		}
		v.setBlock(aug)
		if len(v.payload) > 0 {
			return
		}
	}
}

// Read implements io.Reader, pulling additional blocks as needed. It
// returns io.EOF (or whatever terminal error the pipeline produced) only
// once the underlying stream truly ends.
func (v *VOStream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if !v.loaded || v.pos >= len(v.payload) {
			if err := v.advance(); err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
		}
		c := copy(p[n:], v.payload[v.pos:])
		v.pos += c
		n += c
	}
	v.primeNextBlock()
	return n, nil
}

// advance pulls the next augmented block and sets up its effective payload
// (skip_start bytes dropped from the front, skip_end bytes dropped from the
// back). A block entirely consumed by skipping is silently skipped over.
func (v *VOStream) advance() error {
	if v.pendingErr != nil {
		err := v.pendingErr
		v.pendingErr = nil
		return err
	}
	for {
		aug, err := v.src.Next()
		if err != nil {
			return err
		}
		v.setBlock(aug)
		if len(v.payload) > 0 {
			return nil
		}
	}
}

func (v *VOStream) setBlock(aug AugmentedBlock) {
	end := len(aug.Data) - aug.SkipEnd
	if end < aug.SkipStart {
		end = aug.SkipStart
	}
	v.curOffset = aug.StartOffset
	v.skipStart = aug.SkipStart
	v.payload = aug.Data[aug.SkipStart:end]
	v.pos = 0
	v.loaded = true
}

// primeNextBlock is called right after the current block is fully consumed
// so CurrentVirtualOffset reports the next block's start rather than the
// tail of an exhausted one. Any error (typically io.EOF) is stashed for the
// next Read/advance call rather than surfacing on a successful Read.
func (v *VOStream) primeNextBlock() {
	if v.pendingErr != nil || !v.loaded || v.pos < len(v.payload) {
		return
	}
	for {
		aug, err := v.src.Next()
		if err != nil {
			v.pendingErr = err
			return
		}
		v.setBlock(aug)
		if len(v.payload) > 0 {
			return
		}
	}
}

// CurrentVirtualOffset returns the virtual offset of the next unread byte,
// per §4.6's invariant that this equals the BAI-style VO of the next record.
func (v *VOStream) CurrentVirtualOffset() bgzf.VirtualOffset {
	if !v.loaded {
		return bgzf.VirtualOffset{}
	}
	return bgzf.VirtualOffset{Coffset: v.curOffset, Uoffset: uint16(v.skipStart + v.pos)}
}
