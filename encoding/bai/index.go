// Package bai parses the BAI index format: a bin/chunk tree plus a linear
// index, per reference sequence. This package plays the role of the "BAI
// file parser" external collaborator from §1 — it turns bytes into
// structure, and does not itself know how to resolve a query into chunks
// (that algorithm lives in package randomaccess, which only depends on the
// types here).
package bai

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/grailbio/bamra/encoding/bgzf"
	"github.com/pkg/errors"
)

var magic = [4]byte{'B', 'A', 'I', 0x1}

// metadataBin is the pseudo bin id BAI uses to carry per-reference mapped
// and unmapped read counts instead of a real chunk list.
const metadataBin = 37450

// Chunk is a [Beg,End) range of virtual offsets.
type Chunk struct {
	Beg, End bgzf.VirtualOffset
}

// Bin is one node of the UCSC/SAM binning tree.
type Bin struct {
	ID     uint32
	Chunks []Chunk
}

// Metadata carries the pseudo-bin 37450 statistics, when present.
type Metadata struct {
	UnmappedBeg, UnmappedEnd bgzf.VirtualOffset
	Mapped, Unmapped         uint64
}

// Reference is the index data for a single reference sequence.
type Reference struct {
	Bins        []Bin
	LinearIndex []bgzf.VirtualOffset
	Meta        *Metadata
}

// Index is the parsed content of a .bai file.
type Index struct {
	References []Reference
	Unmapped   *uint64
}

// ErrBadMagic is returned (wrapped) when the file doesn't start with the
// 4-byte BAI magic.
var ErrBadMagic = errors.New("bai: bad magic")

// ReadIndex parses a .bai file from r.
func ReadIndex(r io.Reader) (*Index, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, errors.Wrap(err, "bai: reading magic")
	}
	if got != magic {
		return nil, errors.Wrapf(ErrBadMagic, "got %v", got)
	}

	nRefs, err := readInt32(r)
	if err != nil {
		return nil, errors.Wrap(err, "bai: reading reference count")
	}
	idx := &Index{References: make([]Reference, nRefs)}
	for i := int32(0); i < nRefs; i++ {
		ref, err := readReference(r)
		if err != nil {
			return nil, errors.Wrapf(err, "bai: reading reference %d", i)
		}
		idx.References[i] = ref
	}

	var unmapped uint64
	if err := binary.Read(r, binary.LittleEndian, &unmapped); err == nil {
		idx.Unmapped = &unmapped
	} else if err != io.EOF {
		return nil, errors.Wrap(err, "bai: reading trailing unmapped count")
	}
	return idx, nil
}

func readReference(r io.Reader) (Reference, error) {
	nBins, err := readInt32(r)
	if err != nil {
		return Reference{}, errors.Wrap(err, "reading bin count")
	}
	ref := Reference{Bins: make([]Bin, 0, nBins)}
	for b := int32(0); b < nBins; b++ {
		binID, err := readUint32(r)
		if err != nil {
			return Reference{}, errors.Wrap(err, "reading bin id")
		}
		nChunks, err := readInt32(r)
		if err != nil {
			return Reference{}, errors.Wrap(err, "reading chunk count")
		}
		chunks := make([]Chunk, nChunks)
		for c := int32(0); c < nChunks; c++ {
			beg, err := readUint64(r)
			if err != nil {
				return Reference{}, errors.Wrap(err, "reading chunk begin")
			}
			end, err := readUint64(r)
			if err != nil {
				return Reference{}, errors.Wrap(err, "reading chunk end")
			}
			chunks[c] = Chunk{Beg: bgzf.Unpack(beg), End: bgzf.Unpack(end)}
		}
		if binID == metadataBin {
			if len(chunks) != 2 {
				return Reference{}, errors.Errorf("metadata bin has %d chunks, want 2", len(chunks))
			}
			ref.Meta = &Metadata{
				UnmappedBeg: chunks[0].Beg,
				UnmappedEnd: chunks[0].End,
				Mapped:      uint64(chunks[1].Beg.Pack()),
				Unmapped:    uint64(chunks[1].End.Pack()),
			}
			continue
		}
		ref.Bins = append(ref.Bins, Bin{ID: binID, Chunks: chunks})
	}
	sort.Slice(ref.Bins, func(i, j int) bool { return ref.Bins[i].ID < ref.Bins[j].ID })

	nIntervals, err := readInt32(r)
	if err != nil {
		return Reference{}, errors.Wrap(err, "reading linear index count")
	}
	ref.LinearIndex = make([]bgzf.VirtualOffset, nIntervals)
	for i := int32(0); i < nIntervals; i++ {
		v, err := readUint64(r)
		if err != nil {
			return Reference{}, errors.Wrap(err, "reading linear index entry")
		}
		ref.LinearIndex[i] = bgzf.Unpack(v)
	}
	return ref, nil
}

func readInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readUint64(r io.Reader) (uint64, error) {
	var v uint64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// MinOffsetFor returns the linear-index lower bound for a query starting at
// beg, or the zero virtual offset if beg lies past the linear index. This is
// §4.1 step 1 and the "min_offset_for" helper from §6.
func (ref *Reference) MinOffsetFor(beg uint32) bgzf.VirtualOffset {
	tile := int(beg) >> linearWindowSh
	if tile >= len(ref.LinearIndex) {
		return bgzf.VirtualOffset{}
	}
	return ref.LinearIndex[tile]
}

// BinsOverlapping returns the bins in ref whose id is in the candidate set
// for [beg,end), in bin-id order. Bins present in the candidate set but
// absent from the index are simply not returned.
func (ref *Reference) BinsOverlapping(beg, end uint32) []Bin {
	candidates := regionToBins(int64(beg), int64(end))
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	var out []Bin
	for _, id := range candidates {
		i := sort.Search(len(ref.Bins), func(i int) bool { return ref.Bins[i].ID >= id })
		if i < len(ref.Bins) && ref.Bins[i].ID == id {
			out = append(out, ref.Bins[i])
		}
	}
	return out
}
