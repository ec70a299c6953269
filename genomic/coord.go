// Package genomic defines the small coordinate types shared by the index,
// record and random-access packages.
package genomic

import "fmt"

// InfinityRefID sorts after every real reference id in a coordinate-sorted
// BAM, so it can bound a half-open range that runs to the end of the file.
// Nothing in this module builds such a range.
const InfinityRefID = int32(1<<31 - 1)

// InfinityPos sorts after every real position on a reference.
const InfinityPos = int32(1<<31 - 1)

// Coord is a 0-based (RefID, Pos) genomic coordinate. RefID follows BAM
// convention: -1 denotes an unmapped read with no reference.
type Coord struct {
	RefID int32
	Pos   int32
}

// LT reports whether c sorts strictly before o.
func (c Coord) LT(o Coord) bool {
	if c.RefID != o.RefID {
		return c.RefID < o.RefID
	}
	return c.Pos < o.Pos
}

// LE reports whether c sorts at or before o.
func (c Coord) LE(o Coord) bool { return !o.LT(c) }

// GE reports whether c sorts at or after o.
func (c Coord) GE(o Coord) bool { return !c.LT(o) }

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.RefID, c.Pos) }

// Range is a half-open [Beg,End) interval on a single reference sequence.
type Range struct {
	RefID    int32
	Beg, End uint32
}

func (r Range) String() string { return fmt.Sprintf("%d:%d-%d", r.RefID, r.Beg, r.End) }
