package bai

// The classic BAI bin scheme is the CSI binning scheme (see the SAM
// specification §5.3) instantiated with a minimum bin size of 2^14 (16384bp,
// matching the linear index tile width) and 5 levels. This file is grounded
// directly on the generalized CSI reg2bin/reg2bins routines used elsewhere
// in this corpus; BAI simply fixes minShift and depth rather than storing
// them in the index header the way CSI does.
const (
	minShift       = 14
	depth          = 5
	nextBinShift   = 3
	linearWindow   = 1 << minShift
	linearWindowSh = minShift
)

// reg2bin returns the smallest bin fully containing [beg,end).
func reg2bin(beg, end int64) uint32 {
	end--
	s := uint32(minShift)
	t := uint32(((1 << (depth * nextBinShift)) - 1) / 7)
	for level := uint32(depth); level > 0; level-- {
		offsetBeg := beg >> s
		offsetEnd := end >> s
		if offsetBeg == offsetEnd {
			return t + uint32(offsetBeg)
		}
		s += nextBinShift
		t -= 1 << ((level - 1) * nextBinShift)
	}
	return 0
}

// regionToBins returns every bin id whose covered interval may intersect
// [beg,end), per §4.1 step 2. The set is a union of contiguous ranges, one
// per level of the bin hierarchy.
func regionToBins(beg, end int64) []uint32 {
	end--
	var list []uint32
	s := uint32(minShift + depth*nextBinShift)
	for level, t := uint32(0), uint32(0); level <= depth; level++ {
		b := t + uint32(beg>>s)
		e := t + uint32(end>>s)
		for i := b; i <= e; i++ {
			list = append(list, i)
		}
		s -= nextBinShift
		t += 1 << (level * nextBinShift)
	}
	return list
}
