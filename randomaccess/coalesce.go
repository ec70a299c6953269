package randomaccess

import "github.com/grailbio/bamra/encoding/bai"

// CoalesceChunks implements §4.2: merges adjacent/overlapping chunks in a
// beg-sorted list into a minimal disjoint set. chunks must already be
// sorted ascending by Beg (ResolveChunks guarantees this).
func CoalesceChunks(chunks []bai.Chunk) []bai.Chunk {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]bai.Chunk, 0, len(chunks))
	cur := chunks[0]
	for _, c := range chunks[1:] {
		if c.Beg.LE(cur.End) {
			if cur.End.LT(c.End) {
				cur.End = c.End
			}
			continue
		}
		out = append(out, cur)
		cur = c
	}
	out = append(out, cur)
	return out
}
