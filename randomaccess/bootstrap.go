package randomaccess

import (
	"context"

	"github.com/grailbio/bamra/encoding/bai"
	"github.com/grailbio/base/file"
)

// LoadIndex opens and parses the BAI index at path using the generic,
// backend-agnostic file.Open abstraction, the way bamprovider.BAMProvider
// bootstraps its index (file.Open(ctx, b.indexPath())). This is separate
// from the Opener a Manager uses for the hot per-chunk read path: bootstrap
// reads the whole index once, up front, so it doesn't need io.ReaderAt or
// chunk-level positioning.
func LoadIndex(ctx context.Context, path string) (*bai.Index, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, newError("LoadIndex", IoError, err)
	}
	defer f.Close(ctx)
	idx, err := bai.ReadIndex(f.Reader(ctx))
	if err != nil {
		return nil, newError("LoadIndex", IoError, err)
	}
	return idx, nil
}
