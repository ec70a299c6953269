package storage

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// LocalOpener opens files on the local filesystem. It opens path exactly
// once per query: the Manager calls Open once and NewChunkReader slices the
// resulting *os.File into one io.SectionReader per chunk via ReadAt, rather
// than reopening per chunk. os.File is safe for concurrent ReadAt (it uses
// pread under the hood).
type LocalOpener struct{}

func (LocalOpener) Open(ctx context.Context, path string) (ReaderAtCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "storage: opening %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, errors.Wrapf(err, "storage: stating %s", path)
	}
	return f, info.Size(), nil
}
