package storage

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalOpenerReadsFile(t *testing.T) {
	f, err := ioutil.TempFile(t.TempDir(), "bamra-storage-*")
	require.NoError(t, err)
	_, err = f.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ra, size, err := LocalOpener{}.Open(context.Background(), f.Name())
	require.NoError(t, err)
	defer ra.Close()
	require.Equal(t, int64(11), size)

	buf := make([]byte, 5)
	n, err := ra.ReadAt(buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))
}

func TestLocalOpenerMissingFile(t *testing.T) {
	_, _, err := LocalOpener{}.Open(context.Background(), "/nonexistent/path/to/nowhere.bam")
	require.Error(t, err)
}

func TestNewChunkReaderReadsFromOffset(t *testing.T) {
	f, err := ioutil.TempFile(t.TempDir(), "bamra-storage-*")
	require.NoError(t, err)
	_, err = f.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ra, size, err := LocalOpener{}.Open(context.Background(), f.Name())
	require.NoError(t, err)
	defer ra.Close()

	r := NewChunkReader(ra, size, 4)
	got, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "456789", string(got))
}

// memReaderAtCloser is a minimal in-memory ReaderAtCloser for exercising
// NewChunkReader's offset clamping without touching the filesystem.
type memReaderAtCloser struct {
	*bytes.Reader
	closed bool
}

func (m *memReaderAtCloser) Close() error {
	m.closed = true
	return nil
}

type memOpener struct {
	data     []byte
	lastOpen *memReaderAtCloser
	numOpens int
}

func (m *memOpener) Open(ctx context.Context, path string) (ReaderAtCloser, int64, error) {
	m.numOpens++
	m.lastOpen = &memReaderAtCloser{Reader: bytes.NewReader(m.data)}
	return m.lastOpen, int64(len(m.data)), nil
}

func TestNewChunkReaderClampsOffsetPastEnd(t *testing.T) {
	opener := &memOpener{data: []byte("short")}
	ra, size, err := opener.Open(context.Background(), "mem")
	require.NoError(t, err)
	defer ra.Close()

	r := NewChunkReader(ra, size, 100)
	got, err := ioutil.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestNewChunkReaderSharesOneReaderAcrossChunks(t *testing.T) {
	opener := &memOpener{data: []byte("0123456789")}
	ra, size, err := opener.Open(context.Background(), "mem")
	require.NoError(t, err)
	defer ra.Close()

	first := NewChunkReader(ra, size, 0)
	second := NewChunkReader(ra, size, 5)

	got1, err := ioutil.ReadAll(first)
	require.NoError(t, err)
	require.Equal(t, "01234", string(got1))

	got2, err := ioutil.ReadAll(second)
	require.NoError(t, err)
	require.Equal(t, "56789", string(got2))

	require.False(t, opener.lastOpen.closed, "NewChunkReader must not close the shared reader")
	require.Equal(t, 1, opener.numOpens, "one Open call served both chunk reads")
}

func TestParseS3Path(t *testing.T) {
	bucket, key, err := parseS3Path("s3://my-bucket/some/nested/key.bam")
	require.NoError(t, err)
	require.Equal(t, "my-bucket", bucket)
	require.Equal(t, "some/nested/key.bam", key)
}

func TestParseS3PathRejectsNonS3(t *testing.T) {
	_, _, err := parseS3Path("/local/path.bam")
	require.Error(t, err)
}

func TestParseS3PathRejectsMissingKey(t *testing.T) {
	_, _, err := parseS3Path("s3://bucket-only")
	require.Error(t, err)
}
