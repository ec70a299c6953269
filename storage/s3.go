package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// S3Opener reads objects from S3 using ranged GetObject requests. Unlike
// LocalOpener, it does not share a handle across chunks: each ReadAt issues
// its own ranged GET, since HTTP range requests have no cheap "reposition"
// primitive the way a local file descriptor does. This is the other half
// of §9's resolved open question (see DESIGN.md).
type S3Opener struct {
	Client *s3.S3
}

// s3Object identifies one S3 object to read ranges from.
type s3Object struct {
	client *s3.S3
	bucket string
	key    string
}

func (o S3Opener) Open(ctx context.Context, path string) (ReaderAtCloser, int64, error) {
	bucket, key, err := parseS3Path(path)
	if err != nil {
		return nil, 0, err
	}
	head, err := o.Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "storage: heading s3://%s/%s", bucket, key)
	}
	obj := &s3Object{client: o.Client, bucket: bucket, key: key}
	return obj, aws.Int64Value(head.ContentLength), nil
}

func (s *s3Object) ReadAt(p []byte, off int64) (int, error) {
	rangeHeader := fmt.Sprintf("bytes=%d-%d", off, off+int64(len(p))-1)
	out, err := s.client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		return 0, errors.Wrapf(err, "storage: getting s3://%s/%s range %s", s.bucket, s.key, rangeHeader)
	}
	defer out.Body.Close()

	total := 0
	for total < len(p) {
		n, err := out.Body.Read(p[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				break
			}
			return total, err
		}
	}
	return total, nil
}

func (s *s3Object) Close() error { return nil }

func parseS3Path(path string) (bucket, key string, err error) {
	const prefix = "s3://"
	if !strings.HasPrefix(path, prefix) {
		return "", "", errors.Errorf("storage: not an s3 path: %s", path)
	}
	rest := path[len(prefix):]
	i := strings.IndexByte(rest, '/')
	if i < 0 {
		return "", "", errors.Errorf("storage: s3 path missing key: %s", path)
	}
	return rest[:i], rest[i+1:], nil
}
