package source

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
)

// Opener resolves data URIs to readers.
//
// Local paths and file:// URIs are read from disk. s3://bucket/key URIs are
// fetched with an S3 client, created from S3ConfigFromEnv on first use
// unless one was supplied.
type Opener struct {
	// S3 fetches s3:// objects. Nil means "create from environment".
	S3 ObjectGetter

	once  sync.Once
	s3Err error
}

// Open returns the raw (possibly compressed) bytes behind uri.
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, key, err := parseS3URI(uri)
		if err != nil {
			return nil, err
		}
		client, err := o.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return getObject(ctx, client, bucket, key)
	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", uri, err)
		}
		return os.Open(u.Path)
	default:
		return os.Open(uri)
	}
}

// OpenDecoded opens uri and transparently gunzips it when the stream starts
// with the gzip magic bytes.
func (o *Opener) OpenDecoded(ctx context.Context, uri string) (io.ReadCloser, error) {
	rc, err := o.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	return decompress(rc)
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.once.Do(func() {
		if o.S3 != nil {
			return
		}
		o.S3, o.s3Err = NewS3Client(ctx, S3ConfigFromEnv())
	})
	return o.S3, o.s3Err
}

// decompress wraps rc in a gzip reader when it carries gzip magic bytes.
func decompress(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		rc.Close()
		return nil, fmt.Errorf("sniff compression: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return &stackedCloser{Reader: zr, closers: []io.Closer{zr, rc}}, nil
	}
	return &stackedCloser{Reader: br, closers: []io.Closer{rc}}, nil
}

// stackedCloser closes every layer of a reader stack, innermost first.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func parseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse %s: %w", uri, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 uri %q: want s3://bucket/key", uri)
	}
	return bucket, key, nil
}
