// Package media stores uploaded images in a gocloud.dev blob bucket and
// builds the public URLs they are served from.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

const cacheControl = "public, max-age=3600"

var (
	ErrForbidden = errors.New("storage permission denied")
	ErrNotFound  = errors.New("object not found")
)

type Bucket struct {
	bk         *blob.Bucket
	publicBase string
}

// Open opens the bucket at bucketURL (file://, mem:// or s3://). Local
// file buckets have their directory created first.
func Open(ctx context.Context, bucketURL, publicBaseURL string) (*Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("parse bucket url: %w", err)
	}
	if u.Scheme == "file" {
		if err := os.MkdirAll(filepath.FromSlash(u.Path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure bucket dir: %w", err)
		}
	}
	bk, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return &Bucket{bk: bk, publicBase: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (b *Bucket) Close() error {
	return b.bk.Close()
}

// Upload writes r under key and returns the sanitized key actually used.
func (b *Bucket) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	key = sanitizeKey(key)
	if key == "" {
		return "", errors.New("empty object key")
	}
	w, err := b.bk.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
	})
	if err != nil {
		return "", translate(err)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", translate(err)
	}
	if err := w.Close(); err != nil {
		return "", translate(err)
	}
	return key, nil
}

// Reader opens the object for reading. The caller closes it.
func (b *Bucket) Reader(ctx context.Context, key string) (*blob.Reader, error) {
	r, err := b.bk.NewReader(ctx, sanitizeKey(key), nil)
	if err != nil {
		return nil, translate(err)
	}
	return r, nil
}

// Delete removes key. A missing object yields ErrNotFound.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	return translate(b.bk.Delete(ctx, sanitizeKey(key)))
}

// PublicURL is the address clients fetch key from.
func (b *Bucket) PublicURL(key string) string {
	key = sanitizeKey(key)
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return b.publicBase + "/" + strings.Join(parts, "/")
}

// KeyFromURL reverses PublicURL. It reports false for URLs that do not
// point into this bucket.
func (b *Bucket) KeyFromURL(raw string) (string, bool) {
	rest, ok := strings.CutPrefix(raw, b.publicBase+"/")
	if !ok || rest == "" {
		return "", false
	}
	parts := strings.Split(rest, "/")
	for i, part := range parts {
		unescaped, err := url.PathUnescape(part)
		if err != nil {
			return "", false
		}
		parts[i] = unescaped
	}
	key := sanitizeKey(strings.Join(parts, "/"))
	return key, key != ""
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	switch gcerrors.Code(err) {
	case gcerrors.PermissionDenied:
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	case gcerrors.NotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if strings.Contains(strings.ToLower(err.Error()), "permission denied") {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return err
}

// sanitizeKey prevents path traversal.
func sanitizeKey(key string) string {
	key = filepath.ToSlash(key)
	key = strings.TrimLeft(key, "/")
	parts := strings.Split(key, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}
