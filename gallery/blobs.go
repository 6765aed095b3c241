package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"

	// Drivers for OpenBlobs URLs.
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
)

// Blobs is a flat object store addressed by slash-separated keys.
// Missing keys report ErrNotFound.
type Blobs interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) (data []byte, created time.Time, err error)
	Stat(ctx context.Context, key string) (created time.Time, err error)
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	Delete(ctx context.Context, key string) error
}

// BlobInfo describes one stored object.
type BlobInfo struct {
	Key     string
	Created time.Time
}

// BucketBlobs stores objects in a Go CDK bucket. The creation time of an
// object is its modification time in the bucket.
type BucketBlobs struct {
	bucket *blob.Bucket
}

var _ Blobs = (*BucketBlobs)(nil)

// NewBucketBlobs returns an object store over bucket. Closing the store
// closes the bucket.
func NewBucketBlobs(bucket *blob.Bucket) *BucketBlobs {
	return &BucketBlobs{bucket: bucket}
}

// OpenBlobs opens the bucket at a Go CDK URL such as
// "file:///var/lib/oekaki/objects?create_dir=true", "gs://my-bucket" or
// "mem://".
func OpenBlobs(ctx context.Context, url string) (*BucketBlobs, error) {
	b, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("gallery: open bucket %s: %w", url, err)
	}
	return NewBucketBlobs(b), nil
}

// OpenDirBlobs opens a bucket backed by files below dir, creating dir
// when it does not exist.
func OpenDirBlobs(dir string) (*BucketBlobs, error) {
	b, err := fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, fmt.Errorf("gallery: open bucket dir %s: %w", dir, err)
	}
	return NewBucketBlobs(b), nil
}

// Close releases the bucket.
func (b *BucketBlobs) Close() error {
	return b.bucket.Close()
}

// checkKey rejects keys that are not clean relative paths.
func checkKey(key string) error {
	if !fs.ValidPath(key) || key == "." {
		return fmt.Errorf("%w: key %q", ErrInvalidID, key)
	}
	return nil
}

// Put writes data under key, replacing any previous object.
func (b *BucketBlobs) Put(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return b.bucket.WriteAll(ctx, key, data, nil)
}

// Get returns the object stored under key.
func (b *BucketBlobs) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	if err := checkKey(key); err != nil {
		return nil, time.Time{}, err
	}
	r, err := b.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, time.Time{}, notFound(err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, time.Time{}, err
	}
	return data, r.ModTime(), nil
}

// Stat returns the creation time of the object stored under key.
func (b *BucketBlobs) Stat(ctx context.Context, key string) (time.Time, error) {
	if err := checkKey(key); err != nil {
		return time.Time{}, err
	}
	attrs, err := b.bucket.Attributes(ctx, key)
	if err != nil {
		return time.Time{}, notFound(err)
	}
	return attrs.ModTime, nil
}

// List returns the objects whose keys start with prefix, in key order.
func (b *BucketBlobs) List(ctx context.Context, prefix string) ([]BlobInfo, error) {
	var out []BlobInfo
	it := b.bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gallery: list %s: %w", prefix, err)
		}
		if obj.IsDir {
			continue
		}
		out = append(out, BlobInfo{Key: obj.Key, Created: obj.ModTime})
	}
	return out, nil
}

// Delete removes the object stored under key.
func (b *BucketBlobs) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := b.bucket.Delete(ctx, key); err != nil {
		return notFound(err)
	}
	return nil
}

// notFound translates a missing object into ErrNotFound.
func notFound(err error) error {
	if gcerrors.Code(err) == gcerrors.NotFound {
		return ErrNotFound
	}
	return err
}
