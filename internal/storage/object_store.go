// Package storage maps tracker records onto an object-storage bucket.
//
// One record is one JSON object at <namespace>/<year>/<id>/meta.json;
// attachments are sibling objects under the same id prefix. The bucket is
// the only shared mutable resource in the system.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// ErrNotFound reports that a record or object does not exist. Absence is a
// first-class outcome, distinguishable from I/O failure.
var ErrNotFound = errors.New("not found")

// ErrInvalidID reports a malformed record id.
var ErrInvalidID = errors.New("invalid record id")

// ObjectStore is the data-plane surface the record store needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// URLSigner mints capability URLs scoped to a single object.
type URLSigner interface {
	SignedUploadURL(key, contentType string, maxBytes int64, ttl time.Duration) (string, error)
	SignedDownloadURL(key string, ttl time.Duration) (string, error)
}

// CloudStorageClient implements ObjectStore and URLSigner against a Google
// Cloud Storage bucket.
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client

	// SignerOpts optionally carries explicit signing credentials
	// (GoogleAccessID plus PrivateKey or SignBytes). When nil the client's
	// own credentials are used.
	SignerOpts *storage.SignedURLOptions
}

// NewCloudStorageClient creates a client with ambient credentials.
func NewCloudStorageClient(ctx context.Context, bucketName string) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &CloudStorageClient{BucketName: bucketName, Client: client}, nil
}

// NewCloudStorageClientWith wraps an existing storage client, used by tests
// to point at an in-process bucket.
func NewCloudStorageClientWith(client *storage.Client, bucketName string) *CloudStorageClient {
	return &CloudStorageClient{BucketName: bucketName, Client: client}
}

// Put writes data to key, replacing any existing object. The write is
// atomic at the object level; there is no partial-write recovery.
func (c *CloudStorageClient) Put(ctx context.Context, key string, data []byte, contentType string) error {
	wc := c.Client.Bucket(c.BucketName).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer for %s: %w", key, err)
	}
	return nil
}

// Get reads the full content of key.
func (c *CloudStorageClient) Get(ctx context.Context, key string) ([]byte, error) {
	rc, err := c.Client.Bucket(c.BucketName).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("object %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer func() {
		_ = rc.Close()
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether key currently has an object behind it. A missing
// attachment object is "not yet uploaded", not an error.
func (c *CloudStorageClient) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Client.Bucket(c.BucketName).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return true, nil
}

// Delete removes the object at key.
func (c *CloudStorageClient) Delete(ctx context.Context, key string) error {
	if err := c.Client.Bucket(c.BucketName).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("object %s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// ListKeys returns every object key under prefix in storage-native order.
func (c *CloudStorageClient) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	it := c.Client.Bucket(c.BucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list prefix %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// SignedUploadURL mints a V4 PUT URL for exactly one object key. The
// content type and byte-range cap are baked into the signature, so the
// storage layer rejects uploads that violate them; this tier never sees
// the binary.
func (c *CloudStorageClient) SignedUploadURL(key, contentType string, maxBytes int64, ttl time.Duration) (string, error) {
	opts := c.signedURLOptions()
	opts.Method = "PUT"
	opts.Expires = time.Now().Add(ttl)
	opts.ContentType = contentType
	if maxBytes > 0 {
		opts.Headers = append(opts.Headers, fmt.Sprintf("X-Goog-Content-Length-Range:0,%d", maxBytes))
	}

	url, err := c.Client.Bucket(c.BucketName).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign upload url for %s: %w", key, err)
	}
	return url, nil
}

// SignedDownloadURL mints a V4 GET URL for exactly one object key.
func (c *CloudStorageClient) SignedDownloadURL(key string, ttl time.Duration) (string, error) {
	opts := c.signedURLOptions()
	opts.Method = "GET"
	opts.Expires = time.Now().Add(ttl)

	url, err := c.Client.Bucket(c.BucketName).SignedURL(key, opts)
	if err != nil {
		return "", fmt.Errorf("failed to sign download url for %s: %w", key, err)
	}
	return url, nil
}

func (c *CloudStorageClient) signedURLOptions() *storage.SignedURLOptions {
	opts := &storage.SignedURLOptions{Scheme: storage.SigningSchemeV4}
	if c.SignerOpts != nil {
		opts.GoogleAccessID = c.SignerOpts.GoogleAccessID
		opts.PrivateKey = c.SignerOpts.PrivateKey
		opts.SignBytes = c.SignerOpts.SignBytes
	}
	return opts
}
