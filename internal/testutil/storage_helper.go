package testutil

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/fsouza/fake-gcs-server/fakestorage"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/storage"
)

// TestBucket is the bucket name used by storage-backed tests.
const TestBucket = "job-tracker-test"

// NewFakeObjectStore boots an in-process GCS backend and returns a client
// wired to it. URL signing uses a throwaway RSA key so no real credentials
// are needed.
func NewFakeObjectStore(t *testing.T) *storage.CloudStorageClient {
	t.Helper()

	server := fakestorage.NewServer(nil)
	t.Cleanup(server.Stop)
	server.CreateBucketWithOpts(fakestorage.CreateBucketOpts{Name: TestBucket})

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate signing key: %v", err)
	}

	client := storage.NewCloudStorageClientWith(server.Client(), TestBucket)
	client.SignerOpts = &gcs.SignedURLOptions{
		GoogleAccessID: "test-signer@example.iam.gserviceaccount.com",
		SignBytes: func(b []byte) ([]byte, error) {
			sum := sha256.Sum256(b)
			return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, sum[:])
		},
	}
	return client
}
