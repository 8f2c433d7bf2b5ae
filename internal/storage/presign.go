package storage

import (
	"time"
)

const (
	// CVContentType is the only content type accepted for CV uploads.
	CVContentType = "application/pdf"
	// MaxCVBytes caps CV uploads at 10 MB.
	MaxCVBytes = 10 << 20
	// MaxJDBytes caps job-description uploads at 5 MB.
	MaxJDBytes = 5 << 20
	// DefaultURLTTL is the validity of issued URLs when no override is set.
	DefaultURLTTL = 15 * time.Minute
)

// Broker issues short-lived, single-object transfer URLs so request
// handling never carries binary payloads. Possession of an issued URL is
// the capability; the broker cannot revoke one, expiry is enforced by the
// storage layer.
type Broker struct {
	Signer URLSigner
	TTL    time.Duration
}

// NewBroker creates a broker with the given TTL, or DefaultURLTTL when
// ttl is zero.
func NewBroker(signer URLSigner, ttl time.Duration) *Broker {
	if ttl <= 0 {
		ttl = DefaultURLTTL
	}
	return &Broker{Signer: signer, TTL: ttl}
}

// IssueCVUpload mints an upload URL for a record's CV key. Content type
// and size cap travel inside the signature, not as after-the-fact checks.
func (b *Broker) IssueCVUpload(recordID string) (string, error) {
	key, err := CVKey(recordID)
	if err != nil {
		return "", err
	}
	return b.Signer.SignedUploadURL(key, CVContentType, MaxCVBytes, b.TTL)
}

// IssueJDUpload mints an upload URL for a record's job-description key.
func (b *Broker) IssueJDUpload(recordID string) (string, error) {
	key, err := JDKey(recordID)
	if err != nil {
		return "", err
	}
	return b.Signer.SignedUploadURL(key, CVContentType, MaxJDBytes, b.TTL)
}

// IssueDownload mints a download URL for an attachment key.
func (b *Broker) IssueDownload(key string) (string, error) {
	return b.Signer.SignedDownloadURL(key, b.TTL)
}

// TTLSeconds reports the issued-URL validity for response bodies.
func (b *Broker) TTLSeconds() int {
	return int(b.TTL / time.Second)
}
