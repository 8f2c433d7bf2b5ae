// Package model contains the record types shared across the tracker.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two record flavors. Both share the same shape;
// they differ in id prefix and storage namespace.
type Kind string

var (
	// KindApplication is a job application tracked by the owner.
	KindApplication = Kind("application")
	// KindSubmission is a recruiter-submitted opportunity.
	KindSubmission = Kind("submission")
)

// IDPrefix returns the prefix used in generated ids ("app" or "sub").
func (k Kind) IDPrefix() string {
	if k == KindSubmission {
		return "sub"
	}
	return "app"
}

// Namespace returns the top-level storage folder for the kind.
func (k Kind) Namespace() string {
	if k == KindSubmission {
		return "submissions"
	}
	return "applications"
}

// Contact holds the identity of the person behind a record (the recruiter
// for submissions, the caller for applications). Name and email are
// immutable after creation.
type Contact struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization,omitempty"`
}

// Job describes the position a record is about.
type Job struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	SalaryMin    *int     `json:"salary_min,omitempty"`
	SalaryMax    *int     `json:"salary_max,omitempty"`
	Currency     string   `json:"currency"`
	Requirements string   `json:"requirements,omitempty"`
	Description  string   `json:"description,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

// HistoryEntry is one element of a record's append-only status history.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
	Note      string    `json:"note,omitempty"`
}

// Record is the atomic unit of the tracker, serialized as one JSON object
// in the bucket. CVKey and JDKey are storage keys; a present key whose
// object does not exist yet means the upload is still pending.
type Record struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Status    Status         `json:"status"`
	Contact   Contact        `json:"contact"`
	Job       Job            `json:"job"`
	CVKey     string         `json:"cv_key,omitempty"`
	JDKey     string         `json:"jd_key,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	History   []HistoryEntry `json:"history"`
}

// Summary is the trimmed listing view of a record.
type Summary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Status    Status    `json:"status"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	SalaryMax *int      `json:"salary_max,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
}

// Summarize produces the listing view for a record.
func (r *Record) Summarize() Summary {
	return Summary{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Status:    r.Status,
		Title:     r.Job.Title,
		Company:   r.Job.Company,
		SalaryMax: r.Job.SalaryMax,
		Tags:      r.Job.Tags,
	}
}

// Redact strips the privileged-only fields for public reads.
func (r *Record) Redact() Record {
	pub := *r
	pub.Notes = ""
	pub.History = nil
	return pub
}

// NewID generates a record id of the form <prefix>_<ISO date>_<8 hex>,
// e.g. "app_2025-11-01_1f0c9a2b". Assigned exactly once, at creation.
func NewID(kind Kind, now time.Time) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%s", kind.IDPrefix(), now.UTC().Format("2006-01-02"), suffix)
}
