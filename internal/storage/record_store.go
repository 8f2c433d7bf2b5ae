package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/model"
)

const (
	metaObjectName = "meta.json"
	cvObjectName   = "cv.pdf"
	jdObjectName   = "jd.pdf"

	// DefaultListLimit applies when the caller gives no limit.
	DefaultListLimit = 100
	// MaxListLimit caps a single listing.
	MaxListLimit = 1000
)

// RecordStore performs CRUD and prefix-scoped listing of records.
//
// Concurrent updates of the same record are last-writer-wins: there is no
// version token compared at write time, so two racing read-modify-write
// cycles can silently drop one writer's change.
type RecordStore struct {
	Objects ObjectStore
}

// NewRecordStore creates a record store over the given object store.
func NewRecordStore(objects ObjectStore) *RecordStore {
	return &RecordStore{Objects: objects}
}

// PrefixFor derives the storage folder of a record from its id:
// app_2025-11-01_1f0c9a2b -> applications/2025/app_2025-11-01_1f0c9a2b/
func PrefixFor(id string) (string, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	var ns string
	switch parts[0] {
	case model.KindApplication.IDPrefix():
		ns = model.KindApplication.Namespace()
	case model.KindSubmission.IDPrefix():
		ns = model.KindSubmission.Namespace()
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	if _, err := time.Parse("2006-01-02", parts[1]); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	year := parts[1][:4]
	return fmt.Sprintf("%s/%s/%s/", ns, year, id), nil
}

// MetaKey returns the storage key of a record's JSON object.
func MetaKey(id string) (string, error) {
	prefix, err := PrefixFor(id)
	if err != nil {
		return "", err
	}
	return prefix + metaObjectName, nil
}

// CVKey returns the storage key reserved for a record's CV attachment.
func CVKey(id string) (string, error) {
	prefix, err := PrefixFor(id)
	if err != nil {
		return "", err
	}
	return prefix + cvObjectName, nil
}

// JDKey returns the storage key reserved for a record's job-description attachment.
func JDKey(id string) (string, error) {
	prefix, err := PrefixFor(id)
	if err != nil {
		return "", err
	}
	return prefix + jdObjectName, nil
}

// Create assigns an id and timestamps to the validated draft fields and
// writes the record. The CV key is reserved up front; the binary arrives
// later (or never) through a presigned upload.
func (s *RecordStore) Create(ctx context.Context, kind model.Kind, contact model.Contact, job model.Job) (*model.Record, error) {
	now := time.Now().UTC().Truncate(time.Second)
	rec := &model.Record{
		ID:        model.NewID(kind, now),
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    model.StatusNew,
		Contact:   contact,
		Job:       job,
		History:   []model.HistoryEntry{},
	}

	cvKey, err := CVKey(rec.ID)
	if err != nil {
		return nil, err
	}
	rec.CVKey = cvKey

	if err := s.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get reads and deserializes one record. A missing record is ErrNotFound,
// never conflated with I/O failure.
func (s *RecordStore) Get(ctx context.Context, id string) (*model.Record, error) {
	key, err := MetaKey(id)
	if err != nil {
		return nil, err
	}
	data, err := s.Objects.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return &rec, nil
}

// JobPatch carries the patchable job fields; nil means "leave unchanged".
type JobPatch struct {
	Title        *string   `json:"title"`
	Company      *string   `json:"company"`
	SalaryMin    *int      `json:"salary_min"`
	SalaryMax    *int      `json:"salary_max"`
	Currency     *string   `json:"currency"`
	Requirements *string   `json:"requirements"`
	Description  *string   `json:"description"`
	Skills       *[]string `json:"skills"`
	Tags         *[]string `json:"tags"`
}

// Patch is the whitelisted update shape. Identity fields, status, notes and
// history are not part of it; callers decode the request body with unknown
// fields disallowed so their presence is rejected, not ignored.
type Patch struct {
	Job *JobPatch `json:"job"`
}

// Update applies a whitelisted patch via read-modify-write and bumps
// updated_at. Not transactional against concurrent writers.
func (s *RecordStore) Update(ctx context.Context, id string, patch Patch) (*model.Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p := patch.Job; p != nil {
		if p.Title != nil {
			rec.Job.Title = *p.Title
		}
		if p.Company != nil {
			rec.Job.Company = *p.Company
		}
		if p.SalaryMin != nil {
			rec.Job.SalaryMin = p.SalaryMin
		}
		if p.SalaryMax != nil {
			rec.Job.SalaryMax = p.SalaryMax
		}
		if p.Currency != nil {
			rec.Job.Currency = *p.Currency
		}
		if p.Requirements != nil {
			rec.Job.Requirements = *p.Requirements
		}
		if p.Description != nil {
			rec.Job.Description = *p.Description
		}
		if p.Skills != nil {
			rec.Job.Skills = *p.Skills
		}
		if p.Tags != nil {
			rec.Job.Tags = *p.Tags
		}
	}

	rec.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	if err := s.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Save writes back a record mutated elsewhere (the status workflow) and is
// subject to the same last-writer-wins caveat as Update.
func (s *RecordStore) Save(ctx context.Context, rec *model.Record) error {
	return s.put(ctx, rec)
}

// Delete removes the record object and every attachment under its prefix,
// reporting how many objects were removed so callers can detect partial
// deletion.
func (s *RecordStore) Delete(ctx context.Context, id string) (int, error) {
	prefix, err := PrefixFor(id)
	if err != nil {
		return 0, err
	}
	keys, err := s.Objects.ListKeys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}

	deleted := 0
	for _, key := range keys {
		if err := s.Objects.Delete(ctx, key); err != nil {
			return deleted, fmt.Errorf("partial delete of %s (%d of %d objects removed): %w", id, deleted, len(keys), err)
		}
		deleted++
	}
	return deleted, nil
}

// ListFilter narrows a listing.
type ListFilter struct {
	Status model.Status
	Limit  int
}

// List scans the kind's namespace and returns record summaries, newest
// first. Storage iteration order is not chronological, so the sort happens
// here before responding.
func (s *RecordStore) List(ctx context.Context, kind model.Kind, filter ListFilter) ([]model.Summary, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	keys, err := s.Objects.ListKeys(ctx, kind.Namespace()+"/")
	if err != nil {
		return nil, err
	}

	summaries := []model.Summary{}
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+metaObjectName) {
			continue
		}
		data, err := s.Objects.Get(ctx, key)
		if err != nil {
			log.Printf("skipping unreadable record object %s: %v", key, err)
			continue
		}
		var rec model.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Printf("skipping undecodable record object %s: %v", key, err)
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		summaries = append(summaries, rec.Summarize())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *RecordStore) put(ctx context.Context, rec *model.Record) error {
	key, err := MetaKey(rec.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}
	return s.Objects.Put(ctx, key, data, "application/json")
}
