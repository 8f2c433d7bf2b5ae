package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/model"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/storage"
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/testutil"
)

func newStore(t *testing.T) *storage.RecordStore {
	t.Helper()
	return storage.NewRecordStore(testutil.NewFakeObjectStore(t))
}

func sampleFields() (model.Contact, model.Job) {
	contact := model.Contact{
		Name:  "Jane Recruiter",
		Email: "jane@agency.example",
		Phone: "+60123456789",
	}
	job := model.Job{
		Title:    "Senior Go Engineer",
		Company:  "Acme Sdn Bhd",
		Currency: "MYR",
		Skills:   []string{"go", "gcp"},
	}
	return contact, job
}

func TestPrefixFor(t *testing.T) {
	prefix, err := storage.PrefixFor("app_2025-11-01_1f0c9a2b")
	require.NoError(t, err)
	assert.Equal(t, "applications/2025/app_2025-11-01_1f0c9a2b/", prefix)

	prefix, err = storage.PrefixFor("sub_2024-03-15_deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "submissions/2024/sub_2024-03-15_deadbeef/", prefix)

	bad := []string{
		"",
		"nope",
		"app_2025-11-01",
		"app_2025-11-01_aa_bb",
		"xyz_2025-11-01_1f0c9a2b",
		"app_20251101_1f0c9a2b",
		"app_2025-13-40_1f0c9a2b",
		"../../etc/passwd",
	}
	for _, id := range bad {
		_, err := storage.PrefixFor(id)
		assert.ErrorIs(t, err, storage.ErrInvalidID, "id %q", id)
	}
}

func TestRecordKeys(t *testing.T) {
	meta, err := storage.MetaKey("app_2025-11-01_1f0c9a2b")
	require.NoError(t, err)
	assert.Equal(t, "applications/2025/app_2025-11-01_1f0c9a2b/meta.json", meta)

	cv, err := storage.CVKey("app_2025-11-01_1f0c9a2b")
	require.NoError(t, err)
	assert.Equal(t, "applications/2025/app_2025-11-01_1f0c9a2b/cv.pdf", cv)

	jd, err := storage.JDKey("sub_2025-11-01_1f0c9a2b")
	require.NoError(t, err)
	assert.Equal(t, "submissions/2025/sub_2025-11-01_1f0c9a2b/jd.pdf", jd)
}

func TestCreateAndGet_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	contact, job := sampleFields()

	rec, err := store.Create(ctx, model.KindApplication, contact, job)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, rec.Status)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
	assert.NotEmpty(t, rec.CVKey)
	assert.NotNil(t, rec.History)
	assert.Empty(t, rec.History)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestGet_ReadsAreStable(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	contact, job := sampleFields()

	rec, err := store.Create(ctx, model.KindSubmission, contact, job)
	require.NoError(t, err)

	key, err := storage.MetaKey(rec.ID)
	require.NoError(t, err)
	first, err := store.Objects.Get(ctx, key)
	require.NoError(t, err)
	second, err := store.Objects.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, first, second, "reads without intervening writes must be byte-identical")
}

func TestGet_MissingRecordIsNotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.Get(context.Background(), "app_2025-11-01_00000000")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Get(context.Background(), "garbage")
	assert.ErrorIs(t, err, storage.ErrInvalidID)
}

func TestUpdate_PatchesWhitelistedFieldsOnly(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	contact, job := sampleFields()

	rec, err := store.Create(ctx, model.KindApplication, contact, job)
	require.NoError(t, err)

	title := "Staff Go Engineer"
	max := 15000
	updated, err := store.Update(ctx, rec.ID, storage.Patch{Job: &storage.JobPatch{
		Title:     &title,
		SalaryMax: &max,
	}})
	require.NoError(t, err)

	assert.Equal(t, "Staff Go Engineer", updated.Job.Title)
	assert.Equal(t, &max, updated.Job.SalaryMax)
	assert.Equal(t, "Acme Sdn Bhd", updated.Job.Company, "unpatched fields survive")
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.Equal(t, rec.Status, updated.Status)
	assert.Equal(t, rec.Contact, updated.Contact)
	assert.False(t, updated.UpdatedAt.Before(rec.UpdatedAt))

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdate_MissingRecord(t *testing.T) {
	store := newStore(t)

	title := "anything"
	_, err := store.Update(context.Background(), "app_2025-11-01_00000000", storage.Patch{Job: &storage.JobPatch{Title: &title}})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete_CascadesOverAttachments(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	contact, job := sampleFields()

	rec, err := store.Create(ctx, model.KindApplication, contact, job)
	require.NoError(t, err)

	// Simulate a completed CV upload next to the record object.
	cvKey, err := storage.CVKey(rec.ID)
	require.NoError(t, err)
	require.NoError(t, store.Objects.Put(ctx, cvKey, []byte("%PDF-1.7 fake"), "application/pdf"))

	deleted, err := store.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted, "record object plus attachment")

	_, err = store.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	exists, err := store.Objects.Exists(ctx, cvKey)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDelete_MissingRecordIsNotFound(t *testing.T) {
	store := newStore(t)

	deleted, err := store.Delete(context.Background(), "app_2025-11-01_00000000")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Zero(t, deleted)
}

func TestList_NewestFirstWithFilterAndLimit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	contact, job := sampleFields()

	base := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		rec, err := store.Create(ctx, model.KindApplication, contact, job)
		require.NoError(t, err)
		// Spread creation times so the ordering is deterministic.
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(ctx, rec))
		ids = append(ids, rec.ID)
	}

	// A submission must never leak into an application listing.
	_, err := store.Create(ctx, model.KindSubmission, contact, job)
	require.NoError(t, err)

	summaries, err := store.List(ctx, model.KindApplication, storage.ListFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, ids[2], summaries[0].ID)
	assert.Equal(t, ids[1], summaries[1].ID)
	assert.Equal(t, ids[0], summaries[2].ID)

	limited, err := store.List(ctx, model.KindApplication, storage.ListFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)

	// Flip one record's status and filter on it.
	rec, err := store.Get(ctx, ids[0])
	require.NoError(t, err)
	rec.Status = model.StatusContacted
	require.NoError(t, store.Save(ctx, rec))

	contacted, err := store.List(ctx, model.KindApplication, storage.ListFilter{Status: model.StatusContacted})
	require.NoError(t, err)
	require.Len(t, contacted, 1)
	assert.Equal(t, ids[0], contacted[0].ID)
}

func TestList_EmptyNamespace(t *testing.T) {
	store := newStore(t)

	summaries, err := store.List(context.Background(), model.KindSubmission, storage.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestList_SkipsUndecodableObjects(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	contact, job := sampleFields()

	rec, err := store.Create(ctx, model.KindApplication, contact, job)
	require.NoError(t, err)

	corrupt := "applications/2025/app_2025-01-01_badbadba/meta.json"
	require.NoError(t, store.Objects.Put(ctx, corrupt, []byte("{not json"), "application/json"))

	summaries, err := store.List(ctx, model.KindApplication, storage.ListFilter{})
	require.NoError(t, err, "one corrupt object must not fail the whole listing")
	require.Len(t, summaries, 1)
	assert.Equal(t, rec.ID, summaries[0].ID)
}

// Two stale read-modify-write cycles against the same record: the second
// write wins wholesale and silently discards the first writer's change.
func TestSave_LastWriterWins(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	contact, job := sampleFields()

	rec, err := store.Create(ctx, model.KindApplication, contact, job)
	require.NoError(t, err)

	readerA, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	readerB, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)

	readerA.Notes = "notes from writer A"
	require.NoError(t, store.Save(ctx, readerA))

	readerB.Job.Title = "title from writer B"
	require.NoError(t, store.Save(ctx, readerB))

	final, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "title from writer B", final.Job.Title)
	assert.Empty(t, final.Notes, "writer A's change is lost to the later full-record write")
}

func TestErrorSentinelsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(storage.ErrNotFound, storage.ErrInvalidID))
}
