// Package workflow owns every status mutation of a record.
//
// The lifecycle is new -> contacted -> cv_sent/interview -> closed. Every
// transition appends exactly one history entry; history is never edited or
// truncated. Whether backward moves are allowed is an explicit policy, not
// a guess.
package workflow

import (
	"fmt"
	"time"

	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/model"
)

// ErrUnknownStatus reports a status outside the lifecycle enum.
type ErrUnknownStatus struct {
	Status model.Status
}

func (e ErrUnknownStatus) Error() string {
	return fmt.Sprintf("unknown status %q", e.Status)
}

// ErrBackwardTransition reports a move to a lower-ranked status while the
// policy forbids it.
type ErrBackwardTransition struct {
	From, To model.Status
}

func (e ErrBackwardTransition) Error() string {
	return fmt.Sprintf("backward transition %s -> %s is not allowed", e.From, e.To)
}

// Workflow applies status transitions and notes edits to records.
type Workflow struct {
	// AllowBackward permits transitions to a lower-ranked status (the
	// observed behavior of the original system). When false such moves
	// are rejected.
	AllowBackward bool
}

// New creates a workflow with the given backward-transition policy.
func New(allowBackward bool) *Workflow {
	return &Workflow{AllowBackward: allowBackward}
}

// Transition moves rec to newStatus, appending one history entry and
// bumping updated_at. The record is mutated in place; persisting it is the
// caller's concern.
func (w *Workflow) Transition(rec *model.Record, newStatus model.Status, note string) error {
	if !newStatus.Valid() {
		return ErrUnknownStatus{Status: newStatus}
	}
	if !w.AllowBackward && newStatus.Rank() < rec.Status.Rank() {
		return ErrBackwardTransition{From: rec.Status, To: newStatus}
	}

	now := time.Now().UTC().Truncate(time.Second)
	rec.History = append(rec.History, model.HistoryEntry{
		Timestamp: now,
		OldStatus: rec.Status,
		NewStatus: newStatus,
		Note:      note,
	})
	rec.Status = newStatus
	rec.UpdatedAt = now
	return nil
}

// SetNotes overwrites the record's notes verbatim and bumps updated_at.
// Unlike a status change this leaves no history entry.
func (w *Workflow) SetNotes(rec *model.Record, text string) {
	rec.Notes = text
	rec.UpdatedAt = time.Now().UTC().Truncate(time.Second)
}
