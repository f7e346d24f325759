// Package memory provides an in-process destination, used as a test sink
// and as a bounded ring of recent entries for diagnostics.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/quillsec/privlog/internal/domain"
)

// Destination stores entries in memory, enforcing its retention policy by
// rotating the current store before a write that would cross a ceiling.
// All state is guarded by a mutex; the pipeline makes no exclusion
// guarantees on behalf of destinations.
type Destination struct {
	id       string
	minLevel domain.Level
	policy   domain.RetentionPolicy

	mu        sync.Mutex
	entries   []domain.LogEntry
	sizeBytes int64
	openedAt  time.Time
	archived  []domain.LogEntry
	rotations int
}

func New(id string, minLevel domain.Level, policy domain.RetentionPolicy) *Destination {
	return &Destination{
		id:       id,
		minLevel: minLevel,
		policy:   policy,
		openedAt: time.Now().UTC(),
	}
}

func (d *Destination) Identifier() string {
	return d.id
}

func (d *Destination) MinimumLevel() domain.Level {
	return d.minLevel
}

func (d *Destination) Write(ctx context.Context, entry domain.LogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.policy.ShouldRotate(len(d.entries), d.sizeBytes, d.openedAt, time.Now().UTC()) {
		d.rotateLocked()
	}

	d.entries = append(d.entries, entry)
	d.sizeBytes += approximateSize(entry)
	return nil
}

func (d *Destination) Flush(ctx context.Context) error {
	return nil
}

func (d *Destination) rotateLocked() {
	if d.policy.ArchiveBeforeDelete {
		d.archived = append(d.archived, d.entries...)
		if d.policy.BackupCount > 0 && d.policy.MaxEntries > 0 {
			if max := d.policy.BackupCount * d.policy.MaxEntries; len(d.archived) > max {
				d.archived = d.archived[len(d.archived)-max:]
			}
		}
	}
	d.entries = nil
	d.sizeBytes = 0
	d.openedAt = time.Now().UTC()
	d.rotations++
}

// Entries returns a snapshot of the current (post-rotation) store.
func (d *Destination) Entries() []domain.LogEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := make([]domain.LogEntry, len(d.entries))
	copy(copied, d.entries)
	return copied
}

// Archived returns a snapshot of entries preserved across rotations.
func (d *Destination) Archived() []domain.LogEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := make([]domain.LogEntry, len(d.archived))
	copy(copied, d.archived)
	return copied
}

// Rotations returns how many times the store rotated.
func (d *Destination) Rotations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rotations
}

func approximateSize(entry domain.LogEntry) int64 {
	size := int64(len(entry.Message) + len(entry.Source) + len(entry.Category) + len(entry.EntryID))
	for _, e := range entry.Metadata.Entries() {
		size += int64(len(e.Key) + len(e.Value))
	}
	return size
}
