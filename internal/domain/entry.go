package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one immutable log record. It is created once at the call
// site, or materialized from a LogContext, and never mutated afterwards.
type LogEntry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Metadata  MetadataCollection
	Source    string
	Category  string
	EntryID   string
}

// NewLogEntry creates an entry stamped with the current time and a fresh
// unique id.
func NewLogEntry(level Level, message string) LogEntry {
	return LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
		EntryID:   uuid.NewString(),
	}
}

// NewLogEntryFromContext materializes an entry from a context: the
// context's metadata is attached and its source and category fields are
// used, falling back to the domain name where a context leaves them empty.
func NewLogEntryFromContext(level Level, message string, ctx LogContext) LogEntry {
	entry := NewLogEntry(level, message)
	entry.Metadata = ctx.Metadata()
	entry.Source = ctx.Source()
	if entry.Source == "" {
		entry.Source = ctx.DomainName()
	}
	entry.Category = ctx.Category()
	if entry.Category == "" {
		entry.Category = ctx.DomainName()
	}
	if id := ctx.CorrelationID(); id != "" {
		entry.Metadata = entry.Metadata.WithPublic("correlationID", id)
	}
	return entry
}

// WithMetadata returns a copy of the entry carrying the given metadata.
func (e LogEntry) WithMetadata(m MetadataCollection) LogEntry {
	e.Metadata = m
	return e
}

// WithSource returns a copy of the entry with the source replaced.
func (e LogEntry) WithSource(source string) LogEntry {
	e.Source = source
	return e
}

// WithCategory returns a copy of the entry with the category replaced.
func (e LogEntry) WithCategory(category string) LogEntry {
	e.Category = category
	return e
}
