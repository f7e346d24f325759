package domain

import (
	"fmt"
	"math"
	"time"
)

// MetadataEntryDTO is the serializable form of a metadata entry.
type MetadataEntryDTO struct {
	Key            string `json:"key"`
	Value          string `json:"value"`
	Classification string `json:"classification"`
}

// LogEntryDTO is the serializable projection of a LogEntry used for
// storage and transport. The timestamp is carried as seconds since the
// Unix epoch; the conversion is lossless apart from sub-microsecond
// timestamp precision.
type LogEntryDTO struct {
	EntryID   string             `json:"entry_id"`
	Timestamp float64            `json:"timestamp"`
	Level     string             `json:"level"`
	Message   string             `json:"message"`
	Source    string             `json:"source,omitempty"`
	Category  string             `json:"category,omitempty"`
	Metadata  []MetadataEntryDTO `json:"metadata,omitempty"`
}

// ToDTO converts the entry to its serializable projection.
func (e LogEntry) ToDTO() LogEntryDTO {
	dto := LogEntryDTO{
		EntryID:   e.EntryID,
		Timestamp: float64(e.Timestamp.UnixNano()) / float64(time.Second),
		Level:     e.Level.String(),
		Message:   e.Message,
		Source:    e.Source,
		Category:  e.Category,
	}
	for _, entry := range e.Metadata.Entries() {
		dto.Metadata = append(dto.Metadata, MetadataEntryDTO{
			Key:            entry.Key,
			Value:          entry.Value,
			Classification: string(entry.Classification),
		})
	}
	return dto
}

// ToEntry converts a DTO back into a LogEntry. Level, message, source,
// category, entry id and metadata entries round-trip exactly.
func (d LogEntryDTO) ToEntry() (LogEntry, error) {
	level, err := ParseLevel(d.Level)
	if err != nil {
		return LogEntry{}, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	entry := LogEntry{
		Timestamp: time.Unix(0, int64(math.Round(d.Timestamp*float64(time.Second)))).UTC(),
		Level:     level,
		Message:   d.Message,
		Source:    d.Source,
		Category:  d.Category,
		EntryID:   d.EntryID,
	}
	if len(d.Metadata) > 0 {
		entries := make([]MetadataEntry, 0, len(d.Metadata))
		for _, m := range d.Metadata {
			entries = append(entries, MetadataEntry{
				Key:            m.Key,
				Value:          m.Value,
				Classification: Classification(m.Classification),
			})
		}
		entry.Metadata = MetadataCollectionOf(entries...)
	}
	return entry, nil
}
