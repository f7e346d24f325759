package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// RenderMode selects how classified values are rendered when projected out
// of the process.
type RenderMode int8

const (
	// RenderDebug exposes private values for local debugging.
	RenderDebug RenderMode = iota
	// RenderRelease redacts everything that is not public.
	RenderRelease
)

// RedactedPlaceholder replaces values that must not leave the process.
const RedactedPlaceholder = "<redacted>"

// AutoClassifier resolves an auto-classified value to a concrete
// classification at render time. Implementations inspect the key and value
// content; returning ClassificationAuto is treated as private.
type AutoClassifier func(key, value string) Classification

// MetadataEntry is a single (key, value, classification) triple. It is an
// immutable value type.
type MetadataEntry struct {
	Key            string         `json:"key" yaml:"key"`
	Value          string         `json:"value" yaml:"value"`
	Classification Classification `json:"classification" yaml:"classification"`
}

// MetadataCollection is an ordered, append-only sequence of metadata
// entries. Duplicate keys are permitted and order is preserved. Every
// mutator returns a new collection; the receiver is never modified, so
// collections are freely shareable across goroutines.
type MetadataCollection struct {
	entries []MetadataEntry
}

// NewMetadataCollection returns an empty collection. The zero value is
// also usable.
func NewMetadataCollection() MetadataCollection {
	return MetadataCollection{}
}

// MetadataCollectionOf builds a collection from a fixed set of entries.
func MetadataCollectionOf(entries ...MetadataEntry) MetadataCollection {
	copied := make([]MetadataEntry, len(entries))
	copy(copied, entries)
	return MetadataCollection{entries: copied}
}

// With appends one entry with an explicit classification.
func (m MetadataCollection) With(key, value string, c Classification) MetadataCollection {
	entries := make([]MetadataEntry, len(m.entries), len(m.entries)+1)
	copy(entries, m.entries)
	entries = append(entries, MetadataEntry{Key: key, Value: value, Classification: c})
	return MetadataCollection{entries: entries}
}

// WithPublic appends a public entry.
func (m MetadataCollection) WithPublic(key, value string) MetadataCollection {
	return m.With(key, value, ClassificationPublic)
}

// WithPrivate appends a private entry.
func (m MetadataCollection) WithPrivate(key, value string) MetadataCollection {
	return m.With(key, value, ClassificationPrivate)
}

// WithSensitive appends a sensitive entry.
func (m MetadataCollection) WithSensitive(key, value string) MetadataCollection {
	return m.With(key, value, ClassificationSensitive)
}

// WithHashed appends an entry whose value renders as a one-way digest.
func (m MetadataCollection) WithHashed(key, value string) MetadataCollection {
	return m.With(key, value, ClassificationHash)
}

// WithAuto appends an entry classified by content heuristics at render
// time.
func (m MetadataCollection) WithAuto(key, value string) MetadataCollection {
	return m.With(key, value, ClassificationAuto)
}

// Merging concatenates two collections: the entries of m followed by the
// entries of other. No deduplication occurs.
func (m MetadataCollection) Merging(other MetadataCollection) MetadataCollection {
	if len(other.entries) == 0 {
		return m
	}
	entries := make([]MetadataEntry, 0, len(m.entries)+len(other.entries))
	entries = append(entries, m.entries...)
	entries = append(entries, other.entries...)
	return MetadataCollection{entries: entries}
}

// GetString returns the value of the first entry with the given key.
// Lookups scan from the front: when a key repeats, the earliest entry
// wins.
func (m MetadataCollection) GetString(key string) (string, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Contains reports whether any entry has the given key.
func (m MetadataCollection) Contains(key string) bool {
	_, ok := m.GetString(key)
	return ok
}

// ContainsValue reports whether any entry has exactly the given key and
// value.
func (m MetadataCollection) ContainsValue(key, value string) bool {
	for _, e := range m.entries {
		if e.Key == key && e.Value == value {
			return true
		}
	}
	return false
}

// Entries returns a copy of the underlying sequence.
func (m MetadataCollection) Entries() []MetadataEntry {
	if len(m.entries) == 0 {
		return nil
	}
	copied := make([]MetadataEntry, len(m.entries))
	copy(copied, m.entries)
	return copied
}

// Len returns the number of entries.
func (m MetadataCollection) Len() int {
	return len(m.entries)
}

// ToDictionary flattens the collection into a map. The last entry for a
// duplicate key wins. The conversion drops classifications and duplicate
// history and is therefore lossy.
func (m MetadataCollection) ToDictionary() map[string]string {
	dict := make(map[string]string, len(m.entries))
	for _, e := range m.entries {
		dict[e.Key] = e.Value
	}
	return dict
}

// Rendered returns a collection in which every value has been rendered
// according to its classification and the given mode, preserving entry
// order and duplicates. The resulting entries are public: rendering has
// already made them safe to leave the process.
func (m MetadataCollection) Rendered(mode RenderMode, classify AutoClassifier) MetadataCollection {
	if len(m.entries) == 0 {
		return m
	}
	rendered := make([]MetadataEntry, 0, len(m.entries))
	for _, e := range m.entries {
		rendered = append(rendered, MetadataEntry{
			Key:            e.Key,
			Value:          renderValue(e.Key, e.Value, e.Classification, mode, classify),
			Classification: ClassificationPublic,
		})
	}
	return MetadataCollection{entries: rendered}
}

// ToPrivacyProjection renders each entry according to its classification
// and the given mode. Unknown classifications render as private. A nil
// classifier resolves auto entries to private. Last entry for a duplicate
// key wins, as in ToDictionary.
func (m MetadataCollection) ToPrivacyProjection(mode RenderMode, classify AutoClassifier) map[string]string {
	projected := make(map[string]string, len(m.entries))
	for _, e := range m.entries {
		projected[e.Key] = renderValue(e.Key, e.Value, e.Classification, mode, classify)
	}
	return projected
}

func renderValue(key, value string, c Classification, mode RenderMode, classify AutoClassifier) string {
	switch c.Normalized() {
	case ClassificationPublic:
		return value
	case ClassificationPrivate:
		if mode == RenderDebug {
			return value
		}
		return RedactedPlaceholder
	case ClassificationSensitive:
		return RedactedPlaceholder
	case ClassificationHash:
		return Digest(value)
	case ClassificationAuto:
		resolved := ClassificationPrivate
		if classify != nil {
			resolved = classify(key, value).Normalized()
			if resolved == ClassificationAuto {
				resolved = ClassificationPrivate
			}
		}
		return renderValue(key, value, resolved, mode, nil)
	}
	return RedactedPlaceholder
}

// Digest returns a short, stable one-way digest of a value, used for
// hash-classified metadata and hash redaction strategies.
func Digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:16]
}
