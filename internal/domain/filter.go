package domain

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// FilterAction decides what a matching rule does with an entry.
type FilterAction string

const (
	FilterActionInclude FilterAction = "include"
	FilterActionExclude FilterAction = "exclude"
)

// FilterCriteria is a conjunction of optional predicates over an entry.
// Every predicate that is present must match; a zero criteria matches
// everything.
type FilterCriteria struct {
	// Level matches entries at or above the given level.
	Level *Level `json:"level,omitempty" yaml:"level,omitempty"`
	// Source matches the entry source exactly.
	Source *string `json:"source,omitempty" yaml:"source,omitempty"`
	// MessageContains is a case-sensitive substring match on the message.
	MessageContains *string `json:"message_contains,omitempty" yaml:"message_contains,omitempty"`
	// HasMetadataKey requires any entry with the given key.
	HasMetadataKey *string `json:"has_metadata_key,omitempty" yaml:"has_metadata_key,omitempty"`
	// MetadataKey together with MetadataValue requires an entry with that
	// exact key and value. MetadataKey alone checks key presence.
	MetadataKey   *string `json:"metadata_key,omitempty" yaml:"metadata_key,omitempty"`
	MetadataValue *string `json:"metadata_value,omitempty" yaml:"metadata_value,omitempty"`
	// TimeRangeStart/TimeRangeEnd bound the entry timestamp (inclusive).
	TimeRangeStart *time.Time `json:"time_range_start,omitempty" yaml:"time_range_start,omitempty"`
	TimeRangeEnd   *time.Time `json:"time_range_end,omitempty" yaml:"time_range_end,omitempty"`
}

// Matches reports whether the entry satisfies every present predicate.
func (c FilterCriteria) Matches(entry LogEntry) bool {
	if c.Level != nil && entry.Level < *c.Level {
		return false
	}
	if c.Source != nil && entry.Source != *c.Source {
		return false
	}
	if c.MessageContains != nil && !strings.Contains(entry.Message, *c.MessageContains) {
		return false
	}
	if c.HasMetadataKey != nil && !entry.Metadata.Contains(*c.HasMetadataKey) {
		return false
	}
	if c.MetadataKey != nil {
		if c.MetadataValue != nil {
			if !entry.Metadata.ContainsValue(*c.MetadataKey, *c.MetadataValue) {
				return false
			}
		} else if !entry.Metadata.Contains(*c.MetadataKey) {
			return false
		}
	}
	if c.TimeRangeStart != nil && entry.Timestamp.Before(*c.TimeRangeStart) {
		return false
	}
	if c.TimeRangeEnd != nil && entry.Timestamp.After(*c.TimeRangeEnd) {
		return false
	}
	return true
}

func (c FilterCriteria) validate() error {
	var err error
	if c.TimeRangeStart != nil && c.TimeRangeEnd != nil && c.TimeRangeEnd.Before(*c.TimeRangeStart) {
		err = multierr.Append(err, fmt.Errorf("%w: time range end precedes start", ErrInvalidConfiguration))
	}
	if c.MetadataValue != nil && c.MetadataKey == nil {
		err = multierr.Append(err, fmt.Errorf("%w: metadata_value requires metadata_key", ErrInvalidConfiguration))
	}
	return err
}

// FilterRule pairs criteria with an include/exclude action. Rules are
// created by configuration, evaluated per entry and never mutated.
type FilterRule struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Action    FilterAction   `json:"action" yaml:"action"`
	Criteria  FilterCriteria `json:"criteria" yaml:"criteria"`
	Priority  int            `json:"priority" yaml:"priority"`
	IsEnabled bool           `json:"is_enabled" yaml:"is_enabled"`
}

// Validate rejects malformed rules synchronously at registration time so a
// bad rule cannot silently no-op.
func (r FilterRule) Validate() error {
	var err error
	if r.ID == "" {
		err = multierr.Append(err, fmt.Errorf("%w: filter rule id is empty", ErrInvalidConfiguration))
	}
	if r.Action != FilterActionInclude && r.Action != FilterActionExclude {
		err = multierr.Append(err, fmt.Errorf("%w: filter rule %s: unknown action %q", ErrInvalidConfiguration, r.ID, r.Action))
	}
	return multierr.Append(err, r.Criteria.validate())
}
