package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// RotationStrategy names the condition a destination rotates on.
type RotationStrategy string

const (
	RotationTime  RotationStrategy = "time"
	RotationSize  RotationStrategy = "size"
	RotationCount RotationStrategy = "count"
	RotationNone  RotationStrategy = "none"
)

// Duration wraps time.Duration so retention intervals serialize as
// human-readable strings ("15m", "24h") in YAML and JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	*d = Duration(parsed)
	return nil
}

// RetentionPolicy bounds a destination's storage growth. It is pure
// configuration: enforcement belongs to the destination, which consults
// ShouldRotate before accepting a write. A zero bound means unlimited.
// All set bounds act as independent ceilings; the first one crossed
// triggers rotation — unless the strategy is RotationNone, which disables
// automatic rotation entirely.
type RetentionPolicy struct {
	MaxEntries          int              `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	MaxSizeBytes        int64            `json:"max_size_bytes,omitempty" yaml:"max_size_bytes,omitempty"`
	MaxAgeDays          int              `json:"max_age_days,omitempty" yaml:"max_age_days,omitempty"`
	ArchiveBeforeDelete bool             `json:"archive_before_delete,omitempty" yaml:"archive_before_delete,omitempty"`
	RotationStrategy    RotationStrategy `json:"rotation_strategy" yaml:"rotation_strategy"`
	RotationInterval    Duration         `json:"rotation_interval,omitempty" yaml:"rotation_interval,omitempty"`
	BackupCount         int              `json:"backup_count,omitempty" yaml:"backup_count,omitempty"`
}

// Validate rejects incoherent policies at load time.
func (p RetentionPolicy) Validate() error {
	var err error
	switch p.RotationStrategy {
	case RotationTime, RotationSize, RotationCount, RotationNone:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: unknown rotation strategy %q", ErrInvalidConfiguration, p.RotationStrategy))
	}
	if p.MaxEntries < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: max_entries is negative", ErrInvalidConfiguration))
	}
	if p.MaxSizeBytes < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: max_size_bytes is negative", ErrInvalidConfiguration))
	}
	if p.MaxAgeDays < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: max_age_days is negative", ErrInvalidConfiguration))
	}
	if p.BackupCount < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: backup_count is negative", ErrInvalidConfiguration))
	}
	if p.RotationStrategy == RotationTime && p.RotationInterval <= 0 && p.MaxAgeDays == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: time rotation requires rotation_interval or max_age_days", ErrInvalidConfiguration))
	}
	if p.RotationStrategy == RotationCount && p.MaxEntries == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: count rotation requires max_entries", ErrInvalidConfiguration))
	}
	if p.RotationStrategy == RotationSize && p.MaxSizeBytes == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: size rotation requires max_size_bytes", ErrInvalidConfiguration))
	}
	return err
}

// ShouldRotate reports whether a destination holding entryCount entries
// occupying sizeBytes, whose current store was opened at openedAt, must
// rotate before accepting its next entry. RotationNone always wins.
func (p RetentionPolicy) ShouldRotate(entryCount int, sizeBytes int64, openedAt, now time.Time) bool {
	if p.RotationStrategy == RotationNone || p.RotationStrategy == "" {
		return false
	}
	if p.MaxEntries > 0 && entryCount > p.MaxEntries {
		return true
	}
	if p.MaxSizeBytes > 0 && sizeBytes >= p.MaxSizeBytes {
		return true
	}
	if p.MaxAgeDays > 0 && !openedAt.IsZero() && now.Sub(openedAt) >= time.Duration(p.MaxAgeDays)*24*time.Hour {
		return true
	}
	if p.RotationStrategy == RotationTime && p.RotationInterval > 0 && !openedAt.IsZero() && now.Sub(openedAt) >= p.RotationInterval.Std() {
		return true
	}
	return false
}
