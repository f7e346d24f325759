package domain

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
)

// Destination is a sink that accepts entries which already survived
// filtering and redaction. Implementations are responsible for their own
// internal exclusion: the pipeline may call Write concurrently across
// destinations, but writes for one destination arrive in order.
//
// Write may block on I/O; the pipeline applies its own deadline and drops
// the entry for this destination when it is exceeded.
type Destination interface {
	Identifier() string
	// MinimumLevel is a hard floor evaluated before any filter rule.
	MinimumLevel() Level
	Write(ctx context.Context, entry LogEntry) error
	Flush(ctx context.Context) error
}

// DestinationConfig is the serializable configuration for one destination:
// free-form driver parameters plus the policy objects the pipeline and the
// destination enforce.
type DestinationConfig struct {
	Identifier      string            `json:"identifier" yaml:"identifier"`
	MinimumLevel    Level             `json:"minimum_level" yaml:"minimum_level"`
	Parameters      map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RetentionPolicy *RetentionPolicy  `json:"retention_policy,omitempty" yaml:"retention_policy,omitempty"`
	FilterRules     []FilterRule      `json:"filter_rules,omitempty" yaml:"filter_rules,omitempty"`
	RedactionRules  []RedactionRule   `json:"redaction_rules,omitempty" yaml:"redaction_rules,omitempty"`
	// WriteTimeout overrides the pipeline-wide per-write deadline.
	WriteTimeout Duration `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
	// RateLimit caps entries per second delivered to this destination;
	// zero means unlimited.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// Validate checks the whole configuration and aggregates every problem so
// a bad config is rejected before it can silently no-op.
func (c DestinationConfig) Validate() error {
	var err error
	if c.Identifier == "" {
		err = multierr.Append(err, fmt.Errorf("%w: destination identifier is empty", ErrInvalidConfiguration))
	}
	if c.RetentionPolicy != nil {
		err = multierr.Append(err, c.RetentionPolicy.Validate())
	}
	for _, rule := range c.FilterRules {
		err = multierr.Append(err, rule.Validate())
	}
	for _, rule := range c.RedactionRules {
		err = multierr.Append(err, rule.Validate())
	}
	if c.RateLimit < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: rate_limit is negative", ErrInvalidConfiguration))
	}
	if c.WriteTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: write_timeout is negative", ErrInvalidConfiguration))
	}
	return err
}
