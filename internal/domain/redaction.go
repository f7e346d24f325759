package domain

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"
)

// MatchType selects how a redaction rule's pattern is matched against a
// value.
type MatchType string

const (
	// MatchRegex searches the value for the pattern.
	MatchRegex MatchType = "regex"
	// MatchExact requires full-string equality with the pattern.
	MatchExact MatchType = "exact"
	// MatchDataType uses a named recognizer ("email", "creditCard", ...)
	// instead of the pattern.
	MatchDataType MatchType = "dataType"
)

// RedactionStrategy selects how a matched value is transformed.
type RedactionStrategy string

const (
	// RedactFixed replaces the match with Replacement (or a sentinel).
	RedactFixed RedactionStrategy = "fixed"
	// RedactHash replaces the match with a one-way digest.
	RedactHash RedactionStrategy = "hash"
	// RedactPartial keeps a short prefix and suffix and masks the middle.
	RedactPartial RedactionStrategy = "partial"
	// RedactRemove drops the metadata entry entirely.
	RedactRemove RedactionStrategy = "remove"
)

// RedactionRule transforms classified values before an entry leaves the
// process boundary. Rules are applied in priority order, each acting on
// the already-transformed value of the previous rule.
type RedactionRule struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Pattern     string            `json:"pattern" yaml:"pattern"`
	MatchType   MatchType         `json:"match_type" yaml:"match_type"`
	Strategy    RedactionStrategy `json:"strategy" yaml:"strategy"`
	Replacement string            `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	Priority    int               `json:"priority" yaml:"priority"`
	IsEnabled   bool              `json:"is_enabled" yaml:"is_enabled"`
}

// Validate rejects malformed rules at load time. The redaction engine
// additionally guards against malformed patterns at runtime for rules
// constructed outside configuration.
func (r RedactionRule) Validate() error {
	var err error
	if r.ID == "" {
		err = multierr.Append(err, fmt.Errorf("%w: redaction rule id is empty", ErrInvalidConfiguration))
	}
	switch r.MatchType {
	case MatchRegex:
		if _, compileErr := regexp.Compile(r.Pattern); compileErr != nil {
			err = multierr.Append(err, fmt.Errorf("%w: redaction rule %s: %v", ErrInvalidConfiguration, r.ID, compileErr))
		}
	case MatchExact:
		if r.Pattern == "" {
			err = multierr.Append(err, fmt.Errorf("%w: redaction rule %s: exact match requires a pattern", ErrInvalidConfiguration, r.ID))
		}
	case MatchDataType:
		if r.Pattern == "" {
			err = multierr.Append(err, fmt.Errorf("%w: redaction rule %s: dataType match requires a recognizer name", ErrInvalidConfiguration, r.ID))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("%w: redaction rule %s: unknown match type %q", ErrInvalidConfiguration, r.ID, r.MatchType))
	}
	switch r.Strategy {
	case RedactFixed, RedactHash, RedactPartial, RedactRemove:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: redaction rule %s: unknown strategy %q", ErrInvalidConfiguration, r.ID, r.Strategy))
	}
	return err
}
