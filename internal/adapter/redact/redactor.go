// Package redact transforms classified values before an entry leaves the
// process boundary.
package redact

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/quillsec/privlog/internal/domain"
)

// Named recognizers available to dataType rules. The set is fixed per
// process; an unknown name disables the rule at construction time.
var recognizers = map[string]*regexp.Regexp{
	"email":      regexp.MustCompile(`[^@\s]+@[^@\s]+\.[^@\s]+`),
	"creditCard": regexp.MustCompile(`\b\d{13,16}\b`),
	"ssn":        regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	"phone":      regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`),
	"ipAddress":  regexp.MustCompile(`\b\d{1,3}(\.\d{1,3}){3}\b`),
}

type compiledRule struct {
	rule    domain.RedactionRule
	matcher *regexp.Regexp // nil for exact matches
}

// Redactor applies a fixed set of redaction rules to log entries. Rules
// whose pattern cannot be compiled, or whose recognizer name is unknown,
// are disabled for the remainder of the process and reported exactly once
// through the report callback. Redaction itself never fails: Apply always
// returns a usable entry.
type Redactor struct {
	rules  []compiledRule
	logger *slog.Logger
}

// NewRedactor compiles the enabled rules, ordered by priority descending
// with ties broken by id ascending. report may be nil; it typically feeds
// the pipeline's error channel.
func NewRedactor(rules []domain.RedactionRule, logger *slog.Logger, report func(error)) *Redactor {
	r := &Redactor{logger: logger.With("component", "redactor")}

	ordered := make([]domain.RedactionRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsEnabled {
			ordered = append(ordered, rule)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	for _, rule := range ordered {
		compiled, err := compile(rule)
		if err != nil {
			r.logger.Warn("disabling redaction rule", "rule_id", rule.ID, "error", err)
			if report != nil {
				report(&domain.RedactionError{RuleID: rule.ID, Err: err})
			}
			continue
		}
		r.rules = append(r.rules, compiled)
	}
	return r
}

func compile(rule domain.RedactionRule) (compiledRule, error) {
	switch rule.MatchType {
	case domain.MatchExact:
		return compiledRule{rule: rule}, nil
	case domain.MatchRegex:
		matcher, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return compiledRule{}, fmt.Errorf("malformed pattern: %w", err)
		}
		return compiledRule{rule: rule, matcher: matcher}, nil
	case domain.MatchDataType:
		matcher, ok := recognizers[rule.Pattern]
		if !ok {
			return compiledRule{}, fmt.Errorf("unknown recognizer %q", rule.Pattern)
		}
		return compiledRule{rule: rule, matcher: matcher}, nil
	}
	return compiledRule{}, fmt.Errorf("unknown match type %q", rule.MatchType)
}

// RuleCount returns the number of active rules.
func (r *Redactor) RuleCount() int {
	return len(r.rules)
}

// Apply returns a copy of the entry with every rule applied in priority
// order, each rule acting on the already-transformed output of the
// previous one. Metadata entries matched by a remove rule are dropped;
// the message body cannot be dropped, so remove falls back to the fixed
// sentinel there.
func (r *Redactor) Apply(entry domain.LogEntry) domain.LogEntry {
	if len(r.rules) == 0 {
		return entry
	}

	kept := make([]domain.MetadataEntry, 0, entry.Metadata.Len())
	for _, e := range entry.Metadata.Entries() {
		value, removed := r.applyAll(e.Value, true)
		if removed {
			continue
		}
		e.Value = value
		kept = append(kept, e)
	}

	message, _ := r.applyAll(entry.Message, false)
	entry.Message = message
	entry.Metadata = domain.MetadataCollectionOf(kept...)
	return entry
}

// applyAll runs every rule over one value. removable selects whether a
// remove rule drops the value (metadata) or masks it (message).
func (r *Redactor) applyAll(value string, removable bool) (string, bool) {
	for _, c := range r.rules {
		matched, transformed, remove := c.apply(value)
		if !matched {
			continue
		}
		if remove {
			if removable {
				return "", true
			}
			value = sentinel(c.rule)
			continue
		}
		value = transformed
	}
	return value, false
}

// apply matches the rule against the value and returns the transformed
// value, or remove=true when the whole entry should be dropped.
func (c compiledRule) apply(value string) (matched bool, transformed string, remove bool) {
	if c.matcher == nil {
		if value != c.rule.Pattern {
			return false, value, false
		}
		if c.rule.Strategy == domain.RedactRemove {
			return true, "", true
		}
		return true, transform(value, c.rule), false
	}

	if !c.matcher.MatchString(value) {
		return false, value, false
	}
	if c.rule.Strategy == domain.RedactRemove {
		return true, "", true
	}
	return true, c.matcher.ReplaceAllStringFunc(value, func(m string) string {
		return transform(m, c.rule)
	}), false
}

func transform(match string, rule domain.RedactionRule) string {
	switch rule.Strategy {
	case domain.RedactFixed:
		return sentinel(rule)
	case domain.RedactHash:
		return domain.Digest(match)
	case domain.RedactPartial:
		return partialMask(match)
	}
	return sentinel(rule)
}

func sentinel(rule domain.RedactionRule) string {
	if rule.Replacement != "" {
		return rule.Replacement
	}
	return domain.RedactedPlaceholder
}

// partialMask keeps the first and last four runes and masks the middle.
// Values too short to keep anything are masked entirely.
func partialMask(value string) string {
	const keep = 4
	runes := []rune(value)
	if len(runes) <= 2*keep {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:keep]) + strings.Repeat("*", len(runes)-2*keep) + string(runes[len(runes)-keep:])
}
