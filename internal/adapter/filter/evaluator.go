// Package filter decides whether a log entry reaches a destination.
package filter

import (
	"sort"

	"github.com/quillsec/privlog/internal/domain"
)

// Decision is the outcome of evaluating a rule set against one entry.
type Decision struct {
	Admitted bool
	// MatchedRuleID is empty when no rule matched and the default policy
	// applied.
	MatchedRuleID string
}

// Evaluator holds a rule set pre-sorted into evaluation order. Rules are
// immutable after a destination registers, so the sort happens once here
// instead of on every entry.
type Evaluator struct {
	rules []domain.FilterRule
}

func New(rules []domain.FilterRule) *Evaluator {
	return &Evaluator{rules: ordered(rules)}
}

// Evaluate runs the enabled rules in deterministic order, priority
// descending with ties broken by id ascending, and returns the decision of
// the first rule whose criteria match. When no rule matches the entry is
// admitted (fail-open): a destination with zero rules logs everything at
// or above its level floor. Evaluation is a pure function of its inputs.
func (e *Evaluator) Evaluate(entry domain.LogEntry) Decision {
	for _, rule := range e.rules {
		if rule.Criteria.Matches(entry) {
			return Decision{
				Admitted:      rule.Action == domain.FilterActionInclude,
				MatchedRuleID: rule.ID,
			}
		}
	}
	return Decision{Admitted: true}
}

// Evaluate is a one-shot convenience over New for callers that do not keep
// the rule set around.
func Evaluate(rules []domain.FilterRule, entry domain.LogEntry) Decision {
	return New(rules).Evaluate(entry)
}

func ordered(rules []domain.FilterRule) []domain.FilterRule {
	enabled := make([]domain.FilterRule, 0, len(rules))
	for _, rule := range rules {
		if rule.IsEnabled {
			enabled = append(enabled, rule)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		if enabled[i].Priority != enabled[j].Priority {
			return enabled[i].Priority > enabled[j].Priority
		}
		return enabled[i].ID < enabled[j].ID
	})
	return enabled
}
