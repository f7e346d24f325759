package filter

import (
	"testing"

	"github.com/quillsec/privlog/internal/domain"
)

func lvlptr(l domain.Level) *domain.Level { return &l }
func strptr(s string) *string             { return &s }

func debugEntryFromAuth() domain.LogEntry {
	return domain.NewLogEntry(domain.LevelDebug, "token refresh").WithSource("Auth")
}

func TestEvaluate_FirstMatchWinsByPriority(t *testing.T) {
	rules := []domain.FilterRule{
		{
			ID: "include-auth", Action: domain.FilterActionInclude, Priority: 5, IsEnabled: true,
			Criteria: domain.FilterCriteria{Source: strptr("Auth")},
		},
		{
			ID: "exclude-debug", Action: domain.FilterActionExclude, Priority: 10, IsEnabled: true,
			Criteria: domain.FilterCriteria{Level: lvlptr(domain.LevelDebug)},
		},
	}

	decision := Evaluate(rules, debugEntryFromAuth())
	if decision.Admitted {
		t.Error("debug entry admitted; the higher-priority exclude should win")
	}
	if decision.MatchedRuleID != "exclude-debug" {
		t.Errorf("matched rule = %q, want %q", decision.MatchedRuleID, "exclude-debug")
	}
}

func TestEvaluate_TieBrokenByIDAscending(t *testing.T) {
	rules := []domain.FilterRule{
		{ID: "b-exclude", Action: domain.FilterActionExclude, Priority: 10, IsEnabled: true},
		{ID: "a-include", Action: domain.FilterActionInclude, Priority: 10, IsEnabled: true},
	}

	decision := Evaluate(rules, debugEntryFromAuth())
	if !decision.Admitted || decision.MatchedRuleID != "a-include" {
		t.Errorf("tie-break picked %q (admitted=%v), want a-include/true",
			decision.MatchedRuleID, decision.Admitted)
	}

	// Same priorities, reversed input order: the decision must not change.
	reversed := []domain.FilterRule{rules[1], rules[0]}
	again := Evaluate(reversed, debugEntryFromAuth())
	if again != decision {
		t.Errorf("decision depends on input order: %+v vs %+v", again, decision)
	}
}

func TestEvaluate_NoMatchFailsOpen(t *testing.T) {
	rules := []domain.FilterRule{
		{
			ID: "exclude-net", Action: domain.FilterActionExclude, Priority: 1, IsEnabled: true,
			Criteria: domain.FilterCriteria{Source: strptr("Network")},
		},
	}

	decision := Evaluate(rules, debugEntryFromAuth())
	if !decision.Admitted {
		t.Error("no matching rule should admit the entry")
	}
	if decision.MatchedRuleID != "" {
		t.Errorf("matched rule = %q, want empty", decision.MatchedRuleID)
	}

	if d := Evaluate(nil, debugEntryFromAuth()); !d.Admitted {
		t.Error("empty rule set should admit everything")
	}
}

func TestEvaluate_DisabledRulesAreSkipped(t *testing.T) {
	rules := []domain.FilterRule{
		{ID: "off", Action: domain.FilterActionExclude, Priority: 100, IsEnabled: false},
	}
	if d := Evaluate(rules, debugEntryFromAuth()); !d.Admitted {
		t.Error("disabled rule was evaluated")
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	rules := []domain.FilterRule{
		{ID: "r1", Action: domain.FilterActionExclude, Priority: 3, IsEnabled: true,
			Criteria: domain.FilterCriteria{MessageContains: strptr("token")}},
		{ID: "r2", Action: domain.FilterActionInclude, Priority: 7, IsEnabled: true,
			Criteria: domain.FilterCriteria{Source: strptr("Auth")}},
	}
	entry := debugEntryFromAuth()

	first := Evaluate(rules, entry)
	for i := 0; i < 50; i++ {
		if Evaluate(rules, entry) != first {
			t.Fatal("repeated evaluation changed the decision")
		}
	}
}

func TestEvaluator_SortsOnceAndLeavesInputAlone(t *testing.T) {
	rules := []domain.FilterRule{
		{ID: "low-include", Action: domain.FilterActionInclude, Priority: 1, IsEnabled: true,
			Criteria: domain.FilterCriteria{Source: strptr("Auth")}},
		{ID: "high-exclude", Action: domain.FilterActionExclude, Priority: 9, IsEnabled: true,
			Criteria: domain.FilterCriteria{Level: lvlptr(domain.LevelDebug)}},
	}
	e := New(rules)

	if rules[0].ID != "low-include" || rules[1].ID != "high-exclude" {
		t.Error("constructing an evaluator reordered the caller's slice")
	}

	decision := e.Evaluate(debugEntryFromAuth())
	if decision.Admitted || decision.MatchedRuleID != "high-exclude" {
		t.Errorf("decision = %+v, want high-exclude/false", decision)
	}

	// The evaluator holds its own copy: later mutation of the input slice
	// must not change decisions.
	rules[1].IsEnabled = false
	again := e.Evaluate(debugEntryFromAuth())
	if again != decision {
		t.Errorf("evaluator observed a post-construction mutation: %+v vs %+v", again, decision)
	}
}
