package domain

import (
	"testing"
	"time"
)

func strptr(s string) *string    { return &s }
func lvlptr(l Level) *Level      { return &l }
func timeptr(t time.Time) *time.Time { return &t }

func TestFilterCriteria_Matches(t *testing.T) {
	base := NewLogEntry(LevelWarning, "connection refused by upstream").
		WithSource("Network").
		WithMetadata(NewMetadataCollection().
			WithPublic("operation", "dial").
			WithPrivate("host", "10.0.0.1"))

	tests := []struct {
		name     string
		criteria FilterCriteria
		want     bool
	}{
		{"empty criteria matches everything", FilterCriteria{}, true},
		{"level is a minimum, equal passes", FilterCriteria{Level: lvlptr(LevelWarning)}, true},
		{"level is a minimum, lower passes higher entries", FilterCriteria{Level: lvlptr(LevelDebug)}, true},
		{"level above entry fails", FilterCriteria{Level: lvlptr(LevelError)}, false},
		{"source exact match", FilterCriteria{Source: strptr("Network")}, true},
		{"source mismatch", FilterCriteria{Source: strptr("Auth")}, false},
		{"message substring", FilterCriteria{MessageContains: strptr("refused")}, true},
		{"message substring is case-sensitive", FilterCriteria{MessageContains: strptr("Refused")}, false},
		{"metadata key presence", FilterCriteria{HasMetadataKey: strptr("host")}, true},
		{"metadata key absence", FilterCriteria{HasMetadataKey: strptr("port")}, false},
		{"metadata key and value pair", FilterCriteria{MetadataKey: strptr("host"), MetadataValue: strptr("10.0.0.1")}, true},
		{"metadata pair with wrong value", FilterCriteria{MetadataKey: strptr("host"), MetadataValue: strptr("10.0.0.2")}, false},
		{"all predicates are ANDed", FilterCriteria{Source: strptr("Network"), MessageContains: strptr("nope")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.Matches(base); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterCriteria_TimeRange(t *testing.T) {
	entry := NewLogEntry(LevelInfo, "m")

	within := FilterCriteria{
		TimeRangeStart: timeptr(entry.Timestamp.Add(-time.Minute)),
		TimeRangeEnd:   timeptr(entry.Timestamp.Add(time.Minute)),
	}
	if !within.Matches(entry) {
		t.Error("entry inside the range did not match")
	}

	past := FilterCriteria{TimeRangeEnd: timeptr(entry.Timestamp.Add(-time.Minute))}
	if past.Matches(entry) {
		t.Error("entry after the range matched")
	}
}

func TestFilterRule_Validate(t *testing.T) {
	valid := FilterRule{ID: "r1", Name: "drop debug", Action: FilterActionExclude, IsEnabled: true}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid rule rejected: %v", err)
	}

	tests := []struct {
		name string
		rule FilterRule
	}{
		{"empty id", FilterRule{Action: FilterActionInclude}},
		{"unknown action", FilterRule{ID: "r2", Action: "drop"}},
		{"inverted time range", FilterRule{ID: "r3", Action: FilterActionInclude, Criteria: FilterCriteria{
			TimeRangeStart: timeptr(time.Unix(200, 0)),
			TimeRangeEnd:   timeptr(time.Unix(100, 0)),
		}}},
		{"value without key", FilterRule{ID: "r4", Action: FilterActionInclude, Criteria: FilterCriteria{
			MetadataValue: strptr("v"),
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rule.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
