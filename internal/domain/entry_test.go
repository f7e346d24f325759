package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestNewLogEntry_GeneratesUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		entry := NewLogEntry(LevelInfo, "message")
		if entry.EntryID == "" {
			t.Fatal("entry id is empty")
		}
		if seen[entry.EntryID] {
			t.Fatalf("duplicate entry id %q", entry.EntryID)
		}
		seen[entry.EntryID] = true
	}
}

func TestNewLogEntryFromContext(t *testing.T) {
	t.Run("uses context source and category", func(t *testing.T) {
		ctx := NewFileSystemLogContext("read", "/tmp/x", ContextOptions{
			Source:        "FileService",
			CorrelationID: "corr-1",
		})
		entry := NewLogEntryFromContext(LevelWarning, "read failed", ctx)

		if entry.Source != "FileService" {
			t.Errorf("source = %q, want %q", entry.Source, "FileService")
		}
		if entry.Category != "FileSystem" {
			t.Errorf("category = %q, want %q", entry.Category, "FileSystem")
		}
		if v, _ := entry.Metadata.GetString("correlationID"); v != "corr-1" {
			t.Error("correlation id not folded into metadata")
		}
	})

	t.Run("falls back to domain name", func(t *testing.T) {
		ctx := NewCryptoLogContext("encrypt", "AES-256", ContextOptions{})
		entry := NewLogEntryFromContext(LevelInfo, "encrypted", ctx)
		if entry.Source != "Crypto" {
			t.Errorf("source = %q, want domain fallback %q", entry.Source, "Crypto")
		}
	})
}

func TestLogEntry_DTORoundTrip(t *testing.T) {
	entry := NewLogEntry(LevelError, "decryption failed").
		WithSource("CryptoService").
		WithCategory("Security").
		WithMetadata(NewMetadataCollection().
			WithPublic("operation", "decrypt").
			WithPrivate("keyIdentifier", "key-1").
			WithSensitive("payload", "secret").
			WithPrivate("keyIdentifier", "key-2"))

	restored, err := entry.ToDTO().ToEntry()
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	if restored.EntryID != entry.EntryID {
		t.Errorf("entry id = %q, want %q", restored.EntryID, entry.EntryID)
	}
	if restored.Level != entry.Level {
		t.Errorf("level = %v, want %v", restored.Level, entry.Level)
	}
	if restored.Message != entry.Message {
		t.Errorf("message = %q, want %q", restored.Message, entry.Message)
	}
	if restored.Source != entry.Source || restored.Category != entry.Category {
		t.Errorf("source/category = %q/%q, want %q/%q",
			restored.Source, restored.Category, entry.Source, entry.Category)
	}
	if !reflect.DeepEqual(restored.Metadata.Entries(), entry.Metadata.Entries()) {
		t.Errorf("metadata entries differ:\n%v\n%v",
			restored.Metadata.Entries(), entry.Metadata.Entries())
	}
	if delta := restored.Timestamp.Sub(entry.Timestamp); delta > time.Millisecond || delta < -time.Millisecond {
		t.Errorf("timestamp drifted by %v", delta)
	}
}

func TestLogEntryDTO_ToEntryRejectsUnknownLevel(t *testing.T) {
	dto := LogEntryDTO{EntryID: "x", Level: "shouting", Message: "m"}
	if _, err := dto.ToEntry(); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestLevel_Parsing(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarning, false},
		{"warning", LevelWarning, false},
		{"error", LevelError, false},
		{"critical", LevelCritical, false},
		{"fatal", LevelCritical, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
