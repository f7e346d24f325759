package domain

import (
	"reflect"
	"testing"
)

func entryFor(m MetadataCollection, key string) (MetadataEntry, bool) {
	for _, e := range m.Entries() {
		if e.Key == key {
			return e, true
		}
	}
	return MetadataEntry{}, false
}

func TestFileSystemLogContext_FileNameHeuristic(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		wantFileName   string
		expectFileName bool
	}{
		{"txt extension is safe", "/Users/a/notes.txt", "notes.txt", true},
		{"log extension is safe", "/var/log/app.log", "app.log", true},
		{"no extension is safe", "/tmp/x", "x", true},
		{"pdf extension is not exposed", "/Users/a/secret.pdf", "", false},
		{"dotfile is not exposed", "/home/a/.netrc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := NewFileSystemLogContext("read", tt.path, ContextOptions{})

			pathEntry, ok := entryFor(ctx.Metadata(), "path")
			if !ok {
				t.Fatal("path entry missing")
			}
			if pathEntry.Classification != ClassificationPrivate {
				t.Errorf("path classified %q, want private", pathEntry.Classification)
			}

			fileEntry, ok := entryFor(ctx.Metadata(), "fileName")
			if ok != tt.expectFileName {
				t.Fatalf("fileName present = %v, want %v", ok, tt.expectFileName)
			}
			if tt.expectFileName {
				if fileEntry.Value != tt.wantFileName {
					t.Errorf("fileName = %q, want %q", fileEntry.Value, tt.wantFileName)
				}
				if fileEntry.Classification != ClassificationPublic {
					t.Errorf("fileName classified %q, want public", fileEntry.Classification)
				}
			}
		})
	}
}

func TestContextConstruction_Idempotent(t *testing.T) {
	build := func() LogContext {
		return NewCryptoLogContext("encrypt", "AES-256", ContextOptions{
			Source:   "CryptoService",
			Metadata: NewMetadataCollection().WithPublic("attempt", "1"),
		}).WithKeyIdentifier("key-1").WithKeyStrength(256)
	}

	first := build()
	second := build()
	if !reflect.DeepEqual(first.Metadata().Entries(), second.Metadata().Entries()) {
		t.Errorf("same arguments produced different metadata:\n%v\n%v",
			first.Metadata().Entries(), second.Metadata().Entries())
	}
}

func TestRepositoryLogContext_AdditionalMetadataIsDeterministic(t *testing.T) {
	additional := map[string]MetadataValue{
		"zeta":  {Value: "z", Classification: ClassificationPublic},
		"alpha": {Value: "a", Classification: ClassificationSensitive},
		"mid":   {Value: "m", Classification: ClassificationPrivate},
	}

	first := NewRepositoryLogContext("prune", "repo-1", additional, ContextOptions{})
	second := NewRepositoryLogContext("prune", "repo-1", additional, ContextOptions{})

	if !reflect.DeepEqual(first.Metadata().Entries(), second.Metadata().Entries()) {
		t.Error("additional metadata fold is not deterministic")
	}

	var keys []string
	for _, e := range first.Metadata().Entries() {
		keys = append(keys, e.Key)
	}
	want := []string{"operation", "category", "repositoryID", "alpha", "mid", "zeta"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("fold order = %v, want %v", keys, want)
	}
}

func TestContext_WithUpdatedMetadataAppends(t *testing.T) {
	ctx := NewSecurityLogContext("authenticate", "AuthService", ContextOptions{})
	before := ctx.Metadata().Len()

	updated := ctx.WithUpdatedMetadata(NewMetadataCollection().WithPublic("attempt", "2"))

	if ctx.Metadata().Len() != before {
		t.Error("original context mutated")
	}
	if updated.Metadata().Len() != before+1 {
		t.Errorf("updated context has %d entries, want %d", updated.Metadata().Len(), before+1)
	}
	if v, _ := updated.Metadata().GetString("component"); v != "AuthService" {
		t.Error("existing fields not preserved across update")
	}
}

func TestContext_WithCorrelationIDAndSourceRebuild(t *testing.T) {
	ctx := NewSnapshotLogContext("create", "snap-9", ContextOptions{Source: "SnapshotService"})

	withCorr := ctx.WithCorrelationID("corr-1")
	if withCorr.CorrelationID() != "corr-1" {
		t.Errorf("correlation id = %q, want %q", withCorr.CorrelationID(), "corr-1")
	}
	if withCorr.Source() != "SnapshotService" {
		t.Error("source changed by WithCorrelationID")
	}
	if !reflect.DeepEqual(withCorr.Metadata().Entries(), ctx.Metadata().Entries()) {
		t.Error("metadata changed by WithCorrelationID")
	}

	withSource := ctx.WithSource("Rebuilt")
	if withSource.Source() != "Rebuilt" {
		t.Errorf("source = %q, want %q", withSource.Source(), "Rebuilt")
	}
	if ctx.Source() != "SnapshotService" {
		t.Error("original context mutated by WithSource")
	}
}

func TestContextVariants_FieldClassifications(t *testing.T) {
	tests := []struct {
		name    string
		ctx     LogContext
		key     string
		wantCls Classification
	}{
		{"crypto algorithm is public", NewCryptoLogContext("encrypt", "AES-256", ContextOptions{}), "algorithm", ClassificationPublic},
		{"keychain account is private", NewKeychainLogContext("store", "alice@example.com", ContextOptions{}), "account", ClassificationPrivate},
		{"error type is public", NewErrorLogContext("decrypt", "CryptoError", "crypto", 42, "boom", ContextOptions{}), "errorType", ClassificationPublic},
		{"error description is private", NewErrorLogContext("decrypt", "CryptoError", "crypto", 42, "boom", ContextOptions{}), "errorDescription", ClassificationPrivate},
		{"snapshot id is private", NewSnapshotLogContext("create", "snap-1", ContextOptions{}), "snapshotID", ClassificationPrivate},
		{"key management key id is private", NewKeyManagementLogContext("rotate", "key-7", ContextOptions{}), "keyIdentifier", ClassificationPrivate},
		{"core component is public", NewCoreLogContext("start", "Lifecycle", ContextOptions{}).WithComponent("Scheduler"), "component", ClassificationPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := entryFor(tt.ctx.Metadata(), tt.key)
			if !ok {
				t.Fatalf("entry %q missing from %v", tt.key, tt.ctx.Metadata().Entries())
			}
			if entry.Classification != tt.wantCls {
				t.Errorf("%q classified %q, want %q", tt.key, entry.Classification, tt.wantCls)
			}
		})
	}
}

func TestContextVariants_DomainNames(t *testing.T) {
	tests := []struct {
		ctx  LogContext
		want string
	}{
		{NewCoreLogContext("op", "cat", ContextOptions{}), "Core"},
		{NewCryptoLogContext("op", "", ContextOptions{}), "Crypto"},
		{NewKeychainLogContext("op", "", ContextOptions{}), "Keychain"},
		{NewErrorLogContext("op", "", "", 0, "", ContextOptions{}), "Error"},
		{NewFileSystemLogContext("op", "", ContextOptions{}), "FileSystem"},
		{NewSecurityLogContext("op", "", ContextOptions{}), "Security"},
		{NewSnapshotLogContext("op", "", ContextOptions{}), "Snapshot"},
		{NewRepositoryLogContext("op", "", nil, ContextOptions{}), "Repository"},
		{NewKeyManagementLogContext("op", "", ContextOptions{}), "KeyManagement"},
	}
	for _, tt := range tests {
		if got := tt.ctx.DomainName(); got != tt.want {
			t.Errorf("DomainName = %q, want %q", got, tt.want)
		}
	}
}
