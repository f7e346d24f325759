package file

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/quillsec/privlog/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupDestination(t *testing.T, policy domain.RetentionPolicy) *Destination {
	t.Helper()
	d, err := New("file", domain.LevelDebug, policy, t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("failed to create destination: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func writeN(t *testing.T, d *Destination, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		entry := domain.NewLogEntry(domain.LevelInfo, fmt.Sprintf("entry %d", i)).
			WithSource("FileTest").
			WithMetadata(domain.NewMetadataCollection().WithPublic("seq", fmt.Sprintf("%d", i)))
		if err := d.Write(context.Background(), entry); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}
}

func TestDestination_WriteAndReadAll(t *testing.T) {
	d := setupDestination(t, domain.RetentionPolicy{RotationStrategy: domain.RotationNone})
	writeN(t, d, 3)

	entries, err := d.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("read %d entries, want 3", len(entries))
	}
	if entries[0].Message != "entry 0" || entries[2].Message != "entry 2" {
		t.Error("entries came back out of order")
	}
	if v, _ := entries[1].Metadata.GetString("seq"); v != "1" {
		t.Errorf("metadata did not survive the disk round trip: seq = %q", v)
	}
}

func TestDestination_CountRotationCreatesSegments(t *testing.T) {
	d := setupDestination(t, domain.RetentionPolicy{
		MaxEntries:       2,
		RotationStrategy: domain.RotationCount,
		BackupCount:      5,
	})
	writeN(t, d, 7)

	segments, err := d.SegmentCount()
	if err != nil {
		t.Fatal(err)
	}
	if segments < 2 {
		t.Errorf("segment count = %d, want at least 2 after rotation", segments)
	}

	entries, err := d.ReadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 7 {
		t.Errorf("read %d entries across segments, want 7", len(entries))
	}
}

func TestDestination_BackupCountPrunes(t *testing.T) {
	d := setupDestination(t, domain.RetentionPolicy{
		MaxEntries:       1,
		RotationStrategy: domain.RotationCount,
		BackupCount:      1,
	})
	writeN(t, d, 10)

	segments, err := d.SegmentCount()
	if err != nil {
		t.Fatal(err)
	}
	// Current segment plus at most BackupCount older ones.
	if segments > 2 {
		t.Errorf("segment count = %d, want at most 2 with backup_count=1", segments)
	}
}

func TestDestination_ArchiveBeforeDelete(t *testing.T) {
	d := setupDestination(t, domain.RetentionPolicy{
		MaxEntries:          1,
		RotationStrategy:    domain.RotationCount,
		BackupCount:         0,
		ArchiveBeforeDelete: true,
	})
	writeN(t, d, 5)

	archives, err := d.ArchiveCount()
	if err != nil {
		t.Fatal(err)
	}
	if archives == 0 {
		t.Error("pruned segments were deleted despite archive_before_delete")
	}
}

func TestDestination_ReopenAppendsToLatestSegment(t *testing.T) {
	dir := t.TempDir()
	policy := domain.RetentionPolicy{RotationStrategy: domain.RotationNone}

	d, err := New("file", domain.LevelDebug, policy, dir, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	writeN(t, d, 2)
	d.Close()

	reopened, err := New("file", domain.LevelDebug, policy, dir, testLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	writeN(t, reopened, 1)

	entries, err := reopened.ReadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("read %d entries after reopen, want 3", len(entries))
	}
	segments, err := reopened.SegmentCount()
	if err != nil {
		t.Fatal(err)
	}
	if segments != 1 {
		t.Errorf("reopen created a new segment: count = %d, want 1", segments)
	}
}

func TestNew_RejectsInvalidPolicy(t *testing.T) {
	_, err := New("file", domain.LevelDebug,
		domain.RetentionPolicy{RotationStrategy: "weekly"}, t.TempDir(), testLogger())
	if err == nil {
		t.Fatal("expected an error for an invalid policy")
	}
}
