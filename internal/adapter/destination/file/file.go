// Package file provides a destination that appends JSON-encoded entries
// to segment files and honors its retention policy through segment
// rotation and pruning.
package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quillsec/privlog/internal/domain"
)

const (
	segmentPrefix = "segment-"
	archivePrefix = "archive-"
	filePerm      = 0644
)

// Destination writes newline-delimited LogEntryDTO JSON into segment
// files. Rotation is checked before every write against the retention
// policy; rotated segments beyond the backup count are archived or
// deleted. All internal state is mutex-guarded.
type Destination struct {
	id       string
	minLevel domain.Level
	policy   domain.RetentionPolicy
	dir      string
	logger   *slog.Logger

	mu             sync.Mutex
	currentSegment *os.File
	currentSize    int64
	currentCount   int
	openedAt       time.Time
}

func New(id string, minLevel domain.Level, policy domain.RetentionPolicy, dir string, logger *slog.Logger) (*Destination, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInitializationFailed, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create directory %s: %v", domain.ErrInitializationFailed, dir, err)
	}

	d := &Destination{
		id:       id,
		minLevel: minLevel,
		policy:   policy,
		dir:      dir,
		logger:   logger.With("component", "file_destination", "destination", id),
	}
	if err := d.openLatestSegment(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Destination) Identifier() string {
	return d.id
}

func (d *Destination) MinimumLevel() domain.Level {
	return d.minLevel
}

// Write appends one entry to the current segment, rotating first when the
// policy's ceiling has been crossed.
func (d *Destination) Write(ctx context.Context, entry domain.LogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entry.ToDTO())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSerializationFailed, err)
	}
	data = append(data, '\n')

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.currentSegment == nil {
		if err := d.rotateLocked(); err != nil {
			return err
		}
	}
	if d.policy.ShouldRotate(d.currentCount, d.currentSize, d.openedAt, time.Now().UTC()) {
		if err := d.rotateLocked(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrRotationFailed, err)
		}
	}

	n, err := d.currentSegment.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write segment: %w", err)
	}
	d.currentSize += int64(n)
	d.currentCount++
	return nil
}

// Flush syncs the current segment to disk.
func (d *Destination) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.currentSegment == nil {
		return nil
	}
	return d.currentSegment.Sync()
}

// Close releases the current segment.
func (d *Destination) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.currentSegment != nil {
		err := d.currentSegment.Close()
		d.currentSegment = nil
		return err
	}
	return nil
}

// ReadAll decodes every entry across all live segments in write order.
func (d *Destination) ReadAll(ctx context.Context) ([]domain.LogEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.currentSegment != nil {
		if err := d.currentSegment.Sync(); err != nil {
			return nil, err
		}
	}

	segments, err := d.sortedSegments(segmentPrefix)
	if err != nil {
		return nil, err
	}

	var entries []domain.LogEntry
	for _, segmentPath := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := os.Open(segmentPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open segment %s: %w", segmentPath, err)
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var dto domain.LogEntryDTO
			if err := json.Unmarshal(scanner.Bytes(), &dto); err != nil {
				d.logger.Warn("skipping undecodable segment line", "error", err)
				continue
			}
			entry, err := dto.ToEntry()
			if err != nil {
				d.logger.Warn("skipping unconvertible segment line", "error", err)
				continue
			}
			entries = append(entries, entry)
		}
		if err := scanner.Err(); err != nil {
			file.Close()
			return nil, fmt.Errorf("error scanning segment %s: %w", segmentPath, err)
		}
		file.Close()
	}
	return entries, nil
}

// SegmentCount returns the number of live segment files.
func (d *Destination) SegmentCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	segments, err := d.sortedSegments(segmentPrefix)
	if err != nil {
		return 0, err
	}
	return len(segments), nil
}

// ArchiveCount returns the number of archived segment files.
func (d *Destination) ArchiveCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	archives, err := d.sortedSegments(archivePrefix)
	if err != nil {
		return 0, err
	}
	return len(archives), nil
}

func (d *Destination) rotateLocked() error {
	if d.currentSegment != nil {
		if err := d.currentSegment.Sync(); err != nil {
			d.logger.Error("failed to sync segment before rotating", "error", err)
		}
		if err := d.currentSegment.Close(); err != nil {
			d.logger.Error("failed to close segment before rotating", "error", err)
		}
		d.currentSegment = nil
	}

	segmentName := fmt.Sprintf("%s%d.log", segmentPrefix, time.Now().UnixNano())
	path := filepath.Join(d.dir, segmentName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create segment %s: %w", path, err)
	}

	d.currentSegment = f
	d.currentSize = 0
	d.currentCount = 0
	d.openedAt = time.Now().UTC()
	d.logger.Info("rotated to new segment", "path", path)

	return d.pruneLocked(segmentName)
}

// pruneLocked enforces the backup count over the older segments. Pruned
// segments are renamed into the archive when the policy asks for it,
// removed otherwise.
func (d *Destination) pruneLocked(currentName string) error {
	segments, err := d.sortedSegments(segmentPrefix)
	if err != nil {
		return err
	}

	older := segments[:0]
	for _, s := range segments {
		if filepath.Base(s) != currentName {
			older = append(older, s)
		}
	}
	excess := len(older) - d.policy.BackupCount
	for i := 0; i < excess; i++ {
		segmentPath := older[i]
		if d.policy.ArchiveBeforeDelete {
			archived := filepath.Join(d.dir, archivePrefix+strings.TrimPrefix(filepath.Base(segmentPath), segmentPrefix))
			if err := os.Rename(segmentPath, archived); err != nil {
				d.logger.Error("failed to archive segment", "path", segmentPath, "error", err)
			}
			continue
		}
		if err := os.Remove(segmentPath); err != nil {
			d.logger.Error("failed to remove segment", "path", segmentPath, "error", err)
		}
	}
	return nil
}

func (d *Destination) openLatestSegment() error {
	segments, err := d.sortedSegments(segmentPrefix)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return d.rotateLocked()
	}

	latest := segments[len(segments)-1]
	stat, err := os.Stat(latest)
	if err != nil {
		return fmt.Errorf("failed to stat segment %s: %w", latest, err)
	}
	count, err := countLines(latest)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(latest, os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open segment %s: %w", latest, err)
	}

	d.currentSegment = f
	d.currentSize = stat.Size()
	d.currentCount = count
	d.openedAt = stat.ModTime().UTC()
	d.logger.Info("opened existing segment", "path", latest, "size", d.currentSize, "entries", count)
	return nil
}

func (d *Destination) sortedSegments(prefix string) ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read segment directory: %w", err)
	}
	var segments []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			segments = append(segments, filepath.Join(d.dir, entry.Name()))
		}
	}
	sort.Strings(segments)
	return segments, nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
