// Package postgres provides a destination that sinks entries into a
// PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lib/pq"

	"github.com/quillsec/privlog/internal/domain"
)

const defaultBatchSize = 500

// Destination buffers entries and persists them in batches using the COPY
// protocol, upserting on entry_id so redelivered entries stay idempotent.
// Write appends to the buffer and flushes once the batch size is reached;
// Flush drains whatever is pending.
type Destination struct {
	db        *sql.DB
	id        string
	minLevel  domain.Level
	table     string
	batchSize int
	logger    *slog.Logger

	mu      sync.Mutex
	pending []domain.LogEntryDTO
}

func New(db *sql.DB, id string, minLevel domain.Level, table string, logger *slog.Logger) *Destination {
	if table == "" {
		table = "log_entries"
	}
	return &Destination{
		db:        db,
		id:        id,
		minLevel:  minLevel,
		table:     table,
		batchSize: defaultBatchSize,
		logger:    logger.With("component", "postgres_destination", "destination", id),
	}
}

func (d *Destination) Identifier() string {
	return d.id
}

func (d *Destination) MinimumLevel() domain.Level {
	return d.minLevel
}

func (d *Destination) Write(ctx context.Context, entry domain.LogEntry) error {
	d.mu.Lock()
	d.pending = append(d.pending, entry.ToDTO())
	flushNow := len(d.pending) >= d.batchSize
	d.mu.Unlock()

	if flushNow {
		return d.Flush(ctx)
	}
	return nil
}

// Flush writes the pending batch inside one transaction. On failure the
// batch is kept for the next attempt.
func (d *Destination) Flush(ctx context.Context) error {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	d.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	if err := d.writeBatch(ctx, batch); err != nil {
		d.mu.Lock()
		d.pending = append(batch, d.pending...)
		d.mu.Unlock()
		return err
	}
	return nil
}

func (d *Destination) writeBatch(ctx context.Context, batch []domain.LogEntryDTO) error {
	txn, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	// Stage the batch in a temp table, then merge into the main table.
	tempTable := d.table + "_temp_import"
	_, err = txn.ExecContext(ctx, `CREATE TEMP TABLE `+tempTable+` (LIKE `+d.table+` INCLUDING DEFAULTS) ON COMMIT DROP;`)
	if err != nil {
		return err
	}

	stmt, err := txn.Prepare(pq.CopyIn(tempTable, "entry_id", "ts", "level", "message", "source", "category", "metadata"))
	if err != nil {
		return err
	}

	for _, dto := range batch {
		metadata, err := json.Marshal(dto.Metadata)
		if err != nil {
			_ = stmt.Close()
			return fmt.Errorf("%w: %v", domain.ErrSerializationFailed, err)
		}
		_, err = stmt.ExecContext(ctx, dto.EntryID, dto.Timestamp, dto.Level, dto.Message, dto.Source, dto.Category, metadata)
		if err != nil {
			_ = stmt.Close()
			return err
		}
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	upsert := `
		INSERT INTO ` + d.table + ` (entry_id, ts, level, message, source, category, metadata)
		SELECT entry_id, ts, level, message, source, category, metadata FROM ` + tempTable + `
		ON CONFLICT (entry_id) DO UPDATE SET
			ts = EXCLUDED.ts,
			level = EXCLUDED.level,
			message = EXCLUDED.message,
			source = EXCLUDED.source,
			category = EXCLUDED.category,
			metadata = EXCLUDED.metadata;
	`
	if _, err := txn.ExecContext(ctx, upsert); err != nil {
		return err
	}
	return txn.Commit()
}

// PendingCount returns the number of buffered entries awaiting a flush.
func (d *Destination) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
