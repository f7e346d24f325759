// Package redisstream provides a destination that appends entries to a
// Redis stream.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/quillsec/privlog/internal/domain"
)

const defaultStreamKey = "privlog_entries"

// Destination appends JSON-encoded entries to a stream with XADD. When the
// retention policy carries a count ceiling it is mapped to approximate
// MAXLEN trimming, which is how Redis streams bound their growth; other
// retention enforcement belongs to whatever consumes the stream.
type Destination struct {
	client   *redis.Client
	id       string
	minLevel domain.Level
	stream   string
	maxLen   int64
	logger   *slog.Logger
}

func New(client *redis.Client, id string, minLevel domain.Level, stream string, policy domain.RetentionPolicy, logger *slog.Logger) *Destination {
	if stream == "" {
		stream = defaultStreamKey
	}
	var maxLen int64
	if policy.RotationStrategy != domain.RotationNone && policy.MaxEntries > 0 {
		maxLen = int64(policy.MaxEntries)
	}
	return &Destination{
		client:   client,
		id:       id,
		minLevel: minLevel,
		stream:   stream,
		maxLen:   maxLen,
		logger:   logger.With("component", "redis_destination", "destination", id),
	}
}

func (d *Destination) Identifier() string {
	return d.id
}

func (d *Destination) MinimumLevel() domain.Level {
	return d.minLevel
}

func (d *Destination) Write(ctx context.Context, entry domain.LogEntry) error {
	payload, err := json.Marshal(entry.ToDTO())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSerializationFailed, err)
	}

	args := &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]interface{}{"entry": payload},
	}
	if d.maxLen > 0 {
		args.MaxLen = d.maxLen
		args.Approx = true
	}

	if err := d.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", d.stream, err)
	}
	return nil
}

// Flush verifies connectivity; XADD itself is not buffered client-side.
func (d *Destination) Flush(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}
