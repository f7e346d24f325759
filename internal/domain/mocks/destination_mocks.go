package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/quillsec/privlog/internal/domain"
)

// MockDestination is a hand-written test double for domain.Destination.
// Writes are recorded under a mutex; error and delay fields let tests
// simulate failing and slow destinations.
type MockDestination struct {
	ID       string
	MinLevel domain.Level

	mu             sync.Mutex
	WrittenEntries []domain.LogEntry
	FlushCalls     int
	WriteErr       error
	FlushErr       error
	// WriteDelay makes Write block, honoring context cancellation, so
	// tests can exercise the pipeline's per-destination deadline.
	WriteDelay time.Duration
}

func (m *MockDestination) Identifier() string {
	return m.ID
}

func (m *MockDestination) MinimumLevel() domain.Level {
	return m.MinLevel
}

func (m *MockDestination) Write(ctx context.Context, entry domain.LogEntry) error {
	if m.WriteDelay > 0 {
		select {
		case <-time.After(m.WriteDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.WrittenEntries = append(m.WrittenEntries, entry)
	return nil
}

func (m *MockDestination) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalls++
	return m.FlushErr
}

// Written returns a snapshot of the recorded entries.
func (m *MockDestination) Written() []domain.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]domain.LogEntry, len(m.WrittenEntries))
	copy(copied, m.WrittenEntries)
	return copied
}
