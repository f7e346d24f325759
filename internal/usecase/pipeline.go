// Package usecase orchestrates the logging pipeline: entries enter through
// a single serialized actor, pass the per-destination filter and redaction
// stages, and fan out to destinations independently.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/quillsec/privlog/internal/adapter/filter"
	"github.com/quillsec/privlog/internal/adapter/metrics"
	"github.com/quillsec/privlog/internal/adapter/redact"
	"github.com/quillsec/privlog/internal/domain"
)

const (
	defaultQueueSize            = 1024
	defaultDestinationQueueSize = 256
	defaultWriteTimeout         = 5 * time.Second
)

// Options configures a Pipeline. The zero value gets sensible defaults.
type Options struct {
	// QueueSize bounds the actor's inbox; a full inbox drops entries
	// rather than blocking callers.
	QueueSize int
	// DestinationQueueSize bounds each destination's private queue, which
	// is what keeps one slow destination from stalling the others.
	DestinationQueueSize int
	// WriteTimeout is the per-write deadline applied to every destination
	// unless its configuration overrides it.
	WriteTimeout time.Duration
	// RenderMode and AutoClassifier control the privacy projection
	// applied when ProjectMetadata is set: metadata values are rendered
	// per their classification before the entry reaches a destination.
	RenderMode      domain.RenderMode
	AutoClassifier  domain.AutoClassifier
	ProjectMetadata bool
	// ErrorBuffer sizes the diagnostics channel.
	ErrorBuffer int
}

// registration binds a destination to its policy objects and its private
// delivery queue.
type registration struct {
	dest      domain.Destination
	evaluator *filter.Evaluator
	redactor  *redact.Redactor
	limiter   *rate.Limiter
	timeout   time.Duration
	queue     chan domain.LogEntry
}

// Pipeline is the logging actor. Log is fire-and-forget: the caller only
// pays for an enqueue, and a single consumer goroutine serializes the
// filter decision so concurrent log calls stay ordered relative to each
// other. Each destination then drains its own queue in its own goroutine,
// so destinations never block one another and a write that exceeds its
// deadline is abandoned for that destination only.
type Pipeline struct {
	opts    Options
	logger  *slog.Logger
	metrics *metrics.PipelineMetrics
	errs    *ErrorChannel

	queue chan domain.LogEntry
	wg    sync.WaitGroup

	mu     sync.RWMutex
	dests  map[string]*registration
	closed bool
}

// NewPipeline creates and starts a pipeline.
func NewPipeline(opts Options, logger *slog.Logger, m *metrics.PipelineMetrics) *Pipeline {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.DestinationQueueSize <= 0 {
		opts.DestinationQueueSize = defaultDestinationQueueSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	p := &Pipeline{
		opts:    opts,
		logger:  logger.With("component", "pipeline"),
		metrics: m,
		errs:    NewErrorChannel(opts.ErrorBuffer),
		queue:   make(chan domain.LogEntry, opts.QueueSize),
		dests:   make(map[string]*registration),
	}

	p.wg.Add(1)
	go p.run()
	return p
}

// Errors exposes the pipeline's diagnostics channel.
func (p *Pipeline) Errors() <-chan error {
	return p.errs.C()
}

// Register validates the configuration and attaches the destination. All
// configuration problems are rejected here, synchronously, before a bad
// rule can silently no-op.
func (p *Pipeline) Register(cfg domain.DestinationConfig, dest domain.Destination) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Identifier != dest.Identifier() {
		return fmt.Errorf("%w: config identifies %q but destination is %q",
			domain.ErrInvalidConfiguration, cfg.Identifier, dest.Identifier())
	}

	reg := &registration{
		dest:      dest,
		evaluator: filter.New(cfg.FilterRules),
		redactor:  redact.NewRedactor(cfg.RedactionRules, p.logger, p.errs.Report),
		timeout:   p.opts.WriteTimeout,
		queue:     make(chan domain.LogEntry, p.opts.DestinationQueueSize),
	}
	if cfg.WriteTimeout > 0 {
		reg.timeout = cfg.WriteTimeout.Std()
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		reg.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("%w: pipeline is closed", domain.ErrInitializationFailed)
	}
	if _, exists := p.dests[cfg.Identifier]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateDestination, cfg.Identifier)
	}
	p.dests[cfg.Identifier] = reg

	p.wg.Add(1)
	go p.deliver(reg)

	p.logger.Info("destination registered", "destination", cfg.Identifier,
		"filter_rules", len(cfg.FilterRules), "redaction_rules", reg.redactor.RuleCount())
	return nil
}

// Unregister detaches a destination and drains its queue.
func (p *Pipeline) Unregister(identifier string) error {
	p.mu.Lock()
	reg, ok := p.dests[identifier]
	if ok {
		delete(p.dests, identifier)
	}
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrDestinationNotFound, identifier)
	}
	close(reg.queue)
	return nil
}

// Log enqueues one entry and returns immediately. A full queue drops the
// entry: logging is best-effort and never blocks or fails the caller.
//
// The read lock is held across the send: Close closes the inbox under the
// write lock, so a send can never race the close. The send has a default
// branch, so the lock is only ever held for a non-blocking channel op.
func (p *Pipeline) Log(entry domain.LogEntry) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.queue <- entry:
		p.metrics.EntriesEnqueued.Inc()
		p.metrics.QueueDepth.Set(float64(len(p.queue)))
	default:
		p.metrics.EntriesDropped.Inc()
	}
}

// LogContext materializes an entry from a context and enqueues it.
func (p *Pipeline) LogContext(level domain.Level, message string, ctx domain.LogContext) {
	p.Log(domain.NewLogEntryFromContext(level, message, ctx))
}

// Close stops accepting entries, drains both queue stages, and flushes
// every destination. The given context bounds the flush.
func (p *Pipeline) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	regs := make([]*registration, 0, len(p.dests))
	for _, reg := range p.dests {
		regs = append(regs, reg)
	}
	// Closing under the write lock pairs with the read lock Log holds
	// across its send, so no sender can outlive the channel.
	close(p.queue)
	p.mu.Unlock()

	// The actor may still be fanning out; it closes the destination
	// queues itself once its inbox is drained.
	p.wg.Wait()

	var err error
	for _, reg := range regs {
		if flushErr := reg.dest.Flush(ctx); flushErr != nil {
			err = multierr.Append(err, &domain.DestinationError{
				Identifier: reg.dest.Identifier(), Op: "flush", Err: flushErr,
			})
		}
	}
	return err
}

// run is the single-writer serialization domain: one goroutine consumes
// the inbox so filtering decisions happen in a deterministic order.
func (p *Pipeline) run() {
	defer p.wg.Done()

	for entry := range p.queue {
		p.metrics.QueueDepth.Set(float64(len(p.queue)))
		p.dispatch(entry)
	}

	// Inbox drained; shut down the destination workers.
	p.mu.Lock()
	regs := make([]*registration, 0, len(p.dests))
	for id, reg := range p.dests {
		regs = append(regs, reg)
		delete(p.dests, id)
	}
	p.mu.Unlock()
	for _, reg := range regs {
		close(reg.queue)
	}
}

// dispatch applies the level floor and filter rules per destination and
// hands admitted entries to the destination workers. Fan-out is
// independent: a full worker queue drops the entry for that destination
// only.
func (p *Pipeline) dispatch(entry domain.LogEntry) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for id, reg := range p.dests {
		// The destination's own level floor comes before any rule.
		if entry.Level < reg.dest.MinimumLevel() {
			p.metrics.EntriesFiltered.WithLabelValues(id, "level_floor").Inc()
			continue
		}
		if decision := reg.evaluator.Evaluate(entry); !decision.Admitted {
			p.metrics.EntriesFiltered.WithLabelValues(id, "rule").Inc()
			continue
		}
		if reg.limiter != nil && !reg.limiter.Allow() {
			p.metrics.EntriesFiltered.WithLabelValues(id, "rate_limit").Inc()
			p.metrics.RateLimited.WithLabelValues(id).Inc()
			continue
		}

		select {
		case reg.queue <- entry:
		default:
			p.metrics.EntriesDropped.Inc()
			p.errs.Report(&domain.DestinationError{
				Identifier: id, Op: "write",
				Err: errors.New("destination queue full, entry dropped"),
			})
		}
	}
}

// deliver is one destination's worker: it redacts, projects and writes
// under the per-destination deadline. A timed-out write is abandoned and
// reported, never retried.
func (p *Pipeline) deliver(reg *registration) {
	defer p.wg.Done()
	id := reg.dest.Identifier()

	for entry := range reg.queue {
		if reg.redactor.RuleCount() > 0 {
			entry = reg.redactor.Apply(entry)
			p.metrics.RedactionsApplied.WithLabelValues(id).Inc()
		}
		if p.opts.ProjectMetadata {
			entry = entry.WithMetadata(entry.Metadata.Rendered(p.opts.RenderMode, p.opts.AutoClassifier))
		}

		ctx, cancel := context.WithTimeout(context.Background(), reg.timeout)
		err := reg.dest.Write(ctx, entry)
		cancel()

		switch {
		case err == nil:
			p.metrics.EntriesDelivered.WithLabelValues(id).Inc()
		case errors.Is(err, context.DeadlineExceeded):
			p.metrics.DestinationTimeouts.WithLabelValues(id).Inc()
			p.errs.Report(&domain.DestinationError{
				Identifier: id, Op: "write",
				Err: fmt.Errorf("%w: %v", domain.ErrWriteTimeout, err),
			})
		default:
			p.metrics.DestinationErrors.WithLabelValues(id).Inc()
			p.errs.Report(&domain.DestinationError{Identifier: id, Op: "write", Err: err})
		}
	}
}
