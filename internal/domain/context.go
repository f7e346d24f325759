package domain

// LogContext is a domain-tagged bundle of identifying fields and metadata
// attached to a log call. Concrete variants exist per subsystem and differ
// only in which domain-specific fields they fold into their metadata and
// with which fixed classification.
//
// Contexts are immutable value types: every With* method returns a rebuilt
// context and never modifies the receiver. Constructors are pure functions
// and never fail; field validation is the caller's responsibility.
type LogContext interface {
	DomainName() string
	Operation() string
	Category() string
	Source() string
	CorrelationID() string
	Metadata() MetadataCollection

	// WithUpdatedMetadata appends more entries to the existing metadata.
	WithUpdatedMetadata(more MetadataCollection) LogContext
	WithCorrelationID(id string) LogContext
	WithSource(source string) LogContext
}

// ContextOptions carries the optional fields shared by every context
// constructor. The zero value is valid.
type ContextOptions struct {
	Source        string
	CorrelationID string
	// Metadata is appended after the variant's own fields.
	Metadata MetadataCollection
}

// contextCore holds the fields common to every context variant. Variants
// embed it and inherit the accessor methods; the fold order is always the
// variant's domain fields first, in declaration order, followed by the
// caller-supplied extra metadata.
type contextCore struct {
	domain        string
	operation     string
	category      string
	source        string
	correlationID string
	metadata      MetadataCollection
}

// newContextCore folds operation and category (both public when present),
// then the variant's own fields, then the extra metadata from opts.
// Construction is deterministic: the same arguments always produce the
// same metadata sequence.
func newContextCore(domain, operation, category string, fields MetadataCollection, opts ContextOptions) contextCore {
	metadata := NewMetadataCollection()
	if operation != "" {
		metadata = metadata.WithPublic("operation", operation)
	}
	if category != "" {
		metadata = metadata.WithPublic("category", category)
	}
	metadata = metadata.Merging(fields).Merging(opts.Metadata)
	return contextCore{
		domain:        domain,
		operation:     operation,
		category:      category,
		source:        opts.Source,
		correlationID: opts.CorrelationID,
		metadata:      metadata,
	}
}

func (c contextCore) DomainName() string            { return c.domain }
func (c contextCore) Operation() string             { return c.operation }
func (c contextCore) Category() string              { return c.category }
func (c contextCore) Source() string                { return c.source }
func (c contextCore) CorrelationID() string         { return c.correlationID }
func (c contextCore) Metadata() MetadataCollection  { return c.metadata }

func (c contextCore) withMetadata(more MetadataCollection) contextCore {
	c.metadata = c.metadata.Merging(more)
	return c
}

func (c contextCore) withCorrelationID(id string) contextCore {
	c.correlationID = id
	return c
}

func (c contextCore) withSource(source string) contextCore {
	c.source = source
	return c
}

func (c contextCore) appendEntry(key, value string, classification Classification) contextCore {
	c.metadata = c.metadata.With(key, value, classification)
	return c
}
