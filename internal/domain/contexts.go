package domain

import (
	"path"
	"sort"
	"strconv"
)

// The context variants below share all behavior through contextCore; each
// one only decides which domain fields it folds in and how they are
// classified. Operations, algorithms, components and other structural
// fields are public; paths, accounts and identifiers that can leak
// identity or location are private; raw error text is private or
// sensitive.

// CoreLogContext is the general-purpose context for subsystems without a
// dedicated variant.
type CoreLogContext struct {
	contextCore
}

func NewCoreLogContext(operation, category string, opts ContextOptions) CoreLogContext {
	return CoreLogContext{newContextCore("Core", operation, category, NewMetadataCollection(), opts)}
}

// WithComponent records the component that issued the log call.
func (c CoreLogContext) WithComponent(name string) CoreLogContext {
	c.contextCore = c.appendEntry("component", name, ClassificationPublic)
	return c
}

func (c CoreLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c CoreLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c CoreLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// CryptoLogContext describes cryptographic operations.
type CryptoLogContext struct {
	contextCore
}

func NewCryptoLogContext(operation, algorithm string, opts ContextOptions) CryptoLogContext {
	fields := NewMetadataCollection()
	if algorithm != "" {
		fields = fields.WithPublic("algorithm", algorithm)
	}
	return CryptoLogContext{newContextCore("Crypto", operation, "Security", fields, opts)}
}

// WithKeyIdentifier records which key was involved. Key identifiers can be
// correlated with stored material, so they stay private.
func (c CryptoLogContext) WithKeyIdentifier(id string) CryptoLogContext {
	c.contextCore = c.appendEntry("keyIdentifier", id, ClassificationPrivate)
	return c
}

// WithKeyStrength records the key size in bits.
func (c CryptoLogContext) WithKeyStrength(bits int) CryptoLogContext {
	c.contextCore = c.appendEntry("keyStrength", strconv.Itoa(bits), ClassificationPublic)
	return c
}

func (c CryptoLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c CryptoLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c CryptoLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// KeychainLogContext describes platform credential-store operations.
type KeychainLogContext struct {
	contextCore
}

func NewKeychainLogContext(operation, account string, opts ContextOptions) KeychainLogContext {
	fields := NewMetadataCollection()
	if account != "" {
		fields = fields.WithPrivate("account", account)
	}
	return KeychainLogContext{newContextCore("Keychain", operation, "Security", fields, opts)}
}

// WithServiceIdentifier records the keychain service the account belongs
// to.
func (c KeychainLogContext) WithServiceIdentifier(id string) KeychainLogContext {
	c.contextCore = c.appendEntry("serviceIdentifier", id, ClassificationPrivate)
	return c
}

func (c KeychainLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c KeychainLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c KeychainLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// ErrorLogContext describes a failure. The structural fields (type,
// domain, code) are public; the raw description is private because error
// text can embed payloads.
type ErrorLogContext struct {
	contextCore
}

func NewErrorLogContext(operation, errorType, errorDomain string, errorCode int, description string, opts ContextOptions) ErrorLogContext {
	fields := NewMetadataCollection()
	if errorType != "" {
		fields = fields.WithPublic("errorType", errorType)
	}
	if errorDomain != "" {
		fields = fields.WithPublic("errorDomain", errorDomain)
	}
	fields = fields.WithPublic("errorCode", strconv.Itoa(errorCode))
	if description != "" {
		fields = fields.WithPrivate("errorDescription", description)
	}
	return ErrorLogContext{newContextCore("Error", operation, "Error", fields, opts)}
}

// WithSensitiveDetails attaches diagnostic detail that must never render
// outside debug tooling.
func (c ErrorLogContext) WithSensitiveDetails(details string) ErrorLogContext {
	c.contextCore = c.appendEntry("errorDetails", details, ClassificationSensitive)
	return c
}

func (c ErrorLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c ErrorLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c ErrorLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// FileSystemLogContext describes file operations. The full path is always
// private; the bare file name is additionally exposed as public only when
// its extension is known to be harmless, trading a little leakage for
// debuggability.
type FileSystemLogContext struct {
	contextCore
}

// Extensions considered safe to expose as a public fileName entry.
var safeFileExtensions = map[string]bool{
	"":     true,
	".txt": true,
	".log": true,
}

func NewFileSystemLogContext(operation, filePath string, opts ContextOptions) FileSystemLogContext {
	fields := NewMetadataCollection()
	if filePath != "" {
		fields = fields.WithPrivate("path", filePath)
		if name := path.Base(filePath); name != "/" && name != "." && safeFileExtensions[path.Ext(name)] {
			fields = fields.WithPublic("fileName", name)
		}
	}
	return FileSystemLogContext{newContextCore("FileSystem", operation, "FileSystem", fields, opts)}
}

// WithFileSize records the size of the file in bytes.
func (c FileSystemLogContext) WithFileSize(bytes int64) FileSystemLogContext {
	c.contextCore = c.appendEntry("fileSize", strconv.FormatInt(bytes, 10), ClassificationPublic)
	return c
}

func (c FileSystemLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c FileSystemLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c FileSystemLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// SecurityLogContext describes security-relevant state transitions.
type SecurityLogContext struct {
	contextCore
}

func NewSecurityLogContext(operation, component string, opts ContextOptions) SecurityLogContext {
	fields := NewMetadataCollection()
	if component != "" {
		fields = fields.WithPublic("component", component)
	}
	return SecurityLogContext{newContextCore("Security", operation, "Security", fields, opts)}
}

// WithOutcome records whether the operation succeeded.
func (c SecurityLogContext) WithOutcome(success bool) SecurityLogContext {
	c.contextCore = c.appendEntry("success", strconv.FormatBool(success), ClassificationPublic)
	return c
}

func (c SecurityLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c SecurityLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c SecurityLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// SnapshotLogContext describes backup snapshot operations.
type SnapshotLogContext struct {
	contextCore
}

func NewSnapshotLogContext(operation, snapshotID string, opts ContextOptions) SnapshotLogContext {
	fields := NewMetadataCollection()
	if snapshotID != "" {
		fields = fields.WithPrivate("snapshotID", snapshotID)
	}
	return SnapshotLogContext{newContextCore("Snapshot", operation, "Backup", fields, opts)}
}

// WithFileCount records how many files the snapshot covers.
func (c SnapshotLogContext) WithFileCount(count int) SnapshotLogContext {
	c.contextCore = c.appendEntry("fileCount", strconv.Itoa(count), ClassificationPublic)
	return c
}

func (c SnapshotLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c SnapshotLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c SnapshotLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// MetadataValue pairs a value with a caller-chosen classification, used
// where a context accepts arbitrary per-field policy.
type MetadataValue struct {
	Value          string
	Classification Classification
}

// RepositoryLogContext describes repository operations. Beyond the
// repository identifier it accepts arbitrary additional metadata with
// per-field classifications; the map is folded in sorted key order so
// construction stays deterministic.
type RepositoryLogContext struct {
	contextCore
}

func NewRepositoryLogContext(operation, repositoryID string, additional map[string]MetadataValue, opts ContextOptions) RepositoryLogContext {
	fields := NewMetadataCollection()
	if repositoryID != "" {
		fields = fields.WithPrivate("repositoryID", repositoryID)
	}
	keys := make([]string, 0, len(additional))
	for key := range additional {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		v := additional[key]
		fields = fields.With(key, v.Value, v.Classification)
	}
	return RepositoryLogContext{newContextCore("Repository", operation, "Repository", fields, opts)}
}

func (c RepositoryLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c RepositoryLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c RepositoryLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}

// KeyManagementLogContext describes key lifecycle operations.
type KeyManagementLogContext struct {
	contextCore
}

func NewKeyManagementLogContext(operation, keyIdentifier string, opts ContextOptions) KeyManagementLogContext {
	fields := NewMetadataCollection()
	if keyIdentifier != "" {
		fields = fields.WithPrivate("keyIdentifier", keyIdentifier)
	}
	return KeyManagementLogContext{newContextCore("KeyManagement", operation, "Security", fields, opts)}
}

// WithAlgorithm records the algorithm the key is bound to.
func (c KeyManagementLogContext) WithAlgorithm(algorithm string) KeyManagementLogContext {
	c.contextCore = c.appendEntry("algorithm", algorithm, ClassificationPublic)
	return c
}

// WithState records the lifecycle state after the operation.
func (c KeyManagementLogContext) WithState(state string) KeyManagementLogContext {
	c.contextCore = c.appendEntry("state", state, ClassificationPublic)
	return c
}

func (c KeyManagementLogContext) WithUpdatedMetadata(more MetadataCollection) LogContext {
	c.contextCore = c.withMetadata(more)
	return c
}

func (c KeyManagementLogContext) WithCorrelationID(id string) LogContext {
	c.contextCore = c.withCorrelationID(id)
	return c
}

func (c KeyManagementLogContext) WithSource(source string) LogContext {
	c.contextCore = c.withSource(source)
	return c
}
