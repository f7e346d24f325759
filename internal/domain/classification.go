package domain

// Classification tags a piece of logged data with its privacy sensitivity.
// The tag controls how the value is rendered when an entry leaves the
// process boundary.
type Classification string

const (
	// ClassificationPublic values are safe to display in any build.
	ClassificationPublic Classification = "public"
	// ClassificationPrivate values are visible in debug builds and
	// redacted in release builds.
	ClassificationPrivate Classification = "private"
	// ClassificationSensitive values are redacted in every build.
	ClassificationSensitive Classification = "sensitive"
	// ClassificationHash values are replaced with a one-way digest.
	ClassificationHash Classification = "hash"
	// ClassificationAuto defers the decision to content heuristics at
	// render time.
	ClassificationAuto Classification = "auto"
)

// Legacy aliases kept for configuration backward compatibility. They are
// normalized away and never stored as first-class values.
const (
	classificationLegacyProtected Classification = "protected"
	classificationLegacyNever     Classification = "never"
)

// Normalized maps legacy aliases onto their first-class equivalents and
// maps any unrecognized value to private. Failing toward redaction means a
// typo in a classification can hide data but never expose it.
func (c Classification) Normalized() Classification {
	switch c {
	case ClassificationPublic, ClassificationPrivate, ClassificationSensitive,
		ClassificationHash, ClassificationAuto:
		return c
	case classificationLegacyProtected:
		return ClassificationPrivate
	case classificationLegacyNever:
		return ClassificationPublic
	}
	return ClassificationPrivate
}

// IsValid reports whether c is a first-class classification or a known
// legacy alias.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationPublic, ClassificationPrivate, ClassificationSensitive,
		ClassificationHash, ClassificationAuto,
		classificationLegacyProtected, classificationLegacyNever:
		return true
	}
	return false
}
