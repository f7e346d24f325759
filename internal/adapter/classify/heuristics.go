// Package classify provides content heuristics for auto-classified
// metadata. The heuristic set is deliberately pluggable: callers compose
// their own chain or take the default one.
package classify

import (
	"regexp"
	"strings"

	"github.com/quillsec/privlog/internal/domain"
)

// Heuristic inspects a key/value pair and proposes a classification.
type Heuristic struct {
	Name           string
	Applies        func(key, value string) bool
	Classification domain.Classification
}

// Classifier resolves auto-classified values by running heuristics in
// order; the first one that applies wins. When none applies the value is
// treated as public — the caller opted into auto classification for data
// it believes is benign, and the heuristics exist to catch the exceptions.
type Classifier struct {
	heuristics []Heuristic
}

func NewClassifier(heuristics ...Heuristic) *Classifier {
	return &Classifier{heuristics: heuristics}
}

// Classify implements domain.AutoClassifier.
func (c *Classifier) Classify(key, value string) domain.Classification {
	for _, h := range c.heuristics {
		if h.Applies(key, value) {
			return h.Classification
		}
	}
	return domain.ClassificationPublic
}

// Func adapts the classifier to the domain.AutoClassifier signature.
func (c *Classifier) Func() domain.AutoClassifier {
	return c.Classify
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	ipPattern    = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
)

var secretKeyHints = []string{"password", "secret", "token", "credential", "apikey", "api_key", "passphrase"}

// Default returns the standard heuristic chain: secret-looking keys are
// sensitive; emails, IP addresses and filesystem paths are private;
// everything else stays public.
func Default() *Classifier {
	return NewClassifier(
		Heuristic{
			Name: "secret-key-name",
			Applies: func(key, value string) bool {
				lower := strings.ToLower(key)
				for _, hint := range secretKeyHints {
					if strings.Contains(lower, hint) {
						return true
					}
				}
				return false
			},
			Classification: domain.ClassificationSensitive,
		},
		Heuristic{
			Name: "email",
			Applies: func(key, value string) bool {
				return emailPattern.MatchString(value)
			},
			Classification: domain.ClassificationPrivate,
		},
		Heuristic{
			Name: "ip-address",
			Applies: func(key, value string) bool {
				return ipPattern.MatchString(value)
			},
			Classification: domain.ClassificationPrivate,
		},
		Heuristic{
			Name: "filesystem-path",
			Applies: func(key, value string) bool {
				return strings.HasPrefix(value, "/") && strings.Count(value, "/") >= 2
			},
			Classification: domain.ClassificationPrivate,
		},
	)
}
