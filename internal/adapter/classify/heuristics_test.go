package classify

import (
	"testing"

	"github.com/quillsec/privlog/internal/domain"
)

func TestDefaultClassifier(t *testing.T) {
	classifier := Default()

	tests := []struct {
		name  string
		key   string
		value string
		want  domain.Classification
	}{
		{"secret key name wins over content", "api_key", "plain", domain.ClassificationSensitive},
		{"password key", "userPassword", "hunter2", domain.ClassificationSensitive},
		{"email value", "contact", "a@example.com", domain.ClassificationPrivate},
		{"ip value", "peer", "10.0.0.1", domain.ClassificationPrivate},
		{"path value", "target", "/Users/a/notes.txt", domain.ClassificationPrivate},
		{"benign value", "attempt", "3", domain.ClassificationPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.Classify(tt.key, tt.value); got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

func TestClassifier_CustomChainOrder(t *testing.T) {
	classifier := NewClassifier(
		Heuristic{
			Name:           "everything-private",
			Applies:        func(key, value string) bool { return true },
			Classification: domain.ClassificationPrivate,
		},
		Heuristic{
			Name:           "never-reached",
			Applies:        func(key, value string) bool { return true },
			Classification: domain.ClassificationPublic,
		},
	)

	if got := classifier.Classify("k", "v"); got != domain.ClassificationPrivate {
		t.Errorf("first applying heuristic did not win: got %q", got)
	}
}

func TestClassifier_IntegratesWithProjection(t *testing.T) {
	m := domain.NewMetadataCollection().WithAuto("email", "a@example.com")
	projected := m.ToPrivacyProjection(domain.RenderRelease, Default().Func())
	if projected["email"] != domain.RedactedPlaceholder {
		t.Errorf("auto email rendered %q in release, want %q", projected["email"], domain.RedactedPlaceholder)
	}
}
