package destination

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/quillsec/privlog/internal/domain"
)

func TestNew_BuildsConfiguredTypes(t *testing.T) {
	deps := Dependencies{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	mem, err := New(domain.DestinationConfig{
		Identifier: "m", Parameters: map[string]string{"type": "memory"},
	}, deps)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if mem.Identifier() != "m" {
		t.Errorf("identifier = %q", mem.Identifier())
	}

	f, err := New(domain.DestinationConfig{
		Identifier: "f",
		Parameters: map[string]string{"type": "file", "directory": t.TempDir()},
	}, deps)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if f.Identifier() != "f" {
		t.Errorf("identifier = %q", f.Identifier())
	}
}

func TestNew_RejectsBadParameters(t *testing.T) {
	deps := Dependencies{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	cases := []struct {
		name string
		cfg  domain.DestinationConfig
		want error
	}{
		{
			"unknown type",
			domain.DestinationConfig{Identifier: "x", Parameters: map[string]string{"type": "carrier-pigeon"}},
			domain.ErrInvalidConfiguration,
		},
		{
			"file without directory",
			domain.DestinationConfig{Identifier: "x", Parameters: map[string]string{"type": "file"}},
			domain.ErrInvalidConfiguration,
		},
		{
			"postgres without connection",
			domain.DestinationConfig{Identifier: "x", Parameters: map[string]string{"type": "postgres"}},
			domain.ErrInitializationFailed,
		},
		{
			"redis without connection",
			domain.DestinationConfig{Identifier: "x", Parameters: map[string]string{"type": "redis"}},
			domain.ErrInitializationFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg, deps); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}
