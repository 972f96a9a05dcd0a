package render

import (
	"context"
	"runtime"
	"testing"

	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
)

func newStubProber(t *testing.T, script string) *Prober {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("probe stubs require a POSIX shell")
	}
	return NewProber(writeStub(t, t.TempDir(), "ffprobe", script))
}

func TestProbeDuration(t *testing.T) {
	p := newStubProber(t, `echo "12.345000"`)

	d, err := p.Duration(context.Background(), "/tmp/in.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 12.345 {
		t.Errorf("expected 12.345, got %v", d)
	}
}

func TestProbeNonZeroExit(t *testing.T) {
	p := newStubProber(t, `echo "corrupt input" >&2; exit 1`)

	_, err := p.Duration(context.Background(), "/tmp/in.mp4")
	if !errors.IsCode(err, errors.CodeProbeFailure) {
		t.Fatalf("expected PROBE_FAILURE, got %v", err)
	}
}

func TestProbeUnusableOutput(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"not available", `echo "N/A"`},
		{"empty", `true`},
		{"zero duration", `echo "0.000000"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newStubProber(t, tt.script)
			_, err := p.Duration(context.Background(), "/tmp/in.mp4")
			if !errors.IsCode(err, errors.CodeProbeFailure) {
				t.Fatalf("expected PROBE_FAILURE, got %v", err)
			}
		})
	}
}

func TestProbeDefaultBinary(t *testing.T) {
	p := NewProber("")
	if p.bin != "ffprobe" {
		t.Errorf("expected PATH lookup fallback, got %s", p.bin)
	}
}
