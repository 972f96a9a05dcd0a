package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
)

// Prober asks ffprobe for the duration of an input media file. The total
// duration is what turns streamed out_time markers into a percentage.
type Prober struct {
	bin string
}

func NewProber(bin string) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{bin: bin}
}

// Duration returns the media duration in seconds. Any probing failure,
// including an unparsable value such as "N/A", is fatal for the job.
func (p *Prober) Duration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, errors.ProbeFailure(inputPath, err).WithField("stderr", strings.TrimSpace(stderr.String()))
	}

	out := strings.TrimSpace(stdout.String())
	duration, err := strconv.ParseFloat(out, 64)
	if err != nil || duration <= 0 {
		return 0, errors.ProbeFailure(inputPath, errors.Newf(errors.CodeProbeFailure, "unusable duration %q", out))
	}

	return duration, nil
}
