package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/arung-agamani/waveradio/config"
)

// Prober queries the duration of a transcoded asset via ffprobe.
type Prober struct {
	cfg *config.Config
}

// NewProber builds a Prober bound to the given configuration.
func NewProber(cfg *config.Config) *Prober {
	return &Prober{cfg: cfg}
}

// Duration returns the asset's duration in seconds. A report of 0 is
// treated as "unknown" (ok=false), not zero.
func (pr *Prober) Duration(ctx context.Context, path string) (seconds float64, ok bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, pr.cfg.TranscodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, pr.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, false, fmt.Errorf("ingest: ffprobe failed: %w: %s", err, tailBytes(stderr.Bytes(), 500))
	}

	raw := strings.TrimSpace(stdout.String())
	d, parseErr := strconv.ParseFloat(raw, 64)
	if parseErr != nil {
		return 0, false, fmt.Errorf("ingest: ffprobe output unparsable: %q: %w", raw, parseErr)
	}
	if d <= 0 {
		return 0, false, nil
	}
	return d, true, nil
}
