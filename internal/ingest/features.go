package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/arung-agamani/waveradio/config"
	"github.com/arung-agamani/waveradio/internal/model"
)

// FeatureExtractor is a pure function from a normalized audio file to a
// 4-tuple audio feature vector, delegated to an external analysis
// process (harmonic/percussive separation, tempo/RMS/centroid/ZCR).
type FeatureExtractor struct {
	cfg *config.Config
}

// NewFeatureExtractor builds a FeatureExtractor bound to the given
// configuration.
func NewFeatureExtractor(cfg *config.Config) *FeatureExtractor {
	return &FeatureExtractor{cfg: cfg}
}

type featureExtractorOutput struct {
	TempoBPM         float64 `json:"tempo_bpm"`
	RMSEnergy        float64 `json:"rms_energy"`
	SpectralCentroid float64 `json:"spectral_centroid"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
}

// Extract invokes the feature-extractor binary on path, which is trusted
// to load <=120s of mono audio and emit a single JSON object on stdout
// with tempo_bpm, rms_energy, spectral_centroid, and zero_crossing_rate.
func (fe *FeatureExtractor) Extract(ctx context.Context, path string) (model.FeatureVector, error) {
	ctx, cancel := context.WithTimeout(ctx, fe.cfg.FeatureTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, fe.cfg.FeatureExtractorPath, path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return model.FeatureVector{}, fmt.Errorf("ingest: feature extractor failed: %w: %s", err, tailBytes(stderr.Bytes(), 500))
	}

	var out featureExtractorOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return model.FeatureVector{}, fmt.Errorf("ingest: feature extractor output unparsable: %w", err)
	}

	return model.FeatureVector{
		TempoBPM:         out.TempoBPM,
		RMSEnergy:        out.RMSEnergy,
		SpectralCentroid: out.SpectralCentroid,
		ZeroCrossingRate: out.ZeroCrossingRate,
	}, nil
}
