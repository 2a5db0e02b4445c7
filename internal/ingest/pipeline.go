package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/arung-agamani/waveradio/config"
)

// allowedUploadExtensions is probed in order when locating an upload's raw
// file on disk. The submission boundary writes the file as
// <uploadDir>/<trackID>.<ext> using whichever extension the original
// upload carried.
var allowedUploadExtensions = []string{".mp3", ".wav", ".flac", ".m4a", ".ogg", ".aac"}

// Pipeline is the Media Pipeline: Fetch resolves raw audio for a track
// (upload or youtube), Transcode normalizes it to the canonical MP3.
type Pipeline struct {
	cfg *config.Config
}

// NewPipeline builds a Pipeline bound to the given configuration.
func NewPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// FetchUpload locates the raw file an upload submission already wrote to
// disk, probing allowed extensions. It never touches title/artist beyond
// filling blanks from embedded tags.
func (p *Pipeline) FetchUpload(trackID, title, artist string) (rawPath, resolvedTitle, resolvedArtist string, err error) {
	for _, ext := range allowedUploadExtensions {
		candidate := filepath.Join(p.cfg.UploadDir, trackID+ext)
		if _, statErr := os.Stat(candidate); statErr == nil {
			rawPath = candidate
			break
		}
	}
	if rawPath == "" {
		return "", "", "", fmt.Errorf("ingest: no raw upload found for track %s", trackID)
	}

	resolvedTitle, resolvedArtist = title, artist
	if resolvedTitle == "" || resolvedArtist == "" {
		if f, openErr := os.Open(rawPath); openErr == nil {
			if meta, tagErr := tag.ReadFrom(f); tagErr == nil {
				if resolvedTitle == "" && meta.Title() != "" {
					resolvedTitle = meta.Title()
				}
				if resolvedArtist == "" && meta.Artist() != "" {
					resolvedArtist = meta.Artist()
				}
			}
			f.Close()
		}
	}
	return rawPath, resolvedTitle, resolvedArtist, nil
}

// FetchYouTube invokes the external downloader to pull a remote video's
// audio track, returning its inferred title, uploader (used as artist),
// and the raw file path it was saved to.
func (p *Pipeline) FetchYouTube(ctx context.Context, videoID, trackID string) (title, artist, rawPath string, err error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.DownloadTimeout)
	defer cancel()

	outTemplate := filepath.Join(p.cfg.UploadDir, trackID+".%(ext)s")
	videoURL := "https://www.youtube.com/watch?v=" + videoID

	cmd := exec.CommandContext(ctx, p.cfg.YtDlpPath,
		"-x", "--audio-format", "mp3",
		"--print", "after_move:%(title)s\t%(uploader)s",
		"-o", outTemplate,
		videoURL,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", "", "", fmt.Errorf("ingest: yt-dlp failed: %w: %s", err, tailBytes(stderr.Bytes(), 500))
	}

	line := strings.TrimSpace(stdout.String())
	parts := strings.SplitN(line, "\t", 2)
	if len(parts) == 2 {
		title, artist = parts[0], parts[1]
	}

	rawPath = filepath.Join(p.cfg.UploadDir, trackID+".mp3")
	if _, statErr := os.Stat(rawPath); statErr != nil {
		return "", "", "", fmt.Errorf("ingest: yt-dlp reported success but output missing: %w", statErr)
	}
	return title, artist, rawPath, nil
}

// Transcode invokes ffmpeg to produce the canonical normalized asset: MP3,
// 128 kbps CBR, 44.1 kHz, stereo, with the track ID embedded as an
// ID3v2.3 comment. The raw file is unlinked on success.
func (p *Pipeline) Transcode(ctx context.Context, rawPath, trackID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.TranscodeTimeout)
	defer cancel()

	finalPath := filepath.Join(p.cfg.LibraryDir, trackID+".mp3")
	if err := os.MkdirAll(p.cfg.LibraryDir, 0o755); err != nil {
		return "", fmt.Errorf("ingest: create library dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.cfg.FFmpegPath,
		"-y", "-i", rawPath,
		"-vn",
		"-ar", "44100",
		"-ac", "2",
		"-b:a", "128k",
		"-id3v2_version", "3",
		"-metadata", "comment="+trackID,
		finalPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ingest: ffmpeg transcode failed: %w: %s", err, tailBytes(stderr.Bytes(), 500))
	}

	if err := os.Remove(rawPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("ingest: unlink raw file: %w", err)
	}
	return finalPath, nil
}

// tailBytes returns the last n bytes of b, so stderr captured from a
// failed subprocess doesn't balloon a job's stored error text.
func tailBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
