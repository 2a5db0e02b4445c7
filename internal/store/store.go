// Package store is the Persistent Store: a SQLite-backed repository for
// tracks, ingestion jobs, the play log, and the scheduler's key/value
// config, used by both the Scheduler and the Ingestion Worker.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arung-agamani/waveradio/internal/model"
)

// ErrNotFound is returned when a lookup by ID/key finds nothing.
var ErrNotFound = errors.New("store: not found")

// Store wraps the SQLite handle with the domain's query surface.
type Store struct {
	db *sql.DB
}

// New wraps an already-opened *sql.DB. Callers apply Migrate before use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need raw access,
// such as migration tooling or health checks.
func (s *Store) DB() *sql.DB { return s.db }

// --- tracks ---------------------------------------------------------------

// CreateTrack assigns a UUID, stamps SubmittedAt, and inserts a pending
// track row plus its associated job in a single transaction.
func (s *Store) CreateTrack(ctx context.Context, t *model.Track) (*model.Job, error) {
	t.ID = uuid.NewString()
	t.Status = model.TrackPending
	t.SubmittedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin create track: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tracks (id, title, artist, submitter, source_type, source_url, video_id, status, comment, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Artist, t.Submitter, string(t.SourceType), t.SourceURL, t.VideoID, string(t.Status), t.Comment, t.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert track: %w", err)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (track_id, status, created_at) VALUES (?, ?, ?)`,
		t.ID, string(model.JobPending), now,
	)
	if err != nil {
		return nil, fmt.Errorf("store: insert job: %w", err)
	}
	jobID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: job id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit create track: %w", err)
	}

	return &model.Job{ID: jobID, TrackID: t.ID, Status: model.JobPending, CreatedAt: now}, nil
}

func scanTrack(row interface{ Scan(...any) error }) (*model.Track, error) {
	var t model.Track
	var sourceType, status string
	if err := row.Scan(
		&t.ID, &t.Title, &t.Artist, &t.Submitter, &sourceType, &t.SourceURL, &t.VideoID,
		&t.FilePath, &t.Duration,
		&t.TempoBPM, &t.RMSEnergy, &t.SpectralCentroid, &t.ZeroCrossingRate,
		&status, &t.ErrorMsg, &t.Comment, &t.SubmittedAt, &t.ReadyAt,
	); err != nil {
		return nil, err
	}
	t.SourceType = model.SourceType(sourceType)
	t.Status = model.TrackStatus(status)
	return &t, nil
}

const trackColumns = `id, title, artist, submitter, source_type, source_url, video_id,
	file_path, duration, tempo_bpm, rms_energy, spectral_centroid, zero_crossing_rate,
	status, error_msg, comment, submitted_at, ready_at`

// columnsWithPrefix qualifies trackColumns with a table alias, for joins.
func columnsWithPrefix(alias string) string {
	cols := []string{"id", "title", "artist", "submitter", "source_type", "source_url", "video_id",
		"file_path", "duration", "tempo_bpm", "rms_energy", "spectral_centroid", "zero_crossing_rate",
		"status", "error_msg", "comment", "submitted_at", "ready_at"}
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += alias + "." + c
	}
	return out
}

// GetTrack fetches a single track by ID.
func (s *Store) GetTrack(ctx context.Context, id string) (*model.Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get track: %w", err)
	}
	return t, nil
}

// ListReadyTracks returns every track with status ready, the Scheduler's
// candidate pool.
func (s *Store) ListReadyTracks(ctx context.Context) ([]*model.Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE status = ?`, string(model.TrackReady))
	if err != nil {
		return nil, fmt.Errorf("store: list ready tracks: %w", err)
	}
	defer rows.Close()

	var out []*model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan ready track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountPendingOrProcessingForSubmitter counts a submitter's not-yet-ready,
// not-yet-failed tracks, used by the boundary to enforce the per-submitter
// pending-submission cap.
func (s *Store) CountPendingOrProcessingForSubmitter(ctx context.Context, submitter string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tracks
		WHERE submitter = ? AND status IN (?, ?)`,
		submitter, string(model.TrackPending), string(model.TrackProcessing),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count pending for submitter: %w", err)
	}
	return n, nil
}

// MarkTrackReady finalizes a track once the pipeline succeeds, including
// the title/artist the pipeline resolved (from ID3 tags or the
// downloader, whichever filled a blank the submitter left empty).
func (s *Store) MarkTrackReady(ctx context.Context, id, title, artist, filePath string, duration *float64, fv model.FeatureVector) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE tracks SET status = ?, title = ?, artist = ?, file_path = ?, duration = ?,
			tempo_bpm = ?, rms_energy = ?, spectral_centroid = ?, zero_crossing_rate = ?,
			ready_at = ?, error_msg = NULL
		WHERE id = ?`,
		string(model.TrackReady), title, artist, filePath, duration,
		fv.TempoBPM, fv.RMSEnergy, fv.SpectralCentroid, fv.ZeroCrossingRate,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("store: mark track ready: %w", err)
	}
	return nil
}

// setTrackStatus sets a track's status inside tx, used both when a job is
// claimed (processing) and when orphan recovery demotes it back to pending.
func (s *Store) setTrackStatus(ctx context.Context, tx *sql.Tx, id string, status model.TrackStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE tracks SET status = ? WHERE id = ?`, string(status), id)
	return err
}

// DeleteTrack removes a track and (via ON DELETE CASCADE) its jobs and
// play_log rows. Used by the admin boundary.
func (s *Store) DeleteTrack(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete track: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete track rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTrackComment lets the admin boundary edit a track's comment.
func (s *Store) UpdateTrackComment(ctx context.Context, id string, comment *string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tracks SET comment = ? WHERE id = ?`, comment, id)
	if err != nil {
		return fmt.Errorf("store: update comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update comment rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTracks returns every track regardless of status, for admin listing.
func (s *Store) ListTracks(ctx context.Context) ([]*model.Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list tracks: %w", err)
	}
	defer rows.Close()

	var out []*model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- jobs -------------------------------------------------------------

// ClaimNextJob atomically selects the oldest pending job, flips both the
// job and its track to processing, and stamps started_at. Returns
// ErrNotFound if the queue is empty.
func (s *Store) ClaimNextJob(ctx context.Context) (*model.Job, *model.Track, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("store: begin claim: %w", err)
	}
	defer tx.Rollback()

	var j model.Job
	var status string
	row := tx.QueryRowContext(ctx, `
		SELECT id, track_id, status, created_at, started_at, finished_at, error_msg
		FROM jobs WHERE status = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		string(model.JobPending))
	if err := row.Scan(&j.ID, &j.TrackID, &status, &j.CreatedAt, &j.StartedAt, &j.FinishedAt, &j.ErrorMsg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("store: claim select: %w", err)
	}
	j.Status = model.JobStatus(status)

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET status = ?, started_at = ? WHERE id = ?`,
		string(model.JobProcessing), now, j.ID); err != nil {
		return nil, nil, fmt.Errorf("store: claim update job: %w", err)
	}
	if err := s.setTrackStatus(ctx, tx, j.TrackID, model.TrackProcessing); err != nil {
		return nil, nil, fmt.Errorf("store: claim update track: %w", err)
	}

	trackRow := tx.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, j.TrackID)
	t, err := scanTrack(trackRow)
	if err != nil {
		return nil, nil, fmt.Errorf("store: claim fetch track: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("store: claim commit: %w", err)
	}

	j.Status = model.JobProcessing
	j.StartedAt = &now
	return &j, t, nil
}

// RecoverOrphanedJobs demotes every processing job (and its track) back to
// pending. Called once at Worker startup to recover from a crash mid-job.
func (s *Store) RecoverOrphanedJobs(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin recover: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id, track_id FROM jobs WHERE status = ?`, string(model.JobProcessing))
	if err != nil {
		return 0, fmt.Errorf("store: recover select: %w", err)
	}
	type orphan struct {
		id      int64
		trackID string
	}
	var orphans []orphan
	for rows.Next() {
		var o orphan
		if err := rows.Scan(&o.id, &o.trackID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("store: recover scan: %w", err)
		}
		orphans = append(orphans, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, o := range orphans {
		if _, err := tx.ExecContext(ctx, `UPDATE jobs SET status = ?, started_at = NULL WHERE id = ?`,
			string(model.JobPending), o.id); err != nil {
			return 0, fmt.Errorf("store: recover reset job: %w", err)
		}
		if err := s.setTrackStatus(ctx, tx, o.trackID, model.TrackPending); err != nil {
			return 0, fmt.Errorf("store: recover reset track: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: recover commit: %w", err)
	}
	return len(orphans), nil
}

// CompleteJob finalizes a successful pipeline run. In one transaction it
// marks the track ready (status, resolved title/artist, file_path,
// duration, feature vector) and the job done, so a crash between the two
// writes can never leave track=ready paired with job=processing (which
// RecoverOrphanedJobs would otherwise demote back to pending and
// reprocess, clobbering the finished asset).
func (s *Store) CompleteJob(ctx context.Context, jobID int64, trackID, title, artist, filePath string, duration *float64, fv model.FeatureVector) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin complete job: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE tracks SET status = ?, title = ?, artist = ?, file_path = ?, duration = ?,
			tempo_bpm = ?, rms_energy = ?, spectral_centroid = ?, zero_crossing_rate = ?,
			ready_at = ?, error_msg = NULL
		WHERE id = ?`,
		string(model.TrackReady), title, artist, filePath, duration,
		fv.TempoBPM, fv.RMSEnergy, fv.SpectralCentroid, fv.ZeroCrossingRate,
		now, trackID,
	); err != nil {
		return fmt.Errorf("store: complete job mark track ready: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET status = ?, finished_at = ? WHERE id = ?`,
		string(model.JobDone), now, jobID); err != nil {
		return fmt.Errorf("store: complete job update job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: complete job commit: %w", err)
	}
	return nil
}

// FailJob records a terminal pipeline failure. In one transaction it
// marks the track failed and the job failed with the same message, so
// track and job status never diverge on a crash between the two writes.
func (s *Store) FailJob(ctx context.Context, jobID int64, trackID, errMsg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin fail job: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE tracks SET status = ?, error_msg = ? WHERE id = ?`,
		string(model.TrackFailed), errMsg, trackID); err != nil {
		return fmt.Errorf("store: fail job mark track failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE jobs SET status = ?, finished_at = ?, error_msg = ? WHERE id = ?`,
		string(model.JobFailed), now, errMsg, jobID); err != nil {
		return fmt.Errorf("store: fail job update job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: fail job commit: %w", err)
	}
	return nil
}

// --- play log -----------------------------------------------------------

// AppendPlayEvent records the start of a track on the stream.
func (s *Store) AppendPlayEvent(ctx context.Context, trackID string) (*model.PlayEvent, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `INSERT INTO play_log (track_id, played_at) VALUES (?, ?)`, trackID, now)
	if err != nil {
		return nil, fmt.Errorf("store: append play event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: play event id: %w", err)
	}
	return &model.PlayEvent{ID: id, TrackID: trackID, PlayedAt: now}, nil
}

// MostRecentPlayEvent returns the latest play event across all tracks, or
// ErrNotFound if nothing has ever played.
func (s *Store) MostRecentPlayEvent(ctx context.Context) (*model.PlayEvent, error) {
	var pe model.PlayEvent
	err := s.db.QueryRowContext(ctx, `SELECT id, track_id, played_at FROM play_log ORDER BY id DESC LIMIT 1`).
		Scan(&pe.ID, &pe.TrackID, &pe.PlayedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: most recent play event: %w", err)
	}
	return &pe, nil
}

// MaxPlayEventID returns the highest play_log id, or 0 if the log is empty.
func (s *Store) MaxPlayEventID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM play_log`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: max play event id: %w", err)
	}
	return id.Int64, nil
}

// CountPlayEventsForSubmitterSince counts distinct play events after
// afterLogID whose track belongs to submitter, the rotation policy's
// per-block play quota.
func (s *Store) CountPlayEventsForSubmitterSince(ctx context.Context, submitter string, afterLogID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM play_log pl
		JOIN tracks t ON t.id = pl.track_id
		WHERE t.submitter = ? AND pl.id > ?`,
		submitter, afterLogID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count play events for submitter: %w", err)
	}
	return n, nil
}

// CountPlayEventsForTrackSince counts a single track's play events
// after afterLogID, used to tell whether a prefetched-but-unplayed pick
// already has a matching PlayEvent.
func (s *Store) CountPlayEventsForTrackSince(ctx context.Context, trackID string, afterLogID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM play_log WHERE track_id = ? AND id > ?`, trackID, afterLogID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count play events for track since: %w", err)
	}
	return n, nil
}

// MostRecentPlayTimePerTrack returns, for every track that has ever
// played, the timestamp of its most recent play. Used by the cooldown
// filter and the global-fallback least-recently-played ordering.
func (s *Store) MostRecentPlayTimePerTrack(ctx context.Context) (map[string]time.Time, error) {
	// Select the played_at column of each track's latest row rather than
	// MAX(played_at): an aggregate carries no DATETIME column type, so the
	// driver would return it as text that cannot be scanned into time.Time.
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, played_at FROM play_log pl
		WHERE id = (SELECT MAX(id) FROM play_log WHERE track_id = pl.track_id)`)
	if err != nil {
		return nil, fmt.Errorf("store: most recent play time per track: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var t time.Time
		if err := rows.Scan(&id, &t); err != nil {
			return nil, fmt.Errorf("store: scan play time: %w", err)
		}
		out[id] = t
	}
	return out, rows.Err()
}

// RecentlyPlayedTrackIDs returns the most recently played distinct
// track IDs, most recent first, up to limit. Feeds the mood policy's
// exclusion set.
func (s *Store) RecentlyPlayedTrackIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id FROM play_log GROUP BY track_id ORDER BY MAX(id) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recently played track ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan recent track id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// --- submitters & aggregates ---------------------------------------------

// DistinctReadySubmitters returns, in lexicographic order, every
// submitter with at least one ready track. Drives the rotation
// policy's submitter cycle.
func (s *Store) DistinctReadySubmitters(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT submitter FROM tracks WHERE status = ? ORDER BY submitter ASC`,
		string(model.TrackReady))
	if err != nil {
		return nil, fmt.Errorf("store: distinct ready submitters: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sub string
		if err := rows.Scan(&sub); err != nil {
			return nil, fmt.Errorf("store: scan submitter: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// ReadyTracksBySubmitter returns a submitter's ready tracks.
func (s *Store) ReadyTracksBySubmitter(ctx context.Context, submitter string) ([]*model.Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE status = ? AND submitter = ?`,
		string(model.TrackReady), submitter)
	if err != nil {
		return nil, fmt.Errorf("store: ready tracks by submitter: %w", err)
	}
	defer rows.Close()

	var out []*model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// --- config key/value -------------------------------------------------

// GetConfig returns the stored value for key and whether it was present.
func (s *Store) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get config %q: %w", key, err)
	}
	return v, true, nil
}

// SetConfig upserts a key/value pair.
func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("store: set config %q: %w", key, err)
	}
	return nil
}

// GetConfigFloat reads a numeric config value, returning ok=false if unset
// or unparsable.
func (s *Store) GetConfigFloat(ctx context.Context, key string) (float64, bool, error) {
	v, ok, err := s.GetConfig(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	var f float64
	if _, err := fmt.Sscanf(v, "%g", &f); err != nil {
		return 0, false, nil
	}
	return f, true, nil
}

// SetConfigFloat upserts a numeric config value.
func (s *Store) SetConfigFloat(ctx context.Context, key string, v float64) error {
	return s.SetConfig(ctx, key, fmt.Sprintf("%g", v))
}

// GetConfigInt64 reads an int64 config value, returning ok=false if unset
// or unparsable.
func (s *Store) GetConfigInt64(ctx context.Context, key string) (int64, bool, error) {
	v, ok, err := s.GetConfig(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	var n int64
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// SetConfigInt64 upserts an int64 config value.
func (s *Store) SetConfigInt64(ctx context.Context, key string, v int64) error {
	return s.SetConfig(ctx, key, fmt.Sprintf("%d", v))
}

// CountPlayEventsForTrack returns a track's all-time play count.
func (s *Store) CountPlayEventsForTrack(ctx context.Context, trackID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM play_log WHERE track_id = ?`, trackID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count play events for track: %w", err)
	}
	return n, nil
}

// ReadyTracksWithFeatures returns ready tracks that have all four
// feature scalars populated. Forms the mood policy's candidate pool.
func (s *Store) ReadyTracksWithFeatures(ctx context.Context) ([]*model.Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks
		WHERE status = ? AND tempo_bpm IS NOT NULL AND rms_energy IS NOT NULL
			AND spectral_centroid IS NOT NULL AND zero_crossing_rate IS NOT NULL`,
		string(model.TrackReady))
	if err != nil {
		return nil, fmt.Errorf("store: ready tracks with features: %w", err)
	}
	defer rows.Close()

	var out []*model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan track: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LastPlayedTrackWithFeatures returns the track of the most recent
// PlayEvent whose track has a complete feature vector, or ErrNotFound if
// no such play event exists.
func (s *Store) LastPlayedTrackWithFeatures(ctx context.Context) (*model.Track, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+columnsWithPrefix("t")+` FROM play_log pl
		JOIN tracks t ON t.id = pl.track_id
		WHERE t.tempo_bpm IS NOT NULL AND t.rms_energy IS NOT NULL
			AND t.spectral_centroid IS NOT NULL AND t.zero_crossing_rate IS NOT NULL
		ORDER BY pl.id DESC LIMIT 1`)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: last played track with features: %w", err)
	}
	return t, nil
}

// GetConfigInt reads an integer config value, returning ok=false if unset
// or unparsable.
func (s *Store) GetConfigInt(ctx context.Context, key string) (int, bool, error) {
	v, ok, err := s.GetConfig(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, false, nil
	}
	return n, true, nil
}

// SetConfigInt upserts an integer config value.
func (s *Store) SetConfigInt(ctx context.Context, key string, v int) error {
	return s.SetConfig(ctx, key, fmt.Sprintf("%d", v))
}
