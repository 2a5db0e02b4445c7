package store

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	artist             TEXT NOT NULL,
	submitter          TEXT NOT NULL,
	source_type        TEXT NOT NULL,
	source_url         TEXT NOT NULL DEFAULT '',
	video_id           TEXT NOT NULL DEFAULT '',
	file_path          TEXT,
	duration           REAL,
	tempo_bpm          REAL,
	rms_energy         REAL,
	spectral_centroid  REAL,
	zero_crossing_rate REAL,
	status             TEXT NOT NULL,
	error_msg          TEXT,
	comment            TEXT,
	submitted_at       DATETIME NOT NULL,
	ready_at           DATETIME
);

CREATE INDEX IF NOT EXISTS idx_tracks_status ON tracks(status);
CREATE INDEX IF NOT EXISTS idx_tracks_submitter ON tracks(submitter);

CREATE TABLE IF NOT EXISTS jobs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	track_id    TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	status      TEXT NOT NULL,
	created_at  DATETIME NOT NULL,
	started_at  DATETIME,
	finished_at DATETIME,
	error_msg   TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
CREATE INDEX IF NOT EXISTS idx_jobs_track_id ON jobs(track_id);

CREATE TABLE IF NOT EXISTS play_log (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	track_id  TEXT NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
	played_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_play_log_played_at ON play_log(played_at DESC);
CREATE INDEX IF NOT EXISTS idx_play_log_track_id ON play_log(track_id);

CREATE TABLE IF NOT EXISTS config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// Migrate applies the schema idempotently. Safe to call on every startup.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schema)
	return err
}
