package model

// ProgrammingMode selects which Scheduler policy is active.
type ProgrammingMode string

const (
	ModeRotation ProgrammingMode = "rotation"
	ModeMood     ProgrammingMode = "mood"
)

// Enumerated Config keys. Stored as text in the config table; callers
// marshal/unmarshal the typed value themselves.
const (
	KeyProgrammingMode          = "programming_mode"
	KeyRotationTracksPerBlock   = "rotation_tracks_per_block"
	KeyRotationCurrentIdx       = "rotation_current_submitter_idx"
	KeyRotationBlockStartLogID  = "rotation_block_start_log_id"
	KeyLastReturnedTrackID      = "last_returned_track_id"
)

// FeatureMinKey and FeatureMaxKey return the config keys for the running
// min and max bound of the given feature name ("tempo_bpm", "rms_energy", "spectral_centroid",
// "zero_crossing_rate").
func FeatureMinKey(feature string) string { return "feature_min_" + feature }
func FeatureMaxKey(feature string) string { return "feature_max_" + feature }

// FeatureNames is the fixed ordering of the 4-tuple feature vector.
var FeatureNames = []string{"tempo_bpm", "rms_energy", "spectral_centroid", "zero_crossing_rate"}
