// Package model holds the core persistent types shared by the store,
// scheduler, and ingestion worker: Track, Job, PlayEvent, and the
// enumerated Config keys.
package model

import "time"

// SourceType identifies where a track's raw audio came from.
type SourceType string

const (
	SourceUpload  SourceType = "upload"
	SourceYouTube SourceType = "youtube"
)

// TrackStatus is the lifecycle state of a Track.
type TrackStatus string

const (
	TrackPending    TrackStatus = "pending"
	TrackProcessing TrackStatus = "processing"
	TrackReady      TrackStatus = "ready"
	TrackFailed     TrackStatus = "failed"
)

// Track is a single submitted song, from raw submission through to a
// normalized, feature-extracted, playable asset.
type Track struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Artist     string     `json:"artist"`
	Submitter  string     `json:"submitter"`
	SourceType SourceType `json:"sourceType"`
	SourceURL  string     `json:"sourceUrl,omitempty"` // empty for uploads
	VideoID    string     `json:"videoId,omitempty"`   // youtube video id, empty for uploads

	FilePath *string  `json:"filePath,omitempty"` // set once transcoded
	Duration *float64 `json:"duration,omitempty"`

	TempoBPM         *float64 `json:"tempoBpm,omitempty"`
	RMSEnergy        *float64 `json:"rmsEnergy,omitempty"`
	SpectralCentroid *float64 `json:"spectralCentroid,omitempty"`
	ZeroCrossingRate *float64 `json:"zeroCrossingRate,omitempty"`

	Status      TrackStatus `json:"status"`
	ErrorMsg    *string     `json:"errorMsg,omitempty"`
	Comment     *string     `json:"comment,omitempty"`
	SubmittedAt time.Time   `json:"submittedAt"`
	ReadyAt     *time.Time  `json:"readyAt,omitempty"`
}

// Features returns the track's 4-tuple feature vector and whether all four
// scalars are present.
func (t *Track) Features() (tempo, rms, centroid, zcr float64, ok bool) {
	if t.TempoBPM == nil || t.RMSEnergy == nil || t.SpectralCentroid == nil || t.ZeroCrossingRate == nil {
		return 0, 0, 0, 0, false
	}
	return *t.TempoBPM, *t.RMSEnergy, *t.SpectralCentroid, *t.ZeroCrossingRate, true
}

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// Job is a single unit of ingestion work tracking one Track through the
// pipeline.
type Job struct {
	ID         int64      `json:"id"`
	TrackID    string     `json:"trackId"`
	Status     JobStatus  `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	ErrorMsg   *string    `json:"errorMsg,omitempty"`
}

// PlayEvent is an append-only record marking the start of a track on the
// stream.
type PlayEvent struct {
	ID       int64     `json:"id"`
	TrackID  string    `json:"trackId"`
	PlayedAt time.Time `json:"playedAt"`
}

// FeatureVector is the fixed-order 4-tuple the Feature Extractor produces.
type FeatureVector struct {
	TempoBPM         float64 `json:"tempoBpm"`
	RMSEnergy        float64 `json:"rmsEnergy"`
	SpectralCentroid float64 `json:"spectralCentroid"`
	ZeroCrossingRate float64 `json:"zeroCrossingRate"`
}
