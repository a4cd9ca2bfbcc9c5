package models

import "time"

// JobRequest represents a caller-submitted fetch/convert order for one URL.
// It is immutable once the engine admits it.
type JobRequest struct {
	URL             string `json:"url"`
	Quality         string `json:"quality"`
	AudioOnly       bool   `json:"audioOnly"`
	RemoveWatermark bool   `json:"removeWatermark"`
	OutputTemplate  string `json:"outputTemplate"`
	Overwrite       bool   `json:"overwrite"`
}

// JobState represents the current stage of an admitted job
type JobState int

const (
	StatePending JobState = iota
	StateFetchingMetadata
	StateDownloading
	StateConverting
	StateCompleted
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFetchingMetadata:
		return "fetching_metadata"
	case StateDownloading:
		return "downloading"
	case StateConverting:
		return "converting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is a final one.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// DownloadRecord represents the persisted outcome of a completed job
type DownloadRecord struct {
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}
