package models

// StreamFormat represents one concrete encoded variant of a media item.
// All fields are always present; absent backend values are defaulted at
// construction so callers never need existence checks.
type StreamFormat struct {
	FormatID     string `json:"formatId"`
	Ext          string `json:"ext"`
	Height       int    `json:"height"` // 0 for audio-only streams
	QualityLabel string `json:"qualityLabel"`
	IsAudio      bool   `json:"isAudio"`
	Filesize     int64  `json:"filesize"` // estimated, 0 if unknown
}

// MediaMetadata represents descriptive info and available encodings for a URL
type MediaMetadata struct {
	Title        string         `json:"title"`
	Creator      string         `json:"creator"`
	Duration     int            `json:"duration"` // seconds
	ThumbnailURL string         `json:"thumbnailUrl"`
	Formats      []StreamFormat `json:"formats"`
}

// Clone returns a deep copy so one job's metadata can never be mutated
// through another caller's view.
func (m *MediaMetadata) Clone() MediaMetadata {
	out := *m
	out.Formats = make([]StreamFormat, len(m.Formats))
	copy(out.Formats, m.Formats)
	return out
}
