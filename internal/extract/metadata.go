package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clipcatch/pkg/models"
)

// rawInfo mirrors the subset of the extractor's JSON output we consume.
type rawInfo struct {
	Title     string      `json:"title"`
	Uploader  string      `json:"uploader"`
	Creator   string      `json:"creator"`
	Duration  float64     `json:"duration"`
	Thumbnail string      `json:"thumbnail"`
	Formats   []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID       string `json:"format_id"`
	Ext            string `json:"ext"`
	Height         int    `json:"height"`
	FormatNote     string `json:"format_note"`
	Vcodec         string `json:"vcodec"`
	Acodec         string `json:"acodec"`
	Filesize       int64  `json:"filesize"`
	FilesizeApprox int64  `json:"filesize_approx"`
}

// mapMetadata converts extractor JSON into MediaMetadata. All defaulting
// happens here, once: downstream stages never patch metadata afterwards.
func mapMetadata(data []byte) (*models.MediaMetadata, error) {
	var info rawInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unparseable backend response: %w", err)
	}

	meta := &models.MediaMetadata{
		Title:        strings.TrimSpace(info.Title),
		Creator:      creatorOf(info),
		Duration:     int(info.Duration),
		ThumbnailURL: info.Thumbnail,
	}
	if meta.Title == "" {
		meta.Title = syntheticTitle(time.Now())
	}

	hasAudio := false
	for _, rf := range info.Formats {
		f, ok := mapFormat(rf)
		if !ok {
			continue
		}
		if f.IsAudio {
			hasAudio = true
		}
		meta.Formats = append(meta.Formats, f)
	}

	if !hasAudio {
		if f, ok := synthesizeAudio(info.Formats); ok {
			meta.Formats = append(meta.Formats, f)
		}
	}

	// Downstream resolution never operates on an empty set.
	if len(meta.Formats) == 0 {
		meta.Formats = []models.StreamFormat{{
			FormatID:     "best",
			Ext:          "mp4",
			QualityLabel: "best",
		}}
	}

	return meta, nil
}

func mapFormat(rf rawFormat) (models.StreamFormat, bool) {
	hasVideo := rf.Vcodec != "" && rf.Vcodec != "none"
	hasAudio := rf.Acodec != "" && rf.Acodec != "none"

	// Storyboard/subtitle pseudo-formats carry neither stream.
	if !hasVideo && !hasAudio {
		return models.StreamFormat{}, false
	}

	f := models.StreamFormat{
		FormatID: rf.FormatID,
		Ext:      rf.Ext,
		Height:   rf.Height,
		IsAudio:  !hasVideo,
		Filesize: rf.Filesize,
	}
	if f.Filesize == 0 {
		f.Filesize = rf.FilesizeApprox
	}
	if f.Ext == "" {
		f.Ext = "mp4"
	}
	if f.IsAudio {
		f.Height = 0
	}

	switch {
	case rf.FormatNote != "":
		f.QualityLabel = rf.FormatNote
	case f.IsAudio:
		f.QualityLabel = "audio"
	case f.Height > 0:
		f.QualityLabel = fmt.Sprintf("%dp", f.Height)
	default:
		f.QualityLabel = "unknown"
	}

	return f, true
}

// synthesizeAudio derives an audio StreamFormat from the best
// audio-capable stream when the backend exposes none directly.
func synthesizeAudio(formats []rawFormat) (models.StreamFormat, bool) {
	var best rawFormat
	found := false
	for _, rf := range formats {
		if rf.Acodec == "" || rf.Acodec == "none" {
			continue
		}
		if !found || rf.Height > best.Height {
			best = rf
			found = true
		}
	}
	if !found {
		return models.StreamFormat{}, false
	}

	return models.StreamFormat{
		FormatID:     best.FormatID,
		Ext:          "m4a",
		QualityLabel: "audio",
		IsAudio:      true,
		Filesize:     best.Filesize,
	}, true
}

func creatorOf(info rawInfo) string {
	if info.Uploader != "" {
		return info.Uploader
	}
	return info.Creator
}

// syntheticTitle generates a stable placeholder for media without a title.
func syntheticTitle(now time.Time) string {
	return "media-" + now.Format("20060102-150405")
}
