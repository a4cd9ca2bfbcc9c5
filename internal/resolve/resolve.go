package resolve

import (
	"strconv"
	"strings"

	"clipcatch/pkg/models"
)

// Sentinel format IDs understood by the extraction backend.
const (
	BestFormatID      = "best"
	BestAudioFormatID = "bestaudio"
)

// labelHeights maps well-known quality labels to pixel heights.
var labelHeights = map[string]int{
	"144p":  144,
	"240p":  240,
	"360p":  360,
	"480p":  480,
	"540p":  540,
	"720p":  720,
	"1080p": 1080,
	"1440p": 1440,
	"2160p": 2160,
	"hd":    720,
	"fhd":   1080,
	"4k":    2160,
}

// BestVideo returns the sentinel format used when no concrete video
// format can be matched.
func BestVideo() models.StreamFormat {
	return models.StreamFormat{
		FormatID:     BestFormatID,
		Ext:          "mp4",
		QualityLabel: "best",
	}
}

// BestAudio returns the sentinel format used when no audio stream is
// listed in the metadata.
func BestAudio() models.StreamFormat {
	return models.StreamFormat{
		FormatID:     BestAudioFormatID,
		Ext:          "m4a",
		QualityLabel: "best audio",
		IsAudio:      true,
	}
}

// Pick selects a stream format for the requested quality. It always
// returns a usable candidate: absent an exact match it picks the format
// with minimal height distance, and on an empty candidate set it falls
// back to a sentinel. It never fails.
func Pick(formats []models.StreamFormat, quality string, audioOnly bool) models.StreamFormat {
	if audioOnly {
		for _, f := range formats {
			if f.IsAudio {
				return f
			}
		}
		return BestAudio()
	}

	video := make([]models.StreamFormat, 0, len(formats))
	for _, f := range formats {
		if !f.IsAudio {
			video = append(video, f)
		}
	}
	if len(video) == 0 {
		return BestVideo()
	}

	quality = strings.ToLower(strings.TrimSpace(quality))

	// No preference means the highest available stream.
	if quality == "" {
		best := video[0]
		for _, f := range video[1:] {
			if f.Height > best.Height {
				best = f
			}
		}
		return best
	}

	for _, f := range video {
		if strings.ToLower(f.QualityLabel) == quality {
			return f
		}
	}

	// Nearest height match. Ties are broken by metadata order.
	target := labelHeight(quality)
	best := video[0]
	bestDist := heightDist(best.Height, target)
	for _, f := range video[1:] {
		if d := heightDist(f.Height, target); d < bestDist {
			best = f
			bestDist = d
		}
	}
	return best
}

// labelHeight converts a quality label to a target pixel height.
// Unknown numeric labels like "900p" are parsed directly; unparseable
// labels map to 0.
func labelHeight(label string) int {
	if h, ok := labelHeights[label]; ok {
		return h
	}

	trimmed := strings.TrimSuffix(label, "p")
	if h, err := strconv.Atoi(trimmed); err == nil && h > 0 {
		return h
	}
	return 0
}

func heightDist(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
