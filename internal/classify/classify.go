package classify

import (
	"net/url"
	"strings"
)

// Kind represents the classification of an input URL
type Kind int

const (
	KindInvalid Kind = iota
	KindUnsupportedMedia
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnsupportedMedia:
		return "unsupported_media"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Path markers for non-video content. Photo posts and albums cannot be
// fed to the extraction backend, so they are rejected before any network
// work starts.
var nonVideoMarkers = []string{"photo", "album", "story", "stories", "live"}

// Classify validates a raw URL string and classifies it against supported
// source patterns. It is synchronous and performs no I/O.
func Classify(raw string) Kind {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return KindInvalid
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return KindInvalid
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return KindInvalid
	}

	if parsed.Hostname() == "" {
		return KindInvalid
	}

	for _, segment := range strings.Split(parsed.Path, "/") {
		segment = strings.ToLower(segment)
		for _, marker := range nonVideoMarkers {
			if segment == marker {
				return KindUnsupportedMedia
			}
		}
	}

	return KindVideo
}

// IsSupported reports whether a URL can be admitted as a download job.
func IsSupported(raw string) bool {
	return Classify(raw) == KindVideo
}
