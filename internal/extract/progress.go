package extract

import (
	"strconv"
	"strings"
)

// ParseProgressLine extracts (percent, speed) from one line of extractor
// output in --newline mode, e.g.
//
//	[download]  42.1% of 10.00MiB at 1.23MiB/s ETA 00:05
//
// Non-progress lines (destinations, merge notices) return ok=false.
func ParseProgressLine(line string) (percent float64, speed string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[download]") {
		return 0, "", false
	}

	fields := strings.Fields(line)
	percentIdx := -1
	for i, field := range fields {
		if strings.HasSuffix(field, "%") {
			p, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
			if err != nil {
				return 0, "", false
			}
			percent = p
			percentIdx = i
			break
		}
	}
	if percentIdx < 0 {
		return 0, "", false
	}

	for i := percentIdx + 1; i < len(fields)-1; i++ {
		if fields[i] == "at" {
			speed = fields[i+1]
			break
		}
	}
	if speed == "" || speed == "Unknown" {
		speed = "-"
	}

	return percent, speed, true
}
