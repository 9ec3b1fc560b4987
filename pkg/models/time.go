package models

import "time"

// Layouts seen across DONKI, NeoWs and APOD timestamps. DONKI omits
// seconds ("2026-03-10T12:34Z"), NeoWs close-approach full dates use
// month abbreviations ("2026-Mar-10 14:30"), APOD is a bare date.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-Jan-02 15:04",
	"2006-01-02",
}

// ParseEventTime decodes an upstream timestamp string, reporting
// whether any known layout matched.
func ParseEventTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
