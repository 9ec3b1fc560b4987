// Package analytics derives per-category statistics from DONKI event
// lists and aggregates them into a cross-category overview.
package analytics

import (
	"strings"
	"time"

	"spacenow/pkg/models"
)

// eventTimeFields is the candidate timestamp field priority; the first
// field that parses wins for each event.
var eventTimeFields = []string{
	"eventTime",
	"beginTime",
	"peakTime",
	"endTime",
	"startTime",
	"time",
	"date",
}

// eventTypeAliases maps user-supplied type spellings to canonical
// category names. Lookup is case-insensitive.
var eventTypeAliases = map[string]string{
	"flare":              "flares",
	"flares":             "flares",
	"cme":                "cmes",
	"cmes":               "cmes",
	"gst":                "geomagneticstorms",
	"geomagneticstorm":   "geomagneticstorms",
	"geomagneticstorms":  "geomagneticstorms",
	"geomagnetic-storms": "geomagneticstorms",
	"hss":                "hss",
	"ips":                "ips",
	"rbe":                "rbe",
	"sep":                "sep",
}

// NormalizeEventType resolves a user-supplied event type to its
// canonical category name. Unknown inputs pass through lowercased so
// the caller can report the original value.
func NormalizeEventType(t string) string {
	s := strings.ToLower(t)
	if canonical, ok := eventTypeAliases[s]; ok {
		return canonical
	}
	return s
}

// ExtractEventTime finds the first parseable timestamp among the
// candidate fields of an event.
func ExtractEventTime(ev models.Event) (time.Time, bool) {
	for _, field := range eventTimeFields {
		if t, ok := models.ParseEventTime(ev.String(field)); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// isoMillis renders a timestamp the way the dashboard expects,
// millisecond-precision UTC.
func isoMillis(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// AnalyzeEvents builds the analytics report for one category. The
// time range spans the parseable event timestamps; it is nil when the
// category is empty or no event carries a usable timestamp.
func AnalyzeEvents(events []models.Event, eventType string) *models.Analysis {
	if len(events) == 0 {
		return &models.Analysis{
			EventType:  eventType,
			Total:      0,
			TimeRange:  nil,
			Statistics: struct{}{},
		}
	}

	analysis := &models.Analysis{
		EventType: eventType,
		Total:     len(events),
		Events:    events,
	}

	var minT, maxT time.Time
	found := false
	for _, ev := range events {
		t, ok := ExtractEventTime(ev)
		if !ok {
			continue
		}
		if !found || t.Before(minT) {
			minT = t
		}
		if !found || t.After(maxT) {
			maxT = t
		}
		found = true
	}
	if found {
		analysis.TimeRange = &models.TimeRange{
			Start: isoMillis(minT),
			End:   isoMillis(maxT),
		}
	}

	switch strings.ToLower(eventType) {
	case "flares":
		analysis.Statistics = analyzeFlares(events)
	case "cmes":
		analysis.Statistics = analyzeCMEs(events)
	case "geomagneticstorms":
		analysis.Statistics = analyzeGeomagneticStorms(events)
	case "hss", "ips", "rbe", "sep":
		analysis.Statistics = models.CountStats{
			Total:         len(events),
			AveragePerDay: float64(len(events)) / 7,
		}
	default:
		analysis.Statistics = struct{}{}
	}

	return analysis
}

func analyzeFlares(flares []models.Event) models.FlareStats {
	classCounts := make(map[string]int)
	// first-seen class order breaks most-common ties deterministically
	var classOrder []string
	var dist models.IntensityDist

	for _, flare := range flares {
		classType := flare.String("classType")
		if classType == "" {
			continue
		}
		classKey := classType[:1]
		if _, seen := classCounts[classKey]; !seen {
			classOrder = append(classOrder, classKey)
		}
		classCounts[classKey]++

		switch classKey {
		case "C":
			dist.Low++
		case "M":
			dist.Medium++
		case "X":
			dist.High++
		}
	}

	mostCommon := ""
	for _, key := range classOrder {
		if mostCommon == "" || classCounts[key] > classCounts[mostCommon] {
			mostCommon = key
		}
	}

	return models.FlareStats{
		ClassCounts:           classCounts,
		IntensityDistribution: dist,
		// Fixed divisor matching the dashboard's weekly framing,
		// independent of the requested window.
		AveragePerDay:   float64(len(flares)) / 7,
		MostCommonClass: mostCommon,
	}
}

func analyzeCMEs(cmes []models.Event) models.CMEStats {
	catalogs := make(map[string]int)
	var speeds []float64

	for _, cme := range cmes {
		if analyses := cme.List("cmeAnalyses"); len(analyses) > 0 {
			if speed, ok := analyses[0].Number("speed"); ok {
				speeds = append(speeds, speed)
			}
		}
		if catalog := cme.String("catalog"); catalog != "" {
			catalogs[catalog]++
		}
	}

	stats := models.CMEStats{
		CatalogCounts: catalogs,
		AveragePerDay: float64(len(cmes)) / 7,
	}
	if len(speeds) > 0 {
		sum, min, max := speeds[0], speeds[0], speeds[0]
		for _, s := range speeds[1:] {
			sum += s
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		stats.SpeedStatistics = &models.SpeedStats{
			Average: sum / float64(len(speeds)),
			Min:     min,
			Max:     max,
			Total:   len(speeds),
		}
	}
	return stats
}

func analyzeGeomagneticStorms(storms []models.Event) models.StormStats {
	var kpIndices []float64
	for _, storm := range storms {
		for _, kp := range storm.List("allKpIndex") {
			if v, ok := kp.Number("kpIndex"); ok {
				kpIndices = append(kpIndices, v)
			}
		}
	}

	stats := models.StormStats{
		AveragePerDay: float64(len(storms)) / 7,
	}

	for _, kp := range kpIndices {
		switch {
		case kp >= 9:
			stats.StormIntensity.Extreme++
		case kp >= 8:
			stats.StormIntensity.Severe++
		case kp >= 7:
			stats.StormIntensity.Strong++
		case kp >= 6:
			stats.StormIntensity.Moderate++
		case kp >= 5:
			stats.StormIntensity.Minor++
		}
	}

	if len(kpIndices) > 0 {
		sum, min, max := kpIndices[0], kpIndices[0], kpIndices[0]
		for _, kp := range kpIndices[1:] {
			sum += kp
			if kp < min {
				min = kp
			}
			if kp > max {
				max = kp
			}
		}
		stats.KpStatistics = &models.KpStats{
			Average: sum / float64(len(kpIndices)),
			Min:     min,
			Max:     max,
			Total:   len(kpIndices),
		}
	}
	return stats
}
