package models

// TimeRange is the span of parseable event timestamps in a report.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Analysis is the per-category analytics report. TimeRange is nil when
// the category has no events or none of them carries a parseable
// timestamp. Statistics holds the category-specific stats struct.
type Analysis struct {
	EventType string     `json:"eventType"`
	Total     int        `json:"total"`
	TimeRange *TimeRange `json:"timeRange"`
	Statistics any       `json:"statistics"`
	Events    []Event    `json:"events,omitempty"`
}

// FlareStats summarizes solar flares by class code.
type FlareStats struct {
	ClassCounts           map[string]int `json:"classCounts"`
	IntensityDistribution IntensityDist  `json:"intensityDistribution"`
	AveragePerDay         float64        `json:"averagePerDay"`
	MostCommonClass       string         `json:"mostCommonClass"`
}

// IntensityDist buckets flares by class letter: C=low, M=medium, X=high.
type IntensityDist struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// CMEStats summarizes coronal mass ejections.
type CMEStats struct {
	CatalogCounts   map[string]int `json:"catalogCounts"`
	SpeedStatistics *SpeedStats    `json:"speedStatistics"`
	AveragePerDay   float64        `json:"averagePerDay"`
}

// SpeedStats aggregates CME analysis speeds in km/s.
type SpeedStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Total   int     `json:"total"`
}

// StormStats summarizes geomagnetic storms over all individual
// Kp-index readings.
type StormStats struct {
	KpStatistics   *KpStats       `json:"kpStatistics"`
	StormIntensity StormIntensity `json:"stormIntensity"`
	AveragePerDay  float64        `json:"averagePerDay"`
}

// KpStats aggregates Kp-index readings across all storms.
type KpStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Total   int     `json:"total"`
}

// StormIntensity counts Kp readings per severity bin. Bins are
// half-open: [5,6) minor, [6,7) moderate, [7,8) strong, [8,9) severe,
// [9,inf) extreme.
type StormIntensity struct {
	Minor    int `json:"minor"`
	Moderate int `json:"moderate"`
	Strong   int `json:"strong"`
	Severe   int `json:"severe"`
	Extreme  int `json:"extreme"`
}

// CountStats is the report for categories that only carry totals
// (HSS, IPS, RBE, SEP).
type CountStats struct {
	Total         int     `json:"total"`
	AveragePerDay float64 `json:"averagePerDay"`
}

// Overview is the cross-category analytics response.
type Overview struct {
	TimeRange OverviewRange        `json:"timeRange"`
	Events    map[string]*Analysis `json:"events"`
	Summary   OverviewSummary      `json:"summary"`
}

// OverviewRange records the requested window and generation time.
type OverviewRange struct {
	Days      int    `json:"days"`
	Generated string `json:"generated"`
}

// OverviewSummary rolls the per-category totals up into an activity
// classification.
type OverviewSummary struct {
	TotalEvents    int    `json:"totalEvents"`
	MostActiveType string `json:"mostActiveType"`
	ActivityLevel  string `json:"activityLevel"`
}
