package models

import "time"

// Feed item types.
const (
	FeedTypeFlare = "FLR"
	FeedTypeCME   = "CME"
	FeedTypeStorm = "GST"
	FeedTypeNEO   = "NEO"
	FeedTypeAPOD  = "APOD"
)

// FeedItem is one entry of the merged activity feed. Time is the raw
// upstream timestamp string; ParsedTime is its decoded form used for
// ordering and is not serialized.
type FeedItem struct {
	Type    string `json:"type"`
	Time    string `json:"time"`
	Title   string `json:"title"`
	Payload any    `json:"payload"`

	ParsedTime time.Time `json:"-"`
}
