package feed

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"

	"spacenow/pkg/models"
)

// RenderRSS serializes the merged feed as Atom so feed readers can
// subscribe to the same stream the dashboard shows.
func RenderRSS(items []models.FeedItem) (string, error) {
	now := time.Now()
	out := &feeds.Feed{
		Title:       "SpaceNow! Space Weather Feed",
		Description: "Solar flares, CMEs, geomagnetic storms, near-Earth objects and the astronomy picture of the day",
		Link:        &feeds.Link{Href: "https://api.nasa.gov/", Rel: "self", Type: "text/html"},
		Id:          "tag:spacenow,2026:feed",
		Created:     now,
		Updated:     now,
	}

	for _, item := range items {
		out.Items = append(out.Items, &feeds.Item{
			Id:          fmt.Sprintf("spacenow:%s:%s", item.Type, item.Time),
			Title:       item.Title,
			Description: fmt.Sprintf("%s event at %s", item.Type, item.Time),
			Link:        &feeds.Link{Href: itemLink(item)},
			Created:     item.ParsedTime,
		})
	}

	atom, err := out.ToAtom()
	if err != nil {
		return "", fmt.Errorf("failed to render feed: %w", err)
	}
	return atom, nil
}

// itemLink picks a reasonable external link for an item when the
// payload carries one.
func itemLink(item models.FeedItem) string {
	payload, ok := item.Payload.(models.Event)
	if !ok {
		return ""
	}
	switch item.Type {
	case models.FeedTypeAPOD:
		return payload.String("url")
	case models.FeedTypeNEO:
		return payload.String("nasa_jpl_url")
	default:
		return payload.String("link")
	}
}
