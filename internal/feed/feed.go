// Package feed merges several upstream categories into a single
// time-ordered activity feed for the dashboard.
package feed

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"spacenow/internal/nasa"
	"spacenow/pkg/models"
)

// Provider is the slice of the NASA gateway the feed fans out over.
type Provider interface {
	GetFlares(ctx context.Context, q nasa.FlareQuery) ([]models.Event, error)
	GetCMEs(ctx context.Context, days int) ([]models.Event, error)
	GetGeomagneticStorms(ctx context.Context, days int) ([]models.Event, error)
	GetNeoToday(ctx context.Context) (models.Event, error)
	GetAPOD(ctx context.Context, date string, hd bool) (models.Event, error)
}

// Options selects the per-category date windows.
type Options struct {
	FlaresDays int
	CMEsDays   int
	GSTDays    int
}

// Service builds the merged feed.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates the feed service.
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Build fans out flares, CMEs, geomagnetic storms, today's NEOs and
// today's APOD in parallel and merges them newest-first. A failed
// category contributes nothing instead of failing the feed. Items
// without a resolvable timestamp are dropped.
func (s *Service) Build(ctx context.Context, opts Options) []models.FeedItem {
	var (
		wg       sync.WaitGroup
		flares   []models.Event
		cmes     []models.Event
		storms   []models.Event
		neoToday models.Event
		apod     models.Event
	)

	fetch := func(name string, run func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(); err != nil {
				s.logger.Warn("feed category failed, skipping",
					zap.String("category", name),
					zap.Error(err),
				)
			}
		}()
	}

	fetch("flares", func() error {
		var err error
		flares, err = s.provider.GetFlares(ctx, nasa.FlareQuery{Days: opts.FlaresDays})
		return err
	})
	fetch("cmes", func() error {
		var err error
		cmes, err = s.provider.GetCMEs(ctx, opts.CMEsDays)
		return err
	})
	fetch("gst", func() error {
		var err error
		storms, err = s.provider.GetGeomagneticStorms(ctx, opts.GSTDays)
		return err
	})
	fetch("neo-today", func() error {
		var err error
		neoToday, err = s.provider.GetNeoToday(ctx)
		return err
	})
	fetch("apod", func() error {
		var err error
		apod, err = s.provider.GetAPOD(ctx, "", false)
		return err
	})
	wg.Wait()

	// Non-nil so an empty feed serializes as [] rather than null.
	items := make([]models.FeedItem, 0)

	if apod != nil {
		items = appendItem(items, models.FeedTypeAPOD, apod.String("date"),
			"APOD: "+apod.String("title"), apod)
	}
	for _, f := range flares {
		when := firstNonEmpty(f.String("beginTime"), f.String("peakTime"), f.String("endTime"))
		title := strings.TrimSpace("Solar flare " + f.String("classType"))
		items = appendItem(items, models.FeedTypeFlare, when, title, f)
	}
	for _, c := range cmes {
		items = appendItem(items, models.FeedTypeCME, c.String("startTime"),
			"Coronal mass ejection (CME)", c)
	}
	for _, g := range storms {
		items = appendItem(items, models.FeedTypeStorm, g.String("startTime"),
			"Geomagnetic storm", g)
	}
	for _, o := range flattenNeoMap(neoToday) {
		var when string
		if approaches := o.List("close_approach_data"); len(approaches) > 0 {
			when = firstNonEmpty(
				approaches[0].String("close_approach_date_full"),
				approaches[0].String("close_approach_date"),
			)
		}
		items = appendItem(items, models.FeedTypeNEO, when, "Asteroid "+o.String("name"), o)
	}

	// Newest first; stable so equal timestamps keep upstream order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ParsedTime.After(items[j].ParsedTime)
	})

	return items
}

// appendItem adds a feed item unless its timestamp cannot be parsed.
func appendItem(items []models.FeedItem, itemType, when, title string, payload any) []models.FeedItem {
	t, ok := models.ParseEventTime(when)
	if !ok {
		return items
	}
	return append(items, models.FeedItem{
		Type:       itemType,
		Time:       when,
		Title:      title,
		Payload:    payload,
		ParsedTime: t,
	})
}

// flattenNeoMap turns the per-date NEO feed map into a flat object
// list.
func flattenNeoMap(neoToday models.Event) []models.Event {
	if neoToday == nil {
		return nil
	}
	byDate, ok := neoToday["near_earth_objects"].(map[string]any)
	if !ok {
		return nil
	}
	var objs []models.Event
	for _, v := range byDate {
		list, ok := v.([]any)
		if !ok {
			continue
		}
		for _, raw := range list {
			if m, ok := raw.(map[string]any); ok {
				objs = append(objs, models.Event(m))
			}
		}
	}
	return objs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
