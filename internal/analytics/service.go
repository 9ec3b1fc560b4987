package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"spacenow/internal/nasa"
	"spacenow/pkg/models"
)

// Provider is the slice of the NASA gateway the analytics service
// fans out over.
type Provider interface {
	GetFlares(ctx context.Context, q nasa.FlareQuery) ([]models.Event, error)
	GetCMEs(ctx context.Context, days int) ([]models.Event, error)
	GetGeomagneticStorms(ctx context.Context, days int) ([]models.Event, error)
	GetHSS(ctx context.Context, days int) ([]models.Event, error)
	GetIPS(ctx context.Context, days int) ([]models.Event, error)
	GetRBE(ctx context.Context, days int) ([]models.Event, error)
	GetSEP(ctx context.Context, days int) ([]models.Event, error)
}

// ErrUnknownEventType reports an event type the alias table cannot
// resolve; the message carries the caller's original input.
type ErrUnknownEventType struct {
	Input string
}

func (e *ErrUnknownEventType) Error() string {
	return fmt.Sprintf("Unknown event type: %s", e.Input)
}

// Service computes analytics over the DONKI categories.
type Service struct {
	provider Provider
	logger   *zap.Logger
}

// NewService creates the analytics service.
func NewService(provider Provider, logger *zap.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// categoryResult is one slot of the overview fan-out.
type categoryResult struct {
	key    string
	events []models.Event
	err    error
}

// Overview fans out one gateway call per DONKI category in parallel
// and merges the reports. Categories whose call fails are omitted
// from the result instead of failing the whole request.
func (s *Service) Overview(ctx context.Context, days int) *models.Overview {
	// Slot order fixes the summary tie-break: the first category with
	// the maximum total wins mostActiveType.
	fetchers := []struct {
		key   string
		fetch func(ctx context.Context) ([]models.Event, error)
	}{
		{"flares", func(ctx context.Context) ([]models.Event, error) {
			return s.provider.GetFlares(ctx, nasa.FlareQuery{Days: days})
		}},
		{"cmes", func(ctx context.Context) ([]models.Event, error) {
			return s.provider.GetCMEs(ctx, days)
		}},
		{"geomagneticStorms", func(ctx context.Context) ([]models.Event, error) {
			return s.provider.GetGeomagneticStorms(ctx, days)
		}},
		{"hss", func(ctx context.Context) ([]models.Event, error) {
			return s.provider.GetHSS(ctx, days)
		}},
		{"ips", func(ctx context.Context) ([]models.Event, error) {
			return s.provider.GetIPS(ctx, days)
		}},
		{"rbe", func(ctx context.Context) ([]models.Event, error) {
			return s.provider.GetRBE(ctx, days)
		}},
		{"sep", func(ctx context.Context) ([]models.Event, error) {
			return s.provider.GetSEP(ctx, days)
		}},
	}

	results := make([]categoryResult, len(fetchers))
	var wg sync.WaitGroup
	for i, f := range fetchers {
		wg.Add(1)
		go func(i int, key string, fetch func(ctx context.Context) ([]models.Event, error)) {
			defer wg.Done()
			events, err := fetch(ctx)
			results[i] = categoryResult{key: key, events: events, err: err}
		}(i, f.key, f.fetch)
	}
	wg.Wait()

	overview := &models.Overview{
		TimeRange: models.OverviewRange{
			Days:      days,
			Generated: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		},
		Events: make(map[string]*models.Analysis, len(fetchers)),
	}

	maxEvents := 0
	for _, res := range results {
		if res.err != nil {
			s.logger.Warn("overview category failed, omitting",
				zap.String("category", res.key),
				zap.Error(res.err),
			)
			continue
		}
		report := AnalyzeEvents(res.events, res.key)
		overview.Events[res.key] = report
		overview.Summary.TotalEvents += report.Total

		if report.Total > maxEvents {
			maxEvents = report.Total
			overview.Summary.MostActiveType = res.key
		}
	}

	if days <= 0 {
		days = 7
	}
	dailyAverage := float64(overview.Summary.TotalEvents) / float64(days)
	switch {
	case dailyAverage > 10:
		overview.Summary.ActivityLevel = "high"
	case dailyAverage > 5:
		overview.Summary.ActivityLevel = "medium"
	default:
		overview.Summary.ActivityLevel = "low"
	}

	return overview
}

// ChartData fetches a single category and returns its report. The
// event type goes through the alias table first; unresolvable input
// is an *ErrUnknownEventType.
func (s *Service) ChartData(ctx context.Context, eventType string, days int) (*models.Analysis, error) {
	canonical := NormalizeEventType(eventType)

	var (
		events []models.Event
		err    error
	)
	switch canonical {
	case "flares":
		events, err = s.provider.GetFlares(ctx, nasa.FlareQuery{Days: days})
	case "cmes":
		events, err = s.provider.GetCMEs(ctx, days)
	case "geomagneticstorms":
		events, err = s.provider.GetGeomagneticStorms(ctx, days)
	case "hss":
		events, err = s.provider.GetHSS(ctx, days)
	case "ips":
		events, err = s.provider.GetIPS(ctx, days)
	case "rbe":
		events, err = s.provider.GetRBE(ctx, days)
	case "sep":
		events, err = s.provider.GetSEP(ctx, days)
	default:
		return nil, &ErrUnknownEventType{Input: eventType}
	}
	if err != nil {
		return nil, err
	}

	return AnalyzeEvents(events, canonical), nil
}
