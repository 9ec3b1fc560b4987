package nasa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"spacenow/pkg/models"
)

// DefaultBaseURL is the public NASA API host.
const DefaultBaseURL = "https://api.nasa.gov"

// DemoKey is the publicly documented rate-limited key used when no
// real key is configured.
const DemoKey = "DEMO_KEY"

// Default date windows per DONKI category, in days back from today.
const (
	DefaultFlareDays    = 2
	DefaultCMEDays      = 3
	DefaultStormDays    = 5
	DefaultWSAEnlilDays = 7
	DefaultNeoFeedDays  = 7
)

// ErrDatesRequired is raised by the calls that have no implicit date
// window before any network request is made.
var ErrDatesRequired = errors.New("startDate and endDate required")

// FlareQuery selects the flare window. Explicit dates win over Days.
type FlareQuery struct {
	Days      int
	StartDate string
	EndDate   string
}

// CMEAnalysisQuery filters the DONKI CMEAnalysis endpoint. StartDate
// and EndDate are mandatory.
type CMEAnalysisQuery struct {
	StartDate        string
	EndDate          string
	MostAccurateOnly bool
	Speed            string
	HalfAngle        string
	Catalog          string
}

// Gateway wraps the NASA DONKI, NeoWs and APOD endpoints. Every call
// injects the API key and delegates to the retrying fetch client.
type Gateway struct {
	client  *Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewGateway builds a Gateway. Empty baseURL and apiKey fall back to
// the public host and demo key.
func NewGateway(client *Client, baseURL, apiKey string, logger *zap.Logger) *Gateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if apiKey == "" {
		apiKey = DemoKey
	}
	return &Gateway{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
		now:     time.Now,
	}
}

// SetNowForTest pins the clock used for date-window resolution.
func (g *Gateway) SetNowForTest(now func() time.Time) {
	g.now = now
}

// today formats the current UTC date as YYYY-MM-DD.
func (g *Gateway) today() string {
	return g.now().UTC().Format("2006-01-02")
}

// window resolves a date range: explicit dates win, otherwise the end
// is today (UTC) and the start is `days` before the end.
func (g *Gateway) window(startDate, endDate string, days, defaultDays int) (string, string) {
	if days <= 0 {
		days = defaultDays
	}
	end := endDate
	if end == "" {
		end = g.today()
	}
	start := startDate
	if start == "" {
		endT, err := time.Parse("2006-01-02", end)
		if err != nil {
			endT = g.now().UTC()
		}
		start = endT.AddDate(0, 0, -days).Format("2006-01-02")
	}
	return start, end
}

// getJSON fetches path with the API key injected and decodes into out.
func (g *Gateway) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	merged := map[string]string{"api_key": g.apiKey}
	for k, v := range params {
		merged[k] = v
	}

	data, err := g.client.Fetch(ctx, g.baseURL+path, RequestOptions{Params: merged})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse upstream JSON from %s: %w", path, err)
	}
	return nil
}

func (g *Gateway) donkiList(ctx context.Context, endpoint string, params map[string]string) ([]models.Event, error) {
	var events []models.Event
	if err := g.getJSON(ctx, "/DONKI/"+endpoint, params, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (g *Gateway) donkiWindow(ctx context.Context, endpoint string, days, defaultDays int) ([]models.Event, error) {
	start, end := g.window("", "", days, defaultDays)
	return g.donkiList(ctx, endpoint, map[string]string{
		"startDate": start,
		"endDate":   end,
	})
}

// GetFlares fetches solar flares (FLR).
func (g *Gateway) GetFlares(ctx context.Context, q FlareQuery) ([]models.Event, error) {
	start, end := g.window(q.StartDate, q.EndDate, q.Days, DefaultFlareDays)
	return g.donkiList(ctx, "FLR", map[string]string{
		"startDate": start,
		"endDate":   end,
	})
}

// GetCMEs fetches coronal mass ejections.
func (g *Gateway) GetCMEs(ctx context.Context, days int) ([]models.Event, error) {
	return g.donkiWindow(ctx, "CME", days, DefaultCMEDays)
}

// GetGeomagneticStorms fetches geomagnetic storms (GST).
func (g *Gateway) GetGeomagneticStorms(ctx context.Context, days int) ([]models.Event, error) {
	return g.donkiWindow(ctx, "GST", days, DefaultStormDays)
}

// GetHSS fetches high-speed streams.
func (g *Gateway) GetHSS(ctx context.Context, days int) ([]models.Event, error) {
	return g.donkiWindow(ctx, "HSS", days, DefaultStormDays)
}

// GetIPS fetches interplanetary shocks.
func (g *Gateway) GetIPS(ctx context.Context, days int) ([]models.Event, error) {
	return g.donkiWindow(ctx, "IPS", days, DefaultStormDays)
}

// GetRBE fetches radiation belt enhancements.
func (g *Gateway) GetRBE(ctx context.Context, days int) ([]models.Event, error) {
	return g.donkiWindow(ctx, "RBE", days, DefaultStormDays)
}

// GetSEP fetches solar energetic particle events.
func (g *Gateway) GetSEP(ctx context.Context, days int) ([]models.Event, error) {
	return g.donkiWindow(ctx, "SEP", days, DefaultStormDays)
}

// GetWSAEnlil fetches WSA-Enlil simulation runs.
func (g *Gateway) GetWSAEnlil(ctx context.Context, days int) ([]models.Event, error) {
	return g.donkiWindow(ctx, "WSAEnlilSimulations", days, DefaultWSAEnlilDays)
}

// GetCMEAnalysis fetches CME analyses. There is no implicit window,
// so it fails before any network call when dates are missing.
func (g *Gateway) GetCMEAnalysis(ctx context.Context, q CMEAnalysisQuery) ([]models.Event, error) {
	if q.StartDate == "" || q.EndDate == "" {
		return nil, ErrDatesRequired
	}
	params := map[string]string{
		"startDate": q.StartDate,
		"endDate":   q.EndDate,
	}
	if q.MostAccurateOnly {
		params["mostAccurateOnly"] = "true"
	}
	if q.Speed != "" {
		params["speed"] = q.Speed
	}
	if q.HalfAngle != "" {
		params["halfAngle"] = q.HalfAngle
	}
	if q.Catalog != "" {
		params["catalog"] = q.Catalog
	}
	return g.donkiList(ctx, "CMEAnalysis", params)
}

// GetNotifications fetches DONKI notifications. Dates are mandatory;
// an empty notification type means all.
func (g *Gateway) GetNotifications(ctx context.Context, startDate, endDate, notificationType string) ([]models.Event, error) {
	if startDate == "" || endDate == "" {
		return nil, ErrDatesRequired
	}
	if notificationType == "" {
		notificationType = "all"
	}
	return g.donkiList(ctx, "notifications", map[string]string{
		"startDate": startDate,
		"endDate":   endDate,
		"type":      notificationType,
	})
}

// GetMPC fetches magnetopause crossings. Dates are mandatory.
func (g *Gateway) GetMPC(ctx context.Context, startDate, endDate string) ([]models.Event, error) {
	if startDate == "" || endDate == "" {
		return nil, ErrDatesRequired
	}
	return g.donkiList(ctx, "MPC", map[string]string{
		"startDate": startDate,
		"endDate":   endDate,
	})
}

// GetNeoFeed fetches the NeoWs feed for a date range, defaulting to
// the last 7 days.
func (g *Gateway) GetNeoFeed(ctx context.Context, startDate, endDate string) (models.Event, error) {
	start, end := g.window(startDate, endDate, 0, DefaultNeoFeedDays)
	var out models.Event
	err := g.getJSON(ctx, "/neo/rest/v1/feed", map[string]string{
		"start_date": start,
		"end_date":   end,
	}, &out)
	return out, err
}

// GetNeoToday fetches today's near-Earth objects in detailed form.
func (g *Gateway) GetNeoToday(ctx context.Context) (models.Event, error) {
	var out models.Event
	err := g.getJSON(ctx, "/neo/rest/v1/feed/today", map[string]string{
		"detailed": "true",
	}, &out)
	return out, err
}

// GetNeoLookup fetches a single NEO by its NeoWs id.
func (g *Gateway) GetNeoLookup(ctx context.Context, id string) (models.Event, error) {
	var out models.Event
	err := g.getJSON(ctx, "/neo/rest/v1/neo/"+id, nil, &out)
	return out, err
}

// GetAPOD fetches the astronomy picture of the day. An empty date
// means today; thumbs are always requested so videos carry an image.
func (g *Gateway) GetAPOD(ctx context.Context, date string, hd bool) (models.Event, error) {
	params := map[string]string{"thumbs": "true"}
	if date != "" {
		params["date"] = date
	}
	if hd {
		params["hd"] = "true"
	}
	var out models.Event
	err := g.getJSON(ctx, "/planetary/apod", params, &out)
	return out, err
}
