package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"spacenow/internal/analytics"
	"spacenow/internal/assistant"
	"spacenow/internal/cache"
	"spacenow/internal/feed"
	"spacenow/internal/handlers"
	"spacenow/internal/nasa"
)

// fakeNASA is a scriptable upstream. Each path serves a fixed status
// and body; every request is counted and its query recorded.
type fakeNASA struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     map[string]int
	queries   map[string][]string
	server    *httptest.Server
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeNASA() *fakeNASA {
	f := &fakeNASA{
		responses: make(map[string]fakeResponse),
		calls:     make(map[string]int),
		queries:   make(map[string][]string),
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		f.queries[r.URL.Path] = append(f.queries[r.URL.Path], r.URL.RawQuery)
		resp, ok := f.responses[r.URL.Path]
		f.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"no such endpoint"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		fmt.Fprint(w, resp.body)
	}))
	return f
}

func (f *fakeNASA) respond(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[path] = fakeResponse{status: status, body: body}
}

func (f *fakeNASA) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeNASA) lastQuery(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	qs := f.queries[path]
	if len(qs) == 0 {
		return ""
	}
	return qs[len(qs)-1]
}

func setupTestServer(t *testing.T, upstream *fakeNASA) *gin.Engine {
	t.Helper()
	logger := zaptest.NewLogger(t)

	gin.SetMode(gin.TestMode)

	client := nasa.NewClient(&nasa.ClientConfig{
		Timeout:     2 * time.Second,
		Retries:     0,
		BackoffBase: 10 * time.Millisecond,
	}, logger)
	gateway := nasa.NewGateway(client, upstream.server.URL, "TEST_KEY", logger)

	store := cache.NewMemoryStore(logger)
	analyticsSvc := analytics.NewService(gateway, logger)
	feedSvc := feed.NewService(gateway, logger)
	assistantSvc := assistant.NewService(client, "http://invalid.invalid", "", logger)

	handler := handlers.New(gateway, analyticsSvc, feedSvc, assistantSvc, store, false, logger)
	return handlers.NewRouter(handler, logger)
}

func doGET(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAPI_FlaresServedAndCached(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/FLR", http.StatusOK,
		`[{"flrID":"2026-03-09-FLR-001","classType":"M1.4","beginTime":"2026-03-09T02:10Z"}]`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/donki/flares")
	require.Equal(t, http.StatusOK, w.Code)

	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "M1.4", events[0]["classType"])

	// The upstream key is injected server side.
	assert.Contains(t, upstream.lastQuery("/DONKI/FLR"), "api_key=TEST_KEY")
	assert.Contains(t, upstream.lastQuery("/DONKI/FLR"), "startDate=")

	// Second request is a cache hit.
	w = doGET(router, "/api/donki/flares")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, upstream.callCount("/DONKI/FLR"))
}

func TestAPI_DistinctQueriesGetDistinctCacheEntries(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/FLR", http.StatusOK, `[]`)

	router := setupTestServer(t, upstream)

	assert.Equal(t, http.StatusOK, doGET(router, "/api/donki/flares?days=2").Code)
	assert.Equal(t, http.StatusOK, doGET(router, "/api/donki/flares?days=5").Code)
	assert.Equal(t, 2, upstream.callCount("/DONKI/FLR"))
}

func TestAPI_DateValidationSkipsUpstream(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()

	router := setupTestServer(t, upstream)

	for _, path := range []string{
		"/api/donki/cme-analysis",
		"/api/donki/cme-analysis?startDate=2026-03-01",
		"/api/donki/notifications?endDate=2026-03-10",
		"/api/donki/mpc",
		"/api/donki/flares-range?startDate=2026-03-01",
	} {
		w := doGET(router, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "startDate and endDate")
	}

	assert.Equal(t, 0, upstream.callCount("/DONKI/CMEAnalysis"))
	assert.Equal(t, 0, upstream.callCount("/DONKI/notifications"))
	assert.Equal(t, 0, upstream.callCount("/DONKI/MPC"))
	assert.Equal(t, 0, upstream.callCount("/DONKI/FLR"))
}

func TestAPI_UpstreamStatusPassThrough(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/GST", http.StatusForbidden, `{"error":"API_KEY_INVALID"}`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/donki/gst")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestAPI_FeedMergesAndSorts(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/FLR", http.StatusOK,
		`[{"flrID":"f1","classType":"X1.0","beginTime":"2026-03-09T10:00Z"}]`)
	upstream.respond("/DONKI/CME", http.StatusOK,
		`[{"activityID":"c1","startTime":"2026-03-10T01:00Z"}]`)
	upstream.respond("/DONKI/GST", http.StatusOK,
		`[{"gstID":"g1","startTime":"2026-03-08T12:00Z"}]`)
	upstream.respond("/neo/rest/v1/feed/today", http.StatusOK,
		`{"near_earth_objects":{"2026-03-10":[{"name":"(2026 AB)","close_approach_data":[{"close_approach_date_full":"2026-Mar-10 05:00"}]}]}}`)
	upstream.respond("/planetary/apod", http.StatusOK,
		`{"title":"Pillars of Creation","date":"2026-03-10","url":"https://apod.nasa.gov/x.jpg"}`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/feed")
	require.Equal(t, http.StatusOK, w.Code)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 5)

	var types []string
	for _, item := range items {
		types = append(types, item["type"].(string))
	}
	// Newest first: APOD (midnight of 2026-03-10 sorts after nothing
	// else that day except the CME at 01:00 and NEO at 05:00).
	assert.Equal(t, []string{"NEO", "CME", "APOD", "FLR", "GST"}, types)
}

func TestAPI_FeedToleratesCategoryFailure(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/FLR", http.StatusOK,
		`[{"flrID":"f1","classType":"C2.2","beginTime":"2026-03-09T10:00Z"}]`)
	upstream.respond("/DONKI/CME", http.StatusInternalServerError, `{"error":"boom"}`)
	upstream.respond("/DONKI/GST", http.StatusOK, `[]`)
	upstream.respond("/neo/rest/v1/feed/today", http.StatusOK, `{"near_earth_objects":{}}`)
	upstream.respond("/planetary/apod", http.StatusBadGateway, `{}`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/feed")
	require.Equal(t, http.StatusOK, w.Code)

	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "FLR", items[0]["type"])
}

func TestAPI_FeedAllFailuresYieldsEmptyArray(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	for _, path := range []string{"/DONKI/FLR", "/DONKI/CME", "/DONKI/GST", "/neo/rest/v1/feed/today", "/planetary/apod"} {
		upstream.respond(path, http.StatusInternalServerError, `{"error":"down"}`)
	}

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/feed")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAPI_FeedRSS(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/FLR", http.StatusOK,
		`[{"flrID":"f1","classType":"M5.5","beginTime":"2026-03-09T10:00Z"}]`)
	upstream.respond("/DONKI/CME", http.StatusOK, `[]`)
	upstream.respond("/DONKI/GST", http.StatusOK, `[]`)
	upstream.respond("/neo/rest/v1/feed/today", http.StatusOK, `{"near_earth_objects":{}}`)
	upstream.respond("/planetary/apod", http.StatusOK,
		`{"title":"Aurora","date":"2026-03-10","url":"https://apod.nasa.gov/a.jpg"}`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/feed/rss")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/atom+xml")
	assert.Contains(t, w.Body.String(), "Solar flare M5.5")
	assert.Contains(t, w.Body.String(), "APOD: Aurora")
}

func TestAPI_AnalyticsOverviewOmitsFailedCategories(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/FLR", http.StatusOK,
		`[{"classType":"X2.0","beginTime":"2026-03-09T10:00Z"},{"classType":"M1.0","beginTime":"2026-03-08T10:00Z"}]`)
	upstream.respond("/DONKI/CME", http.StatusOK, `[]`)
	upstream.respond("/DONKI/GST", http.StatusOK, `[]`)
	upstream.respond("/DONKI/HSS", http.StatusOK, `[]`)
	upstream.respond("/DONKI/IPS", http.StatusOK, `[]`)
	upstream.respond("/DONKI/RBE", http.StatusOK, `[]`)
	upstream.respond("/DONKI/SEP", http.StatusInternalServerError, `{"error":"down"}`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/analytics/overview?days=5")
	require.Equal(t, http.StatusOK, w.Code)

	var overview struct {
		TimeRange struct {
			Days int `json:"days"`
		} `json:"timeRange"`
		Events  map[string]json.RawMessage `json:"events"`
		Summary struct {
			TotalEvents    int    `json:"totalEvents"`
			MostActiveType string `json:"mostActiveType"`
			ActivityLevel  string `json:"activityLevel"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))

	assert.Equal(t, 5, overview.TimeRange.Days)
	assert.Contains(t, overview.Events, "flares")
	assert.NotContains(t, overview.Events, "sep")
	assert.Equal(t, 2, overview.Summary.TotalEvents)
	assert.Equal(t, "flares", overview.Summary.MostActiveType)
	assert.Equal(t, "low", overview.Summary.ActivityLevel)

	// Every category was still attempted.
	for _, path := range []string{"/DONKI/FLR", "/DONKI/CME", "/DONKI/GST", "/DONKI/HSS", "/DONKI/IPS", "/DONKI/RBE", "/DONKI/SEP"} {
		assert.Equal(t, 1, upstream.callCount(path), path)
	}
}

func TestAPI_AnalyticsChartDataAliases(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/DONKI/GST", http.StatusOK,
		`[{"gstID":"g1","startTime":"2026-03-09T12:00Z","allKpIndex":[{"kpIndex":6.5}]}]`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/analytics/chart-data/geomagnetic-storms")
	require.Equal(t, http.StatusOK, w.Code)

	var analysis map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, "geomagneticstorms", analysis["eventType"])
	assert.Equal(t, float64(1), analysis["total"])

	// The alias resolves to the same cache entry as the canonical name.
	w = doGET(router, "/api/analytics/chart-data/gst")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, upstream.callCount("/DONKI/GST"))
}

func TestAPI_AnalyticsChartDataUnknownType(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/analytics/chart-data/comets")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Unknown event type: comets", body["error"])
}

func TestAPI_APODFallbackDate(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	// Any date query gets a 404 until the fallback date arrives.
	upstream.server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.mu.Lock()
		upstream.calls[r.URL.Path]++
		upstream.queries[r.URL.Path] = append(upstream.queries[r.URL.Path], r.URL.RawQuery)
		upstream.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("date") == "2024-09-30" {
			fmt.Fprint(w, `{"title":"Andromeda","date":"2024-09-30","url":"https://apod.nasa.gov/m31.jpg"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"no apod for date"}`)
	})

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/apod?date=2099-01-01")
	require.Equal(t, http.StatusOK, w.Code)

	var apod map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apod))
	assert.Equal(t, "Andromeda", apod["title"])
	assert.Equal(t, 2, upstream.callCount("/planetary/apod"))
}

func TestAPI_NeoLookup(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()
	upstream.respond("/neo/rest/v1/neo/3542519", http.StatusOK,
		`{"id":"3542519","name":"(2010 PK9)","is_potentially_hazardous_asteroid":true}`)

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/neo/3542519")
	require.Equal(t, http.StatusOK, w.Code)

	var neo map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &neo))
	assert.Equal(t, "(2010 PK9)", neo["name"])
	assert.Equal(t, true, neo["is_potentially_hazardous_asteroid"])
}

func TestAPI_AIAskValidation(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()

	router := setupTestServer(t, upstream)

	cases := []struct {
		name string
		body string
	}{
		{"missing question", `{"context":{}}`},
		{"missing context", `{"question":"what is a CME?"}`},
		{"not json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/ai/ask", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAPI_AIAskFallbackAnswer(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()

	router := setupTestServer(t, upstream)

	body := `{"question":"Tell me about solar flares","context":{}}`
	req := httptest.NewRequest("POST", "/api/ai/ask", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["response"])
	assert.NotEmpty(t, resp["timestamp"])
}

func TestAPI_AIHealthUnconfigured(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()

	router := setupTestServer(t, upstream)

	w := doGET(router, "/api/ai/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, false, resp["cohereConfigured"])
}

func TestAPI_Health(t *testing.T) {
	upstream := newFakeNASA()
	defer upstream.server.Close()

	router := setupTestServer(t, upstream)

	w := doGET(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])

	w = doGET(router, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
}
