package assistant

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"spacenow/internal/nasa"
	"spacenow/pkg/models"
)

func newTestClient(t *testing.T) *nasa.Client {
	c := nasa.NewClient(&nasa.ClientConfig{Retries: 0}, zaptest.NewLogger(t))
	c.SetSleepForTest(func(d time.Duration) {})
	return c
}

func TestAsk_UnconfiguredUsesFallback(t *testing.T) {
	svc := NewService(newTestClient(t), "", "", zaptest.NewLogger(t))
	assert.False(t, svc.Configured())

	answer := svc.Ask(context.Background(), "what is a CME?", EventContext{})
	assert.Contains(t, answer, "Coronal Mass Ejections")
}

func TestAsk_PassesThroughUpstreamAnswer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"text":"  The Sun is very active today!  "}`)
	}))
	defer ts.Close()

	svc := NewService(newTestClient(t), ts.URL, "test-key", zaptest.NewLogger(t))
	require.True(t, svc.Configured())

	answer := svc.Ask(context.Background(), "how is the sun?", EventContext{})
	assert.Equal(t, "The Sun is very active today!", answer)
}

func TestAsk_UpstreamFailureFallsBack(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid api token"}`)
	}))
	defer ts.Close()

	svc := NewService(newTestClient(t), ts.URL, "bad-key", zaptest.NewLogger(t))
	answer := svc.Ask(context.Background(), "tell me about asteroids", EventContext{})
	assert.Contains(t, answer, "Near-Earth Objects")
}

func TestFallbackAnswer_TopicRouting(t *testing.T) {
	cases := map[string]string{
		"what is a solar flare": "Solar flares",
		"geomagnetic storms?":   "Geomagnetic storms",
		"random question":       "Space weather",
	}
	for question, want := range cases {
		assert.Contains(t, FallbackAnswer(question), want, "question %q", question)
	}
}

func TestBuildPrompt_IncludesContextData(t *testing.T) {
	eventCtx := EventContext{
		Flares: []models.Event{{"classType": "X1.0", "beginTime": "2026-03-10T08:00Z"}},
		GST: []models.Event{{
			"startTime": "2026-03-09T20:00Z",
			"allKpIndex": []any{
				map[string]any{"kpIndex": float64(6.5)},
			},
		}},
	}
	prompt := buildPrompt("is there a storm?", eventCtx)
	assert.Contains(t, prompt, "Class X1.0")
	assert.Contains(t, prompt, "Kp index: 6.5")
	assert.Contains(t, prompt, "is there a storm?")
}

func TestBuildPrompt_EmptyContext(t *testing.T) {
	prompt := buildPrompt("hello", EventContext{})
	assert.Contains(t, prompt, "No significant space weather events")
}
