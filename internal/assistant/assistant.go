// Package assistant is a thin passthrough to the Cohere chat API that
// answers space-weather questions grounded on the dashboard's current
// data. When no API key is configured, or the upstream call fails, it
// degrades to a canned educational answer instead of an error.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"spacenow/internal/nasa"
	"spacenow/pkg/models"
)

// EventContext carries the dashboard data the answer is grounded on.
type EventContext struct {
	Flares []models.Event `json:"flares"`
	CMEs   []models.Event `json:"cmes"`
	GST    []models.Event `json:"gst"`
	NEOs   []models.Event `json:"neos"`
}

// Service talks to Cohere. A zero-value apiKey means fallback mode.
type Service struct {
	client  *nasa.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewService builds the assistant.
func NewService(client *nasa.Client, baseURL, apiKey string, logger *zap.Logger) *Service {
	if baseURL == "" {
		baseURL = "https://api.cohere.ai"
	}
	return &Service{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Configured reports whether an API key is set.
func (s *Service) Configured() bool {
	return s.apiKey != ""
}

// cohereRequest is the upstream chat request body.
type cohereRequest struct {
	Message     string  `json:"message"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type cohereResponse struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

// Ask answers a question. It never fails: any upstream problem is
// logged and answered with the canned fallback.
func (s *Service) Ask(ctx context.Context, question string, eventCtx EventContext) string {
	if !s.Configured() {
		return FallbackAnswer(question)
	}

	answer, err := s.generate(ctx, buildPrompt(question, eventCtx))
	if err != nil {
		s.logger.Warn("assistant upstream failed, using fallback", zap.Error(err))
		return FallbackAnswer(question)
	}
	return answer
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(cohereRequest{
		Message:     prompt,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	data, err := s.client.Fetch(ctx, s.baseURL+"/v1/chat", nasa.RequestOptions{
		Method: http.MethodPost,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + s.apiKey,
		},
		Body: body,
	})
	if err != nil {
		return "", err
	}

	var resp cohereResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if resp.Text == "" {
		if resp.Message != "" {
			return "", fmt.Errorf("chat upstream error: %s", resp.Message)
		}
		return "", fmt.Errorf("empty chat response")
	}
	return strings.TrimSpace(resp.Text), nil
}

// buildPrompt formats the live data into an educational prompt.
func buildPrompt(question string, eventCtx EventContext) string {
	var data strings.Builder

	if len(eventCtx.Flares) > 0 {
		data.WriteString("\nRECENT SOLAR FLARES:\n")
		for _, f := range head(eventCtx.Flares, 5) {
			fmt.Fprintf(&data, "- Class %s, date: %s\n", f.String("classType"), f.String("beginTime"))
		}
	}
	if len(eventCtx.CMEs) > 0 {
		data.WriteString("\nRECENT CORONAL MASS EJECTIONS:\n")
		for _, c := range head(eventCtx.CMEs, 3) {
			speed := "unknown"
			if analyses := c.List("cmeAnalyses"); len(analyses) > 0 {
				if v, ok := analyses[0].Number("speed"); ok {
					speed = fmt.Sprintf("%.0f", v)
				}
			}
			fmt.Fprintf(&data, "- Speed: %s km/s, activity: %s\n", speed, c.String("activityID"))
		}
	}
	if len(eventCtx.GST) > 0 {
		data.WriteString("\nRECENT GEOMAGNETIC STORMS:\n")
		for _, g := range head(eventCtx.GST, 3) {
			kp := "unknown"
			if readings := g.List("allKpIndex"); len(readings) > 0 {
				if v, ok := readings[0].Number("kpIndex"); ok {
					kp = fmt.Sprintf("%.1f", v)
				}
			}
			fmt.Fprintf(&data, "- Kp index: %s, start: %s\n", kp, g.String("startTime"))
		}
	}
	if len(eventCtx.NEOs) > 0 {
		data.WriteString("\nNEAR-EARTH OBJECTS TODAY:\n")
		for _, neo := range head(eventCtx.NEOs, 3) {
			fmt.Fprintf(&data, "- %s\n", neo.String("name"))
		}
	}
	if data.Len() == 0 {
		data.WriteString("\nNo significant space weather events right now.\n")
	}

	return fmt.Sprintf(`You are an educational space weather assistant for kids and the general public. Explain complex concepts in a simple, friendly way.

CURRENT NASA DATA:
%s
GUIDELINES:
- Use simple language, as if talking to a 10-year-old
- Compare with everyday things (plane speeds, home-to-school distances)
- Explain the real-life impact (GPS, communications, satellites, auroras)
- Be brief but complete (300 words max)
- Mention current data from the context when relevant
- Keep a positive, enthusiastic tone

USER QUESTION: %s

Answer in an educational way, grounded on the data above:`, data.String(), question)
}

// FallbackAnswer picks a canned response matching the question topic.
func FallbackAnswer(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "cme") || strings.Contains(q, "coronal"):
		return "Coronal Mass Ejections (CMEs) are massive bursts of solar plasma that can disturb Earth's magnetosphere, causing geomagnetic storms and auroras."
	case strings.Contains(q, "flare") || strings.Contains(q, "solar"):
		return "Solar flares are intense bursts of electromagnetic radiation in the Sun's atmosphere, classified from class A (weakest) to X (strongest)."
	case strings.Contains(q, "asteroid") || strings.Contains(q, "neo"):
		return "Near-Earth Objects (NEOs) are asteroids and comets whose orbits bring them close to our planet. NASA monitors them continuously to watch for potential impacts."
	case strings.Contains(q, "storm") || strings.Contains(q, "geomagnetic"):
		return "Geomagnetic storms are disturbances of Earth's magnetic field caused by the solar wind and CMEs, classified on a G1 to G5 scale."
	default:
		return "Space weather covers phenomena like solar flares, coronal mass ejections, geomagnetic storms and solar radiation. These events can affect satellites, communications and power grids on Earth."
	}
}

func head(events []models.Event, n int) []models.Event {
	if len(events) > n {
		return events[:n]
	}
	return events
}
