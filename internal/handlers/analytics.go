package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"spacenow/internal/analytics"
)

// defaultAnalyticsDays is the window used when the query omits days.
const defaultAnalyticsDays = 7

// AnalyticsOverview handles GET /api/analytics/overview?days=N.
// Failed categories are omitted from the result rather than failing
// the request.
func (h *Handler) AnalyticsOverview(c *gin.Context) {
	days := daysQuery(c, "days", defaultAnalyticsDays)
	key := fmt.Sprintf("analytics_overview_%d", days)
	h.respondCached(c, key, ttlOverview, func(ctx context.Context) (any, error) {
		return h.analytics.Overview(ctx, days), nil
	})
}

// AnalyticsChartData handles GET /api/analytics/chart-data/:eventType?days=N.
// The event type goes through the alias table; unknown types are a 400
// naming the caller's input.
func (h *Handler) AnalyticsChartData(c *gin.Context) {
	eventType := c.Param("eventType")
	days := daysQuery(c, "days", defaultAnalyticsDays)

	key := fmt.Sprintf("chart_%s_%d", analytics.NormalizeEventType(eventType), days)
	h.respondCached(c, key, ttlChart, func(ctx context.Context) (any, error) {
		return h.analytics.ChartData(ctx, eventType, days)
	})
}
