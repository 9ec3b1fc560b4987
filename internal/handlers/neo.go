package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// NeoFeed handles GET /api/neo/feed?start_date&end_date. Missing
// dates fall back to the last 7 days.
func (h *Handler) NeoFeed(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetNeoFeed(ctx, startDate, endDate)
	})
}

// NeoToday handles GET /api/neo/today.
func (h *Handler) NeoToday(c *gin.Context) {
	h.respondCached(c, cacheKey(c), ttlShort, func(ctx context.Context) (any, error) {
		return h.gateway.GetNeoToday(ctx)
	})
}

// NeoLookup handles GET /api/neo/:id.
func (h *Handler) NeoLookup(c *gin.Context) {
	id := c.Param("id")
	h.respondCached(c, cacheKey(c), ttlNeoLookup, func(ctx context.Context) (any, error) {
		return h.gateway.GetNeoLookup(ctx, id)
	})
}
