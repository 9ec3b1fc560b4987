package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spacenow/internal/feed"
	"spacenow/internal/nasa"
)

func feedOptions(c *gin.Context) feed.Options {
	return feed.Options{
		FlaresDays: daysQuery(c, "flares_days", nasa.DefaultFlareDays),
		CMEsDays:   daysQuery(c, "cmes_days", nasa.DefaultCMEDays),
		GSTDays:    daysQuery(c, "gst_days", nasa.DefaultStormDays),
	}
}

// Feed handles GET /api/feed. Category failures inside the merge are
// tolerated by the feed service; the route itself never surfaces a
// "not found" class failure, degrading to an empty list instead.
func (h *Handler) Feed(c *gin.Context) {
	opts := feedOptions(c)
	h.respondCached(c, cacheKey(c), ttlShort, func(ctx context.Context) (any, error) {
		return h.feed.Build(ctx, opts), nil
	})
}

// FeedRSS handles GET /api/feed/rss, the merged feed as Atom.
func (h *Handler) FeedRSS(c *gin.Context) {
	ctx := c.Request.Context()
	key := cacheKey(c)

	if data, err := h.store.Get(ctx, key); err == nil && data != nil {
		c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", data)
		return
	}

	items := h.feed.Build(ctx, feedOptions(c))
	out, err := feed.RenderRSS(items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Set(ctx, key, []byte(out), 30*time.Second); err != nil {
		h.logger.Warn("failed to cache RSS feed", zap.Error(err), zap.String("key", key))
	}
	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(out))
}
