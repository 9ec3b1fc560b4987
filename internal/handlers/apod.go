package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spacenow/internal/nasa"
)

// apodFallbackDate is a date known to carry an image (Andromeda), used
// when the requested date has no picture yet.
const apodFallbackDate = "2024-09-30"

// APOD handles GET /api/apod?date&hd. An upstream 400/404 for the
// requested date retries with the known-good fallback date; a 404
// after that surfaces as a clear 404.
func (h *Handler) APOD(c *gin.Context) {
	date := c.Query("date")
	hd := c.Query("hd") == "true"

	keyDate := date
	if keyDate == "" {
		keyDate = "default"
	}
	key := fmt.Sprintf("apod:%s:%t", keyDate, hd)

	ctx := c.Request.Context()
	if data, err := h.store.Get(ctx, key); err == nil && data != nil {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	out, err := h.gateway.GetAPOD(ctx, date, hd)
	if err != nil {
		if status := nasa.StatusOf(err); status == http.StatusBadRequest || status == http.StatusNotFound {
			out, err = h.gateway.GetAPOD(ctx, apodFallbackDate, hd)
		}
	}
	if err != nil {
		if nasa.StatusOf(err) == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "APOD not found for the requested date"})
			return
		}
		h.respondError(c, err)
		return
	}

	data, err := json.Marshal(out)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.store.Set(ctx, key, data, ttlAPOD); err != nil {
		h.logger.Warn("failed to cache APOD response", zap.Error(err), zap.String("key", key))
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}
