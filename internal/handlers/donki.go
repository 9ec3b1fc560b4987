package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"spacenow/internal/nasa"
)

// Flares handles GET /api/donki/flares?days=N.
func (h *Handler) Flares(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultFlareDays)
	h.respondCached(c, cacheKey(c), ttlShort, func(ctx context.Context) (any, error) {
		return h.gateway.GetFlares(ctx, nasa.FlareQuery{Days: days})
	})
}

// FlaresRange handles GET /api/donki/flares-range?startDate&endDate.
func (h *Handler) FlaresRange(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate required"})
		return
	}
	h.respondCached(c, cacheKey(c), ttlShort, func(ctx context.Context) (any, error) {
		return h.gateway.GetFlares(ctx, nasa.FlareQuery{StartDate: startDate, EndDate: endDate})
	})
}

// CMEs handles GET /api/donki/cmes?days=N.
func (h *Handler) CMEs(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultCMEDays)
	h.respondCached(c, cacheKey(c), ttlShort, func(ctx context.Context) (any, error) {
		return h.gateway.GetCMEs(ctx, days)
	})
}

// GeomagneticStorms handles GET /api/donki/gst?days=N.
func (h *Handler) GeomagneticStorms(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultStormDays)
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetGeomagneticStorms(ctx, days)
	})
}

// HSS handles GET /api/donki/hss?days=N.
func (h *Handler) HSS(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultStormDays)
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetHSS(ctx, days)
	})
}

// IPS handles GET /api/donki/ips?days=N.
func (h *Handler) IPS(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultStormDays)
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetIPS(ctx, days)
	})
}

// RBE handles GET /api/donki/rbe?days=N.
func (h *Handler) RBE(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultStormDays)
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetRBE(ctx, days)
	})
}

// SEP handles GET /api/donki/sep?days=N.
func (h *Handler) SEP(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultStormDays)
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetSEP(ctx, days)
	})
}

// WSAEnlil handles GET /api/donki/wsa-enlil?days=N.
func (h *Handler) WSAEnlil(c *gin.Context) {
	days := daysQuery(c, "days", nasa.DefaultWSAEnlilDays)
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetWSAEnlil(ctx, days)
	})
}

// CMEAnalysis handles GET /api/donki/cme-analysis. Dates are required
// and validated before any upstream call.
func (h *Handler) CMEAnalysis(c *gin.Context) {
	q := nasa.CMEAnalysisQuery{
		StartDate:        c.Query("startDate"),
		EndDate:          c.Query("endDate"),
		MostAccurateOnly: c.Query("mostAccurateOnly") == "true",
		Speed:            c.Query("speed"),
		HalfAngle:        c.Query("halfAngle"),
		Catalog:          c.Query("catalog"),
	}
	if q.StartDate == "" || q.EndDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate required"})
		return
	}
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetCMEAnalysis(ctx, q)
	})
}

// Notifications handles GET /api/donki/notifications. Dates required.
func (h *Handler) Notifications(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate required"})
		return
	}
	notificationType := c.Query("type")
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetNotifications(ctx, startDate, endDate, notificationType)
	})
}

// MPC handles GET /api/donki/mpc. Dates required.
func (h *Handler) MPC(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate required"})
		return
	}
	h.respondCached(c, cacheKey(c), ttlMedium, func(ctx context.Context) (any, error) {
		return h.gateway.GetMPC(ctx, startDate, endDate)
	})
}
