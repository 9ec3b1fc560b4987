package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spacenow/internal/middleware"
)

// NewRouter assembles the gin engine with the standard middleware and
// every API route.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	router.GET("/health", h.Health)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")
	{
		donki := api.Group("/donki")
		{
			donki.GET("/flares", h.Flares)
			donki.GET("/flares-range", h.FlaresRange)
			donki.GET("/cmes", h.CMEs)
			donki.GET("/gst", h.GeomagneticStorms)
			donki.GET("/hss", h.HSS)
			donki.GET("/ips", h.IPS)
			donki.GET("/rbe", h.RBE)
			donki.GET("/sep", h.SEP)
			donki.GET("/wsa-enlil", h.WSAEnlil)
			donki.GET("/cme-analysis", h.CMEAnalysis)
			donki.GET("/notifications", h.Notifications)
			donki.GET("/mpc", h.MPC)
		}

		neo := api.Group("/neo")
		{
			neo.GET("/feed", h.NeoFeed)
			neo.GET("/today", h.NeoToday)
			neo.GET("/:id", h.NeoLookup)
		}

		api.GET("/feed", h.Feed)
		api.GET("/feed/rss", h.FeedRSS)
		api.GET("/apod", h.APOD)

		analytics := api.Group("/analytics")
		{
			analytics.GET("/overview", h.AnalyticsOverview)
			analytics.GET("/chart-data/:eventType", h.AnalyticsChartData)
		}

		ai := api.Group("/ai")
		{
			ai.POST("/ask", h.AIAsk)
			ai.GET("/health", h.AIHealth)
		}
	}

	return router
}
