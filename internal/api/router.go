package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"notification-center/internal/cache"
	"notification-center/internal/config"
	"notification-center/internal/db"
	"notification-center/internal/dispatch"
	"notification-center/internal/ws"
)

func NewRouter(database *db.DB, logger *logrus.Logger, cfg config.Config, svc *dispatch.Service, hub *ws.Hub, statsCache *cache.Cache) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	h := NewHandler(database, logger, svc, hub, statsCache)

	api := r.Group(cfg.API.BasePath)
	api.Use(AuthMiddleware(cfg.Auth.JWTSecret))
	{
		// Feed
		api.GET("/notifications", h.ListNotifications)
		api.PATCH("/notifications/:id/read", h.MarkRead)
		api.PATCH("/notifications/mark-all-read", h.MarkAllRead)
		api.GET("/notifications/stats", h.GetStats)
		api.POST("/notifications/retry/:id", h.RetryNotification)

		// Sending
		api.POST("/notifications/send", h.SendNotification)
		api.POST("/notifications/send-template", h.SendTemplated)

		// Preferences
		api.GET("/notifications/preferences", h.GetPreferences)
		api.PUT("/notifications/preferences", h.UpdatePreference)

		// Templates
		api.GET("/notifications/templates", h.ListTemplates)
		api.GET("/notifications/templates/:id", h.GetTemplate)
		api.POST("/notifications/templates", h.CreateTemplate)
		api.PUT("/notifications/templates/:id", h.UpdateTemplate)
		api.DELETE("/notifications/templates/:id", h.DeleteTemplate)

		// Option enums
		api.GET("/notifications/categories", h.GetCategories)
		api.GET("/notifications/channels", h.GetChannels)
		api.GET("/notifications/priorities", h.GetPriorities)

		// Contacts
		api.POST("/contacts", h.UpsertContact)
		api.GET("/contacts", h.ListContacts)

		// Live push for the bell element
		api.GET("/notifications/ws", h.NotificationSocket)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
