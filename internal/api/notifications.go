package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"notification-center/internal/cache"
	"notification-center/internal/db"
	"notification-center/internal/dispatch"
	"notification-center/internal/models"
	"notification-center/internal/ws"
)

type Handler struct {
	db     *db.DB
	logger *logrus.Logger
	svc    *dispatch.Service
	hub    *ws.Hub
	cache  *cache.Cache
}

// NewHandler wires the API surface. cache may be nil when Redis is not
// configured; handlers fall back to Postgres.
func NewHandler(database *db.DB, logger *logrus.Logger, svc *dispatch.Service, hub *ws.Hub, statsCache *cache.Cache) *Handler {
	return &Handler{db: database, logger: logger, svc: svc, hub: hub, cache: statsCache}
}

// ListNotifications returns the caller's feed, filtered by the optional
// category, status, and unread query parameters.
func (h *Handler) ListNotifications(c *gin.Context) {
	userID := currentUserID(c)

	filter := models.Filter{
		Category:   c.Query("category"),
		Status:     models.Status(c.Query("status")),
		UnreadOnly: c.Query("unread") == "true",
	}
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	notifications, err := h.db.ListNotifications(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.Errorf("Failed to list notifications for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	h.logger.Infof("Retrieved %d notifications for user %d", len(notifications), userID)
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

// MarkRead flips the read flag on one of the caller's notifications and
// returns the updated record.
func (h *Handler) MarkRead(c *gin.Context) {
	userID := currentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	n, err := h.db.MarkRead(c.Request.Context(), id, userID)
	if err != nil {
		h.logger.Errorf("Failed to mark notification %s read: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	h.invalidateStats(c, userID)

	c.JSON(http.StatusOK, n)
}

// MarkAllRead flips the read flag on every unread notification of the
// caller, optionally narrowed to one category.
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := currentUserID(c)

	var body struct {
		Category string `json:"category"`
	}
	// An empty body means "all categories".
	_ = c.ShouldBindJSON(&body)
	if body.Category != "" && !models.ValidCategory(body.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	updated, err := h.db.MarkAllRead(c.Request.Context(), userID, body.Category)
	if err != nil {
		h.logger.Errorf("Failed to mark all read for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark all read"})
		return
	}
	h.invalidateStats(c, userID)

	h.logger.Infof("Marked %d notifications read for user %d", updated, userID)
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// GetStats serves the bell counters, cache-aside through Redis.
func (h *Handler) GetStats(c *gin.Context) {
	userID := currentUserID(c)
	ctx := c.Request.Context()

	if h.cache != nil {
		if stats, err := h.cache.GetStats(ctx, userID); err == nil {
			c.JSON(http.StatusOK, stats)
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warnf("Stats cache read failed for user %d: %v", userID, err)
		}
	}

	stats, err := h.db.GetStats(ctx, userID)
	if err != nil {
		h.logger.Errorf("Failed to get stats for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats"})
		return
	}
	if h.cache != nil {
		if err := h.cache.SetStats(ctx, userID, stats); err != nil {
			h.logger.Warnf("Stats cache write failed for user %d: %v", userID, err)
		}
	}

	c.JSON(http.StatusOK, stats)
}

// SendNotification accepts a custom send request and queues delivery. The
// first created record is returned immediately; dispatch happens
// asynchronously.
func (h *Handler) SendNotification(c *gin.Context) {
	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid send request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.svc.Ingest(c.Request.Context(), req, "http")
	if err != nil {
		h.logger.Errorf("Failed to ingest send request: %v", err)
		if len(created) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
		return
	}

	c.JSON(http.StatusCreated, created[0])
}

// RetryNotification resubmits a failed notification, bumping retry_count.
func (h *Handler) RetryNotification(c *gin.Context) {
	userID := currentUserID(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	n, err := h.db.GetNotification(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	if n.RecipientID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if err := h.svc.Resubmit(c.Request.Context(), n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Retry queued"})
}

func (h *Handler) invalidateStats(c *gin.Context, userID int64) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateStats(c.Request.Context(), userID); err != nil {
		h.logger.Warnf("Failed to invalidate stats cache for user %d: %v", userID, err)
	}
}
