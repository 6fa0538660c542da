package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notification-center/internal/models"
)

// GetPreferences returns the caller's preference records. Categories without
// a record are omitted; clients apply the documented default for those.
func (h *Handler) GetPreferences(c *gin.Context) {
	userID := currentUserID(c)

	prefs, err := h.db.ListPreferences(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorf("Failed to list preferences for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list preferences"})
		return
	}
	if prefs == nil {
		prefs = []models.Preference{}
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"preferences": prefs}})
}

// UpdatePreference upserts the single record for (caller, category).
// Preferences are never deleted, only deactivated via is_active.
func (h *Handler) UpdatePreference(c *gin.Context) {
	userID := currentUserID(c)

	var req models.PreferenceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid preference update: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}
	if !models.ValidFrequency(req.Frequency.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown frequency"})
		return
	}
	for _, ch := range req.Channels {
		if !models.ValidChannel(ch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown channel " + ch})
			return
		}
	}

	pref := models.Preference{
		UserID:    userID,
		Category:  req.Category,
		Channels:  req.Channels,
		Frequency: req.Frequency.Type,
		IsActive:  req.IsActive,
		Settings:  req.Settings,
	}
	if req.QuietHours != nil {
		pref.QuietStart = req.QuietHours.Start
		pref.QuietEnd = req.QuietHours.End
	}

	stored, err := h.db.UpsertPreference(c.Request.Context(), pref)
	if err != nil {
		h.logger.Errorf("Failed to upsert preference for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preference"})
		return
	}

	h.logger.Infof("Updated %s preference for user %d", stored.Category, userID)
	c.JSON(http.StatusOK, stored)
}
