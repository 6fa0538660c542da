package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notification-center/internal/models"
)

// Option-enum endpoints serve the static registries as {key: label} maps.

func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoryLabels)
}

func (h *Handler) GetChannels(c *gin.Context) {
	c.JSON(http.StatusOK, models.ChannelLabels)
}

func (h *Handler) GetPriorities(c *gin.Context) {
	c.JSON(http.StatusOK, models.PriorityLabels)
}

// UpsertContact registers or replaces the caller's delivery address for one
// channel.
func (h *Handler) UpsertContact(c *gin.Context) {
	userID := currentUserID(c)

	var req models.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid contact body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !models.ValidChannel(req.Channel) || req.Channel == models.ChannelInApp {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown or addressless channel"})
		return
	}

	contact, err := h.db.UpsertContact(c.Request.Context(), models.Contact{
		UserID:  userID,
		Channel: req.Channel,
		Address: req.Address,
	})
	if err != nil {
		h.logger.Errorf("Failed to upsert contact for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save contact"})
		return
	}

	h.logger.Infof("Registered %s contact for user %d", contact.Channel, userID)
	c.JSON(http.StatusOK, contact)
}

func (h *Handler) ListContacts(c *gin.Context) {
	userID := currentUserID(c)

	contacts, err := h.db.ListContacts(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorf("Failed to list contacts for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contacts"})
		return
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	c.JSON(http.StatusOK, gin.H{"data": contacts})
}
