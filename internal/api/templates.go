package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notification-center/internal/db"
	"notification-center/internal/models"
	"notification-center/internal/render"
)

func templateFromInput(req models.TemplateInput) models.Template {
	t := models.Template{
		Name:            req.Name,
		Category:        req.Category,
		Type:            req.Type,
		TitleTemplate:   req.TitleTemplate,
		MessageTemplate: req.MessageTemplate,
		Variables:       req.Variables,
		Channels:        req.Channels,
		Priority:        req.Priority,
		IsActive:        true,
		Metadata:        req.Metadata,
	}
	if t.Priority == "" {
		t.Priority = models.PriorityNormal
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	return t
}

func validateTemplateInput(req models.TemplateInput) string {
	if !models.ValidCategory(req.Category) {
		return "Unknown category"
	}
	if req.Priority != "" && !models.ValidPriority(req.Priority) {
		return "Unknown priority"
	}
	for _, ch := range req.Channels {
		if !models.ValidChannel(ch) {
			return "Unknown channel " + ch
		}
	}
	return ""
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.db.ListTemplates(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to list templates: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	c.JSON(http.StatusOK, gin.H{"data": templates})
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	t, err := h.db.GetTemplate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		h.logger.Errorf("Failed to get template %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get template"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req models.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid template body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := validateTemplateInput(req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	t := templateFromInput(req)
	t.ID = uuid.New()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := h.db.CreateTemplate(c.Request.Context(), t); err != nil {
		h.logger.Errorf("Failed to create template %s: %v", t.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	h.logger.Infof("Created template %s", t.Name)
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	var req models.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid template body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := validateTemplateInput(req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	t := templateFromInput(req)
	t.ID = id

	stored, err := h.db.UpdateTemplate(c.Request.Context(), t)
	if err != nil {
		if errors.Is(err, db.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		h.logger.Errorf("Failed to update template %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update template"})
		return
	}

	c.JSON(http.StatusOK, stored)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template id"})
		return
	}

	if err := h.db.DeleteTemplate(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		h.logger.Errorf("Failed to delete template %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete template"})
		return
	}

	h.logger.Infof("Deleted template %s", id)
	c.Status(http.StatusNoContent)
}

// SendTemplated renders a named template with the supplied data and queues
// the result for delivery.
func (h *Handler) SendTemplated(c *gin.Context) {
	var req models.TemplateSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid templated send request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tpl, err := h.db.GetTemplateByName(c.Request.Context(), req.TemplateName)
	if err != nil {
		if errors.Is(err, db.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		h.logger.Errorf("Failed to load template %q: %v", req.TemplateName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load template"})
		return
	}
	if !tpl.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template is inactive"})
		return
	}
	if missing := render.MissingRequired(tpl, req.Data); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required variables", "missing": missing})
		return
	}

	title, message := render.Render(tpl, req.Data)

	channel := ""
	if len(tpl.Channels) > 0 {
		channel = tpl.Channels[0]
	}
	data := make(map[string]interface{}, len(req.Data))
	for k, v := range req.Data {
		data[k] = v
	}

	created, err := h.svc.Ingest(c.Request.Context(), models.SendRequest{
		Title:      title,
		Message:    message,
		Recipients: req.Recipients,
		Type:       channel,
		Priority:   tpl.Priority,
		Category:   tpl.Category,
		Data:       data,
	}, "http")
	if err != nil {
		h.logger.Errorf("Failed to ingest templated send: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notifications"})
		return
	}

	c.JSON(http.StatusCreated, created[0])
}
