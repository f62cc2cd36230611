package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Durations are locked down at the write boundary; the slot engine itself
// accepts any positive number of minutes.
type eventTypeReq struct {
	Title             string `json:"title" binding:"required,min=3,max=150"`
	URL               string `json:"url" binding:"required,min=3,max=150,slug"`
	Description       string `json:"description" binding:"max=300"`
	Duration          int    `json:"duration" binding:"required,oneof=15 30 45 60"`
	VideoCallSoftware string `json:"video_call_software" binding:"omitempty,oneof='Google Meet' 'Zoom Meeting' 'Microsoft Teams'"`
	Active            *bool  `json:"active"`
}

// POST /api/users/:id/event-types
func (a *App) CreateEventTypeHandler(c *gin.Context) {
	userID := c.Param("id")
	var req eventTypeReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	et := &EventType{
		ID:                uuid.NewString(),
		UserID:            userID,
		Title:             req.Title,
		URL:               req.URL,
		Description:       req.Description,
		Duration:          req.Duration,
		VideoCallSoftware: req.VideoCallSoftware,
		Active:            active,
	}
	if err := a.InsertEventType(c.Request.Context(), et); err != nil {
		if strings.Contains(err.Error(), "event_types_user_id_url_key") {
			c.JSON(http.StatusConflict, gin.H{"error": "event url already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, et)
}

// GET /api/users/:id/event-types
func (a *App) ListEventTypesHandler(c *gin.Context) {
	types, err := a.ListEventTypes(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, types)
}

// PUT /api/users/:id/event-types/:event_type_id
func (a *App) UpdateEventTypeHandler(c *gin.Context) {
	userID := c.Param("id")
	var req eventTypeReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	et := &EventType{
		ID:                c.Param("event_type_id"),
		UserID:            userID,
		Title:             req.Title,
		URL:               req.URL,
		Description:       req.Description,
		Duration:          req.Duration,
		VideoCallSoftware: req.VideoCallSoftware,
		Active:            active,
	}
	err := a.UpdateEventType(c.Request.Context(), et)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "event type not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, et)
}

// DELETE /api/users/:id/event-types/:event_type_id
func (a *App) DeleteEventTypeHandler(c *gin.Context) {
	err := a.DeleteEventType(c.Request.Context(), c.Param("id"), c.Param("event_type_id"))
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "event type not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
