package app

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

type createUserReq struct {
	Username string `json:"username" binding:"required,min=3,max=50,slug"`
	FullName string `json:"full_name" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Timezone string `json:"timezone" binding:"omitempty,timezone"`
}

// POST /api/users
// Onboarding: creates the host and seven default availability rows
// (08:00-18:00, every weekday active).
func (a *App) CreateUserHandler(c *gin.Context) {
	var req createUserReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	u := &User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Timezone: timezone,
	}
	if err := a.CreateUserWithDefaultAvailability(c.Request.Context(), u); err != nil {
		if strings.Contains(err.Error(), "users_username_key") {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, u)
}

type updateSettingsReq struct {
	FullName string `json:"full_name" binding:"required,min=3,max=50"`
	Timezone string `json:"timezone" binding:"required,timezone"`
}

// PUT /api/users/:id/settings
func (a *App) UpdateSettingsHandler(c *gin.Context) {
	userID := c.Param("id")
	var req updateSettingsReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := a.UpdateUserSettings(c.Request.Context(), userID, req.FullName, req.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GET /api/users/:id/availability
func (a *App) ListAvailabilityHandler(c *gin.Context) {
	rows, err := a.ListAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// updateAvailabilityReq is deliberately strict: unknown fields are rejected
// and times must be in-range "HH:mm" values before anything is applied.
type updateAvailabilityReq struct {
	FromTime string `json:"from_time" binding:"required,hhmm"`
	ToTime   string `json:"to_time" binding:"required,hhmm"`
	IsActive bool   `json:"is_active"`
}

// PUT /api/users/:id/availability/:row_id
func (a *App) UpdateAvailabilityHandler(c *gin.Context) {
	userID := c.Param("id")
	rowID, err := strconv.Atoi(c.Param("row_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid availability row id"})
		return
	}

	var req updateAvailabilityReq
	if err := decodeStrict(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	row, err := a.UpdateAvailabilityRow(c.Request.Context(), userID, rowID, req.FromTime, req.ToTime, req.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "availability not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, row)
}
