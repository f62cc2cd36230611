package app

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"meetsync/internal/schedule"
)

// hostLocation resolves the host's stored zone, defaulting to UTC when the
// zone is unset or unknown. Never fails: a missing timezone is a normal
// configuration state.
func hostLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown host timezone, falling back to UTC", "timezone", name)
		return time.UTC
	}
	return loc
}

// hostForBookingPage loads the host and the named event type for a public
// booking route, mapping absences to 404s.
func (a *App) hostForBookingPage(c *gin.Context) (*User, *EventType, bool) {
	ctx := c.Request.Context()

	user, err := a.GetUserByUsername(ctx, c.Param("username"))
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}

	et, err := a.GetEventTypeByURL(ctx, user.ID, c.Param("event_url"))
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "event type not found"})
		return nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if !et.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "event type not found"})
		return nil, nil, false
	}

	return user, et, true
}

// GET /booking/:username/:event_url/slots?date=YYYY-MM-DD[&tz=Zone]
// The whole per-view pipeline: availability row -> host profile -> free/busy
// -> normalize -> grid -> filter -> format. Slots come back as host-zone
// "HH:mm" strings; with tz the response also carries the viewer-zone
// re-projection, computed without re-filtering.
func (a *App) BookingSlotsHandler(c *gin.Context) {
	date, err := schedule.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, et, ok := a.hostForBookingPage(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	loc := hostLocation(user.Timezone)

	row, err := a.GetAvailabilityForWeekday(ctx, user.ID, int(date.Weekday()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var fromTime, toTime string
	if row != nil && row.IsActive {
		fromTime, toTime = row.FromTime, row.ToTime
	}

	busy := a.fetchBusyIntervals(ctx, user, date)

	free, err := schedule.FreeSlots(date, fromTime, toTime, loc, et.Duration,
		busy, time.Now().UTC(), schedule.FilterOptions{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timezone := user.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	times := schedule.FormatInZone(free, loc)
	resp := gin.H{
		"date":     date.String(),
		"timezone": timezone,
		"duration": et.Duration,
		"slots":    times,
	}

	if tz := c.Query("tz"); tz != "" {
		viewerLoc, err := time.LoadLocation(tz)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tz"})
			return
		}
		display, err := schedule.ProjectTimes(date, times, loc, viewerLoc)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["display_timezone"] = tz
		resp["display_slots"] = display
	}

	c.JSON(http.StatusOK, resp)
}

// The guest hands the slot back in the host's frame of reference: the civil
// date plus the host-zone "HH:mm" string it was offered as.
type createBookingReq struct {
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required,hhmm"`
	GuestName  string `json:"guest_name" binding:"required,min=1,max=100"`
	GuestEmail string `json:"guest_email" binding:"required,email"`
}

// POST /booking/:username/:event_url
func (a *App) CreateBookingHandler(c *gin.Context) {
	var req createBookingReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, et, ok := a.hostForBookingPage(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	loc := hostLocation(user.Timezone)

	start, err := schedule.ReconstructStart(date, req.Time, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end := start.Add(time.Duration(et.Duration) * time.Minute)

	now := time.Now().UTC()
	if !start.After(now) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot is in the past"})
		return
	}

	// re-run the availability pipeline and require the submitted slot to be
	// among the offered ones
	row, err := a.GetAvailabilityForWeekday(ctx, user.ID, int(date.Weekday()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var fromTime, toTime string
	if row != nil && row.IsActive {
		fromTime, toTime = row.FromTime, row.ToTime
	}
	busy := a.fetchBusyIntervals(ctx, user, date)
	free, err := schedule.FreeSlots(date, fromTime, toTime, loc, et.Duration,
		busy, now, schedule.FilterOptions{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offered := false
	for _, s := range free {
		if s.StartUTC.Equal(start) {
			offered = true
			break
		}
	}
	if !offered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot not available"})
		return
	}

	tx, err := a.DB.Begin(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer tx.Rollback(ctx)

	// same-start conflict check; two guests racing past the page view can
	// still collide here, and the second one loses
	checkQ := `SELECT id FROM bookings
	           WHERE user_id=$1 AND status='confirmed' AND start_at_utc=$2 FOR UPDATE`
	var existingID string
	err = tx.QueryRow(ctx, checkQ, user.ID, start).Scan(&existingID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existingID != "" {
		c.JSON(http.StatusConflict, gin.H{"error": "slot already booked"})
		return
	}

	b := &Booking{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		EventTypeID: et.ID,
		GuestName:   req.GuestName,
		GuestEmail:  req.GuestEmail,
		StartAtUTC:  start,
		EndAtUTC:    end,
		Status:      "confirmed",
	}
	insertQ := `INSERT INTO bookings
	            (id, user_id, event_type_id, guest_name, guest_email, start_at_utc, end_at_utc, status, created_at)
	            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
	            RETURNING created_at`
	if err := tx.QueryRow(ctx, insertQ, b.ID, b.UserID, b.EventTypeID, b.GuestName,
		b.GuestEmail, b.StartAtUTC, b.EndAtUTC, b.Status).Scan(&b.CreatedAt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit(ctx); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// write the meeting to the host's calendar; the booking stands even if
	// the provider write fails
	if a.Calendar != nil && user.CalendarConnected() {
		eventID, err := a.Calendar.CreateEvent(ctx, user.GoogleToken, user.GrantEmail, ProviderEvent{
			Title:       et.Title,
			Description: et.Description,
			Start:       start,
			End:         end,
			GuestName:   req.GuestName,
			GuestEmail:  req.GuestEmail,
		})
		if err != nil {
			slog.Error("failed to create provider calendar event",
				"booking_id", b.ID, "username", user.Username, "error", err)
		} else {
			b.ProviderEventID = eventID
			if err := a.SetBookingProviderEventID(ctx, b.ID, eventID); err != nil {
				slog.Error("failed to record provider event id", "booking_id", b.ID, "error", err)
			}
		}
	}

	a.publishMail(ctx, MailMessage{
		Type: "booking_created",
		To:   req.GuestEmail,
		Data: BookingMailData{
			GuestName: req.GuestName,
			HostName:  user.FullName,
			Title:     et.Title,
			Date:      date.String(),
			Time:      req.Time,
			Timezone:  user.Timezone,
		},
	})

	c.JSON(http.StatusCreated, b)
}

// GET /api/users/:id/bookings?from=ISO&to=ISO
func (a *App) ListBookingsHandler(c *gin.Context) {
	userID := c.Param("id")
	fromStr := c.Query("from")
	toStr := c.Query("to")

	var (
		from time.Time
		to   time.Time
		err  error
	)

	if fromStr != "" && toStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
			return
		}
	}

	bookings, err := a.ListBookings(c.Request.Context(), userID, from, to, fromStr != "" && toStr != "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// DELETE /api/bookings/:id
func (a *App) CancelBookingHandler(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	b, err := a.GetBooking(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if b.Status == "cancelled" {
		c.JSON(http.StatusConflict, gin.H{"error": "booking already cancelled"})
		return
	}

	res, err := a.DB.Exec(ctx, `UPDATE bookings SET status='cancelled' WHERE id=$1 AND status != 'cancelled'`, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res.RowsAffected() == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "booking not found"})
		return
	}

	user, err := a.GetUserByID(ctx, b.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if b.ProviderEventID != "" && a.Calendar != nil && user.CalendarConnected() {
		if err := a.Calendar.DeleteEvent(ctx, user.GoogleToken, user.GrantEmail, b.ProviderEventID); err != nil {
			slog.Error("failed to delete provider calendar event",
				"booking_id", b.ID, "provider_event_id", b.ProviderEventID, "error", err)
		}
	}

	var title string
	if b.EventTypeID != "" {
		if et, err := a.GetEventTypeByID(ctx, b.EventTypeID); err == nil {
			title = et.Title
		}
	}

	loc := hostLocation(user.Timezone)
	a.publishMail(ctx, MailMessage{
		Type: "booking_cancelled",
		To:   b.GuestEmail,
		Data: BookingMailData{
			GuestName: b.GuestName,
			HostName:  user.FullName,
			Title:     title,
			Date:      b.StartAtUTC.In(loc).Format("2006-01-02"),
			Time:      b.StartAtUTC.In(loc).Format("15:04"),
			Timezone:  user.Timezone,
		},
	})

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
