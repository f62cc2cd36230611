package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"meetsync/internal/config"
	"meetsync/internal/schedule"
)

// ProviderEvent is the meeting written to the host's external calendar when
// a guest books a slot.
type ProviderEvent struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	GuestName   string
	GuestEmail  string
}

// CalendarProvider is the external calendar integration. FreeBusy takes and
// returns epoch seconds, matching the provider's wire shape; the schedule
// package converts to instants.
type CalendarProvider interface {
	FreeBusy(ctx context.Context, token []byte, email string, windowStart, windowEnd int64) ([]schedule.FreeBusySlot, error)
	CreateEvent(ctx context.Context, token []byte, calendarID string, ev ProviderEvent) (string, error)
	DeleteEvent(ctx context.Context, token []byte, calendarID, eventID string) error
}

// GoogleCalendar implements CalendarProvider against the Google Calendar API.
type GoogleCalendar struct {
	Config *oauth2.Config
}

// NewGoogleCalendar builds the OAuth2 config; returns nil when the Google
// credentials are not configured, which downstream treats as "no
// integration available".
func NewGoogleCalendar(cfg *config.Config) *GoogleCalendar {
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" || cfg.Google.RedirectURL == "" {
		return nil
	}

	return &GoogleCalendar{
		Config: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes: []string{
				calendar.CalendarScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (g *GoogleCalendar) service(ctx context.Context, tokenJSON []byte) (*calendar.Service, error) {
	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("invalid stored token: %w", err)
	}
	client := g.Config.Client(ctx, &token)
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

func (g *GoogleCalendar) FreeBusy(ctx context.Context, token []byte, email string, windowStart, windowEnd int64) ([]schedule.FreeBusySlot, error) {
	srv, err := g.service(ctx, token)
	if err != nil {
		return nil, err
	}

	res, err := srv.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: time.Unix(windowStart, 0).UTC().Format(time.RFC3339),
		TimeMax: time.Unix(windowEnd, 0).UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: email}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	cal, ok := res.Calendars[email]
	if !ok {
		return nil, nil
	}

	var slots []schedule.FreeBusySlot
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("bad busy period start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("bad busy period end %q: %w", period.End, err)
		}
		slots = append(slots, schedule.FreeBusySlot{StartTime: start.Unix(), EndTime: end.Unix()})
	}
	return slots, nil
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, token []byte, calendarID string, ev ProviderEvent) (string, error) {
	srv, err := g.service(ctx, token)
	if err != nil {
		return "", err
	}

	event := &calendar.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Start:       &calendar.EventDateTime{DateTime: ev.Start.UTC().Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: ev.End.UTC().Format(time.RFC3339)},
		Attendees: []*calendar.EventAttendee{
			{DisplayName: ev.GuestName, Email: ev.GuestEmail, ResponseStatus: "accepted"},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}

	created, err := srv.Events.Insert(calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.Id, nil
}

func (g *GoogleCalendar) DeleteEvent(ctx context.Context, token []byte, calendarID, eventID string) error {
	srv, err := g.service(ctx, token)
	if err != nil {
		return err
	}
	return srv.Events.Delete(calendarID, eventID).SendUpdates("all").Context(ctx).Do()
}

// fetchBusyIntervals returns the host's busy periods for the target date,
// requested over a window padded a full day each side so overnight busy
// periods are not clipped. Fail-open: a missing credential or a provider
// failure both yield the empty set, and the page shows the host as free.
func (a *App) fetchBusyIntervals(ctx context.Context, u *User, date schedule.Date) []schedule.BusyInterval {
	if a.Calendar == nil || !u.CalendarConnected() {
		return nil
	}

	dayStart := time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC)
	windowStart := dayStart.AddDate(0, 0, -1).Unix()
	windowEnd := dayStart.AddDate(0, 0, 2).Unix()

	slots, err := a.Calendar.FreeBusy(ctx, u.GoogleToken, u.GrantEmail, windowStart, windowEnd)
	if err != nil {
		slog.Error("free/busy lookup failed, treating host as free",
			"username", u.Username, "date", date.String(), "error", err)
		return nil
	}
	return schedule.BusyFromFreeBusy(slots)
}

const oauthStatePrefix = "oauth_state:"

// GET /api/calendar/auth?user_id=...
// Starts the OAuth flow. The state nonce is parked in redis with a TTL and
// consumed exactly once by the callback.
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	gcal, ok := a.Calendar.(*GoogleCalendar)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}

	state := uuid.NewString()
	ttl := time.Duration(a.Cfg.Redis.StateExpiration) * time.Second
	if err := a.RDB.Set(c.Request.Context(), oauthStatePrefix+state, userID, ttl).Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_url": gcal.Config.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state":    state,
	})
}

// GET /oauth2callback
// Exchanges the code, resolves the primary calendar's email and stores the
// grant on the user.
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	gcal, ok := a.Calendar.(*GoogleCalendar)
	if !ok || gcal == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and state required"})
		return
	}

	ctx := c.Request.Context()
	userID, err := a.RDB.GetDel(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown or expired state"})
		return
	}

	token, err := gcal.Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}
	tokenJSON, err := json.Marshal(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// the primary calendar's id is the account email
	srv, err := gcal.service(ctx, tokenJSON)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	primary, err := srv.CalendarList.Get("primary").Context(ctx).Do()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve primary calendar"})
		return
	}

	if err := a.SaveCalendarGrant(ctx, userID, primary.Id, tokenJSON); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "calendar connected", "grant_email": primary.Id})
}
