package app

import "time"

// User is a host: the owner of a booking page. Timezone is the single source
// of truth for interpreting the user's wall-clock availability and for
// host-facing display; it defaults to UTC when never set. GrantEmail plus a
// stored provider token form the external-calendar credential.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Timezone   string    `json:"timezone"`
	GrantEmail string    `json:"grant_email,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`

	// serialized OAuth token, never rendered in responses
	GoogleToken []byte `json:"-"`
}

// CalendarConnected reports whether the host has a usable external-calendar
// credential. Absence is a normal state: the booking page then treats the
// host as fully free.
func (u *User) CalendarConnected() bool {
	return len(u.GoogleToken) > 0 && u.GrantEmail != ""
}

// WeeklyAvailability is one host's availability window for one weekday.
// Exactly seven rows exist per host after onboarding. FromTime and ToTime
// are wall-clock "HH:mm" values with no date or zone attached; they are
// interpreted against the owner's timezone at read time.
type WeeklyAvailability struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	Weekday   int       `json:"weekday"` // time.Weekday numbering, Sunday = 0
	FromTime  string    `json:"from_time"`
	ToTime    string    `json:"to_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// EventType is a bookable meeting definition; Duration in minutes is the
// slot length and grid step on the booking page.
type EventType struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	URL               string    `json:"url"`
	Description       string    `json:"description,omitempty"`
	Duration          int       `json:"duration"`
	VideoCallSoftware string    `json:"video_call_software,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
}

type Booking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	EventTypeID     string    `json:"event_type_id,omitempty"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
	StartAtUTC      time.Time `json:"start_at_utc"`
	EndAtUTC        time.Time `json:"end_at_utc"`
	Status          string    `json:"status"`
	ProviderEventID string    `json:"provider_event_id,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// MailMessage is the envelope published to the email queue; the mailer
// worker switches on Type to pick a template.
type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type BookingMailData struct {
	GuestName string `json:"guestName"`
	HostName  string `json:"hostName"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Timezone  string `json:"timezone"`
}
