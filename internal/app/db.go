package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

func (a *App) GetUserByID(ctx context.Context, id string) (*User, error) {
	q := `SELECT id,username,full_name,email,timezone,COALESCE(grant_email,''),COALESCE(google_token,''),created_at
	      FROM users WHERE id=$1`
	u := &User{}
	err := a.DB.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Username, &u.FullName, &u.Email, &u.Timezone,
		&u.GrantEmail, &u.GoogleToken, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (a *App) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	q := `SELECT id,username,full_name,email,timezone,COALESCE(grant_email,''),COALESCE(google_token,''),created_at
	      FROM users WHERE username=$1`
	u := &User{}
	err := a.DB.QueryRow(ctx, q, username).Scan(
		&u.ID, &u.Username, &u.FullName, &u.Email, &u.Timezone,
		&u.GrantEmail, &u.GoogleToken, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUserWithDefaultAvailability inserts the host and the seven default
// availability rows (08:00-18:00, all weekdays active) in one transaction so
// onboarding can never leave a partial week behind.
func (a *App) CreateUserWithDefaultAvailability(ctx context.Context, u *User) error {
	tx, err := a.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	insertUser := `INSERT INTO users (id, username, full_name, email, timezone, created_at)
	               VALUES (gen_random_uuid(), $1, $2, $3, $4, $5) RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertUser, u.Username, u.FullName, u.Email, u.Timezone, now).
		Scan(&u.ID, &u.CreatedAt); err != nil {
		return err
	}

	insertRow := `INSERT INTO availability (user_id, weekday, from_time, to_time, is_active, created_at, updated_at)
	              VALUES ($1, $2, $3, $4, true, $5, $5)`
	for weekday := 0; weekday < 7; weekday++ {
		if _, err := tx.Exec(ctx, insertRow, u.ID, weekday, "08:00", "18:00", now); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (a *App) UpdateUserSettings(ctx context.Context, id, fullName, timezone string) error {
	q := `UPDATE users SET full_name=$1, timezone=$2 WHERE id=$3 RETURNING id`
	var updated string
	return a.DB.QueryRow(ctx, q, fullName, timezone, id).Scan(&updated)
}

func (a *App) SaveCalendarGrant(ctx context.Context, userID, grantEmail string, token []byte) error {
	q := `UPDATE users SET grant_email=$1, google_token=$2 WHERE id=$3 RETURNING id`
	var updated string
	return a.DB.QueryRow(ctx, q, grantEmail, token, userID).Scan(&updated)
}

func (a *App) ListAvailability(ctx context.Context, userID string) ([]WeeklyAvailability, error) {
	q := `SELECT id,user_id,weekday,from_time,to_time,is_active,created_at,updated_at
	      FROM availability WHERE user_id=$1 ORDER BY weekday`
	rows, err := a.DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WeeklyAvailability
	for rows.Next() {
		var r WeeklyAvailability
		if err := rows.Scan(&r.ID, &r.UserID, &r.Weekday, &r.FromTime, &r.ToTime,
			&r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetAvailabilityForWeekday returns the host's availability row for one
// weekday, or nil when no row exists. A missing row is a normal "not
// bookable that day" state, not an error.
func (a *App) GetAvailabilityForWeekday(ctx context.Context, userID string, weekday int) (*WeeklyAvailability, error) {
	q := `SELECT id,user_id,weekday,from_time,to_time,is_active,created_at,updated_at
	      FROM availability WHERE user_id=$1 AND weekday=$2`
	r := &WeeklyAvailability{}
	err := a.DB.QueryRow(ctx, q, userID, weekday).Scan(
		&r.ID, &r.UserID, &r.Weekday, &r.FromTime, &r.ToTime,
		&r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (a *App) UpdateAvailabilityRow(ctx context.Context, userID string, rowID int, fromTime, toTime string, isActive bool) (*WeeklyAvailability, error) {
	now := time.Now().UTC()
	q := `UPDATE availability SET from_time=$1, to_time=$2, is_active=$3, updated_at=$4
	      WHERE id=$5 AND user_id=$6
	      RETURNING id,user_id,weekday,from_time,to_time,is_active,created_at,updated_at`
	r := &WeeklyAvailability{}
	err := a.DB.QueryRow(ctx, q, fromTime, toTime, isActive, now, rowID, userID).Scan(
		&r.ID, &r.UserID, &r.Weekday, &r.FromTime, &r.ToTime,
		&r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (a *App) InsertEventType(ctx context.Context, et *EventType) error {
	q := `INSERT INTO event_types (id, user_id, title, url, description, duration, video_call_software, active, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING created_at`
	return a.DB.QueryRow(ctx, q, et.ID, et.UserID, et.Title, et.URL, et.Description,
		et.Duration, et.VideoCallSoftware, et.Active, time.Now().UTC()).Scan(&et.CreatedAt)
}

func (a *App) ListEventTypes(ctx context.Context, userID string) ([]EventType, error) {
	q := `SELECT id,user_id,title,url,COALESCE(description,''),duration,COALESCE(video_call_software,''),active,created_at
	      FROM event_types WHERE user_id=$1 ORDER BY created_at`
	rows, err := a.DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventType
	for rows.Next() {
		var et EventType
		if err := rows.Scan(&et.ID, &et.UserID, &et.Title, &et.URL, &et.Description,
			&et.Duration, &et.VideoCallSoftware, &et.Active, &et.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, et)
	}
	return out, rows.Err()
}

func (a *App) GetEventTypeByURL(ctx context.Context, userID, url string) (*EventType, error) {
	q := `SELECT id,user_id,title,url,COALESCE(description,''),duration,COALESCE(video_call_software,''),active,created_at
	      FROM event_types WHERE user_id=$1 AND url=$2`
	et := &EventType{}
	err := a.DB.QueryRow(ctx, q, userID, url).Scan(
		&et.ID, &et.UserID, &et.Title, &et.URL, &et.Description,
		&et.Duration, &et.VideoCallSoftware, &et.Active, &et.CreatedAt)
	if err != nil {
		return nil, err
	}
	return et, nil
}

func (a *App) GetEventTypeByID(ctx context.Context, id string) (*EventType, error) {
	q := `SELECT id,user_id,title,url,COALESCE(description,''),duration,COALESCE(video_call_software,''),active,created_at
	      FROM event_types WHERE id=$1`
	et := &EventType{}
	err := a.DB.QueryRow(ctx, q, id).Scan(
		&et.ID, &et.UserID, &et.Title, &et.URL, &et.Description,
		&et.Duration, &et.VideoCallSoftware, &et.Active, &et.CreatedAt)
	if err != nil {
		return nil, err
	}
	return et, nil
}

func (a *App) UpdateEventType(ctx context.Context, et *EventType) error {
	q := `UPDATE event_types SET title=$1, url=$2, description=$3, duration=$4, video_call_software=$5, active=$6
	      WHERE id=$7 AND user_id=$8 RETURNING id`
	var updated string
	return a.DB.QueryRow(ctx, q, et.Title, et.URL, et.Description, et.Duration,
		et.VideoCallSoftware, et.Active, et.ID, et.UserID).Scan(&updated)
}

func (a *App) DeleteEventType(ctx context.Context, userID, id string) error {
	res, err := a.DB.Exec(ctx, `DELETE FROM event_types WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (a *App) GetBooking(ctx context.Context, id string) (*Booking, error) {
	q := `SELECT id,user_id,COALESCE(event_type_id,''),guest_name,guest_email,start_at_utc,end_at_utc,status,COALESCE(provider_event_id,''),created_at
	      FROM bookings WHERE id=$1`
	b := &Booking{}
	err := a.DB.QueryRow(ctx, q, id).Scan(
		&b.ID, &b.UserID, &b.EventTypeID, &b.GuestName, &b.GuestEmail,
		&b.StartAtUTC, &b.EndAtUTC, &b.Status, &b.ProviderEventID, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (a *App) ListBookings(ctx context.Context, userID string, from, to time.Time, filtered bool) ([]Booking, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if filtered {
		q := `SELECT id,user_id,COALESCE(event_type_id,''),guest_name,guest_email,start_at_utc,end_at_utc,status,COALESCE(provider_event_id,''),created_at
		      FROM bookings
		      WHERE user_id=$1 AND start_at_utc >= $2 AND start_at_utc < $3
		      ORDER BY start_at_utc`
		rows, err = a.DB.Query(ctx, q, userID, from, to)
	} else {
		q := `SELECT id,user_id,COALESCE(event_type_id,''),guest_name,guest_email,start_at_utc,end_at_utc,status,COALESCE(provider_event_id,''),created_at
		      FROM bookings
		      WHERE user_id=$1
		      ORDER BY start_at_utc`
		rows, err = a.DB.Query(ctx, q, userID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.EventTypeID, &b.GuestName, &b.GuestEmail,
			&b.StartAtUTC, &b.EndAtUTC, &b.Status, &b.ProviderEventID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (a *App) SetBookingProviderEventID(ctx context.Context, id, providerEventID string) error {
	_, err := a.DB.Exec(ctx, `UPDATE bookings SET provider_event_id=$1 WHERE id=$2`, providerEventID, id)
	return err
}
