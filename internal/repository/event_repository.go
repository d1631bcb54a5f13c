// Local mall events are admin-managed announcements. Visitors can register
// interest ("notify me") against an event; registrations live in their own
// table keyed by (event_id, email).
package repository

import (
	"context"
	"database/sql"
	"strings"
)

// Event represents a row in the `events` table. Dates and times are kept
// as the strings the admin entered; the API treats them as opaque display
// values the way the storefront does.
type Event struct {
	ID           uint64 // events.id
	Title        string // events.title
	Venue        string // events.venue
	ContactEmail string // events.contact_email
	StartDate    string // events.start_date
	EndDate      string // events.end_date
	StartTime    string // events.start_time
	EndTime      string // events.end_time
	ImageURL     string // events.image_url
}

// EventRepo encapsulates event persistence.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventCols = "id, title, venue, contact_email, start_date, end_date, start_time, end_time, image_url"

// Create inserts an event.
func (r *EventRepo) Create(ctx context.Context, e *Event) error {
	const q = `INSERT INTO events (title, venue, contact_email, start_date, end_date, start_time, end_time, image_url)
	           VALUES (?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Venue, e.ContactEmail,
		e.StartDate, e.EndDate, e.StartTime, e.EndTime, e.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// Update rewrites an event.
func (r *EventRepo) Update(ctx context.Context, id uint64, e *Event) error {
	const q = `UPDATE events SET title=?, venue=?, contact_email=?, start_date=?, end_date=?, start_time=?, end_time=?, image_url=?
	           WHERE id=?`
	res, err := r.db.ExecContext(ctx, q, e.Title, e.Venue, e.ContactEmail,
		e.StartDate, e.EndDate, e.StartTime, e.EndTime, e.ImageURL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event and its interest registrations.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM event_notifications WHERE event_id=?", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns all events, soonest start date first.
func (r *EventRepo) ListAll(ctx context.Context) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventCols+" FROM events ORDER BY start_date, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Event
	for rows.Next() {
		e := new(Event)
		if err := rows.Scan(&e.ID, &e.Title, &e.Venue, &e.ContactEmail,
			&e.StartDate, &e.EndDate, &e.StartTime, &e.EndTime, &e.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID fetches one event.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*Event, error) {
	e := new(Event)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE id=? LIMIT 1", id).
		Scan(&e.ID, &e.Title, &e.Venue, &e.ContactEmail, &e.StartDate, &e.EndDate,
			&e.StartTime, &e.EndTime, &e.ImageURL)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// AddNotify registers an email for an event reminder; duplicate
// registrations map to ErrDuplicate.
func (r *EventRepo) AddNotify(ctx context.Context, eventID uint64, email string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO event_notifications (event_id, email) VALUES (?,?)", eventID, email)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrDuplicate
	}
	return err
}
