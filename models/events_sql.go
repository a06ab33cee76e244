package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type sqlEventRepo struct{ db *sqlx.DB }

func NewSQLEventRepository(db *sqlx.DB) EventRepository { return &sqlEventRepo{db} }

// eventColumns is shared by every read: event fields plus the creator's
// handle and the RSVP aggregates.
const eventColumns = `
e.id, e.title, e.description, e.event_date, e.location, e.max_attendees,
e.created_by, e.status, e.is_public, e.allow_comments, e.track_dietary,
e.created_at, e.updated_at,
COALESCE(u.username, '') AS creator_name,
(SELECT COUNT(*) FROM rsvps WHERE event_id = e.id AND status = 'confirmed') AS confirmed_count,
(SELECT COUNT(*) FROM rsvps WHERE event_id = e.id) AS total_rsvps`

func (r *sqlEventRepo) Create(e *Event) error {
	e.Status = EventStatusActive
	err := r.db.QueryRowx(`
INSERT INTO events (title, description, event_date, location, max_attendees,
                    created_by, status, is_public, allow_comments, track_dietary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at, updated_at
`, e.Title, e.Description, e.EventDate, e.Location, e.MaxAttendees,
		e.CreatedBy, e.Status, e.IsPublic, e.AllowComments, e.TrackDietary).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *sqlEventRepo) GetByID(id int64) (Event, error) {
	var e Event
	err := r.db.Get(&e, `
SELECT `+eventColumns+`
FROM events e
LEFT JOIN users u ON e.created_by = u.id
WHERE e.id = $1
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("failed to select event: %w", err)
	}
	return e, nil
}

func (r *sqlEventRepo) List(opts EventListOptions) ([]Event, int, error) {
	var where []string
	var args []interface{}

	if opts.Status != "" {
		args = append(args, opts.Status)
		where = append(where, fmt.Sprintf("e.status = $%d", len(args)))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(e.title ILIKE $%d OR e.description ILIKE $%d OR e.location ILIKE $%d)", n, n, n))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM events e"+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	args = append(args, opts.Limit, (opts.Page-1)*opts.Limit)
	query := fmt.Sprintf(`
SELECT `+eventColumns+`
FROM events e
LEFT JOIN users u ON e.created_by = u.id
%s
ORDER BY e.event_date ASC
LIMIT $%d OFFSET $%d
`, whereClause, len(args)-1, len(args))

	events := make([]Event, 0)
	if err := r.db.Select(&events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

func (r *sqlEventRepo) ListByOwner(userID int64, page, limit int) ([]Event, int, error) {
	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM events WHERE created_by = $1", userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	events := make([]Event, 0)
	err := r.db.Select(&events, `
SELECT `+eventColumns+`
FROM events e
LEFT JOIN users u ON e.created_by = u.id
WHERE e.created_by = $1
ORDER BY e.event_date ASC
LIMIT $2 OFFSET $3
`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	return events, total, nil
}

func (r *sqlEventRepo) Update(id int64, upd EventUpdate) error {
	var set []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.EventDate != nil {
		add("event_date", *upd.EventDate)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.MaxAttendees != nil {
		add("max_attendees", *upd.MaxAttendees)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.IsPublic != nil {
		add("is_public", *upd.IsPublic)
	}
	if upd.AllowComments != nil {
		add("allow_comments", *upd.AllowComments)
	}
	if upd.TrackDietary != nil {
		add("track_dietary", *upd.TrackDietary)
	}
	if len(set) == 0 {
		return invalid("body", "no fields to update")
	}
	set = append(set, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE events SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel soft-deletes: the row stays, RSVPs stay readable.
func (r *sqlEventRepo) Cancel(id int64) error {
	res, err := r.db.Exec(`
UPDATE events SET status = $1, updated_at = now() WHERE id = $2
`, EventStatusCancelled, id)
	if err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
