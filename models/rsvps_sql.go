package models

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type sqlRSVPRepo struct{ db *sqlx.DB }

func NewSQLRSVPRepository(db *sqlx.DB) RSVPRepository { return &sqlRSVPRepo{db} }

// Upsert relies on UNIQUE(event_id, user_id): a second submission for the
// same pair updates the existing row in place, last write wins. The
// "xmax = 0" check distinguishes a fresh insert from a conflict-update.
func (r *sqlRSVPRepo) Upsert(rsvp *RSVP) (bool, error) {
	var created bool
	err := r.db.QueryRowx(`
INSERT INTO rsvps (event_id, user_id, status, dietary_restrictions, plus_one, plus_one_name, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (event_id, user_id) DO UPDATE SET
	status               = EXCLUDED.status,
	dietary_restrictions = EXCLUDED.dietary_restrictions,
	plus_one             = EXCLUDED.plus_one,
	plus_one_name        = EXCLUDED.plus_one_name,
	notes                = EXCLUDED.notes,
	updated_at           = now()
RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
`, rsvp.EventID, rsvp.UserID, rsvp.Status, rsvp.DietaryRestrictions,
		rsvp.PlusOne, rsvp.PlusOneName, rsvp.Notes).
		Scan(&rsvp.ID, &rsvp.CreatedAt, &rsvp.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert rsvp: %w", err)
	}
	return created, nil
}

func (r *sqlRSVPRepo) GetByID(id int64) (RSVP, error) {
	var rsvp RSVP
	err := r.db.Get(&rsvp, `
SELECT id, event_id, user_id, status, dietary_restrictions, plus_one, plus_one_name, notes, created_at, updated_at
FROM rsvps WHERE id = $1
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return RSVP{}, ErrNotFound
	}
	if err != nil {
		return RSVP{}, fmt.Errorf("failed to select rsvp: %w", err)
	}
	return rsvp, nil
}

func (r *sqlRSVPRepo) UpdateStatus(id int64, status, notes string) error {
	res, err := r.db.Exec(`
UPDATE rsvps SET status = $1, notes = $2, updated_at = now() WHERE id = $3
`, status, notes, id)
	if err != nil {
		return fmt.Errorf("failed to update rsvp: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlRSVPRepo) ListByUser(userID int64, page, limit int) ([]RSVP, int, error) {
	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM rsvps WHERE user_id = $1", userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count rsvps: %w", err)
	}

	rsvps := make([]RSVP, 0)
	err := r.db.Select(&rsvps, `
SELECT r.id, r.event_id, r.user_id, r.status, r.dietary_restrictions, r.plus_one,
       r.plus_one_name, r.notes, r.created_at, r.updated_at,
       e.title AS event_title, e.event_date AS event_date, e.location AS event_location
FROM rsvps r
JOIN events e ON r.event_id = e.id
WHERE r.user_id = $1
ORDER BY e.event_date ASC
LIMIT $2 OFFSET $3
`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rsvps, total, nil
}

// ListAttendees merges registered and guest RSVPs for one event, ordered by
// original submission time. This is the view the attendance mirror renders.
func (r *sqlRSVPRepo) ListAttendees(eventID int64) ([]Attendee, error) {
	attendees := make([]Attendee, 0)
	err := r.db.Select(&attendees, `
SELECT r.id, 'registered' AS kind, u.username AS display_name, u.email,
       r.status, r.dietary_restrictions, r.plus_one, r.plus_one_name, r.notes, r.created_at
FROM rsvps r
JOIN users u ON r.user_id = u.id
WHERE r.event_id = $1

UNION ALL

SELECT g.id, 'guest' AS kind, g.name AS display_name, g.email,
       g.status, g.dietary_restrictions, g.plus_one, g.plus_one_name, g.notes, g.created_at
FROM event_guests g
WHERE g.event_id = $1

ORDER BY created_at ASC, id ASC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}
