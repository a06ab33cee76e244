package models

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

type sqlGuestRepo struct{ db *sqlx.DB }

func NewSQLGuestRepository(db *sqlx.DB) GuestRepository { return &sqlGuestRepo{db} }

// Create always inserts: guest submissions are never deduplicated.
func (r *sqlGuestRepo) Create(g *GuestRSVP) error {
	err := r.db.QueryRowx(`
INSERT INTO event_guests (event_id, name, email, phone, status, dietary_restrictions, plus_one, plus_one_name, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at, updated_at
`, g.EventID, g.Name, g.Email, g.Phone, g.Status,
		g.DietaryRestrictions, g.PlusOne, g.PlusOneName, g.Notes).
		Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert guest rsvp: %w", err)
	}
	return nil
}
