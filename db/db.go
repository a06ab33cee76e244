package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"rsvpapp/utils"
)

// Open returns the shared connection pool. It is created once in main and
// injected into the repositories; nothing opens per-request handles.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return db, nil
}

// Migrate creates the schema. UNIQUE(event_id, user_id) on rsvps is what
// makes registered RSVP submission a storage-level upsert; event_guests
// deliberately has no such constraint.
func Migrate(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			event_date TIMESTAMPTZ NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			max_attendees BIGINT,
			created_by BIGINT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'active',
			is_public BOOLEAN NOT NULL DEFAULT TRUE,
			allow_comments BOOLEAN NOT NULL DEFAULT TRUE,
			track_dietary BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS rsvps (
			id BIGSERIAL PRIMARY KEY,
			event_id BIGINT NOT NULL REFERENCES events(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'pending',
			dietary_restrictions TEXT NOT NULL DEFAULT '',
			plus_one BOOLEAN NOT NULL DEFAULT FALSE,
			plus_one_name TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (event_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS event_guests (
			id BIGSERIAL PRIMARY KEY,
			event_id BIGINT NOT NULL REFERENCES events(id),
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'confirmed',
			dietary_restrictions TEXT NOT NULL DEFAULT '',
			plus_one BOOLEAN NOT NULL DEFAULT FALSE,
			plus_one_name TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_date ON events(event_date)`,
		`CREATE INDEX IF NOT EXISTS idx_rsvps_event ON rsvps(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rsvps_user ON rsvps(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_event_guests_event ON event_guests(event_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// SeedAdmin creates the default administrator account if none exists.
func SeedAdmin(db *sqlx.DB, password string) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users WHERE role = 'admin'"); err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	_, err = db.Exec(`
INSERT INTO users (username, email, password_hash, role)
VALUES ('admin', 'admin@rsvp.local', $1, 'admin')
`, hash)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Println("Default admin user created.")
	return nil
}
