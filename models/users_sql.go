package models

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"rsvpapp/utils"
)

type sqlUserRepo struct{ db *sqlx.DB }

func NewSQLUserRepository(db *sqlx.DB) UserRepository { return &sqlUserRepo{db} }

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *sqlUserRepo) Create(u *User, password string) error {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = hashed
	if u.Role == "" {
		u.Role = RoleUser
	}

	err = r.db.QueryRowx(`
INSERT INTO users (username, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`, u.Username, u.Email, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username or email taken: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *sqlUserRepo) ValidateCredentials(email, plain string) (User, error) {
	var u User
	err := r.db.Get(&u, `
SELECT id, username, email, password_hash, role, created_at
FROM users WHERE email = $1
`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to select user: %w", err)
	}

	if !utils.CheckPasswordHash(plain, u.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (r *sqlUserRepo) GetByID(id int64) (User, error) {
	var u User
	err := r.db.Get(&u, `
SELECT id, username, email, password_hash, role, created_at
FROM users WHERE id = $1
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}
