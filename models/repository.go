package models

import "time"

// Event lifecycle statuses.
const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// RSVP statuses. The set is flat: any status may move to any other.
const (
	RSVPStatusPending   = "pending"
	RSVPStatusConfirmed = "confirmed"
	RSVPStatusDeclined  = "declined"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Attendee kinds, used when merging registered and guest RSVPs.
const (
	AttendeeKindRegistered = "registered"
	AttendeeKindGuest      = "guest"
)

type Event struct {
	ID            int64     `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	EventDate     time.Time `db:"event_date" json:"event_date"`
	Location      string    `db:"location" json:"location"`
	MaxAttendees  *int64    `db:"max_attendees" json:"max_attendees,omitempty"`
	CreatedBy     int64     `db:"created_by" json:"created_by"`
	Status        string    `db:"status" json:"status"`
	IsPublic      bool      `db:"is_public" json:"is_public"`
	AllowComments bool      `db:"allow_comments" json:"allow_comments"`
	TrackDietary  bool      `db:"track_dietary" json:"track_dietary"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	// Populated by list/get queries.
	CreatorName    string `db:"creator_name" json:"creator_name,omitempty"`
	ConfirmedCount int    `db:"confirmed_count" json:"confirmed_count"`
	TotalRSVPs     int    `db:"total_rsvps" json:"total_rsvps"`
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type RSVP struct {
	ID                  int64     `db:"id" json:"id"`
	EventID             int64     `db:"event_id" json:"event_id"`
	UserID              int64     `db:"user_id" json:"user_id"`
	Status              string    `db:"status" json:"status"`
	DietaryRestrictions string    `db:"dietary_restrictions" json:"dietary_restrictions,omitempty"`
	PlusOne             bool      `db:"plus_one" json:"plus_one"`
	PlusOneName         string    `db:"plus_one_name" json:"plus_one_name,omitempty"`
	Notes               string    `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`

	// Event summary, populated by ListByUser.
	EventTitle    string     `db:"event_title" json:"event_title,omitempty"`
	EventDate     *time.Time `db:"event_date" json:"event_date,omitempty"`
	EventLocation string     `db:"event_location" json:"event_location,omitempty"`
}

type GuestRSVP struct {
	ID                  int64     `db:"id" json:"id"`
	EventID             int64     `db:"event_id" json:"event_id"`
	Name                string    `db:"name" json:"name"`
	Email               string    `db:"email" json:"email,omitempty"`
	Phone               string    `db:"phone" json:"phone,omitempty"`
	Status              string    `db:"status" json:"status"`
	DietaryRestrictions string    `db:"dietary_restrictions" json:"dietary_restrictions,omitempty"`
	PlusOne             bool      `db:"plus_one" json:"plus_one"`
	PlusOneName         string    `db:"plus_one_name" json:"plus_one_name,omitempty"`
	Notes               string    `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// Attendee is one row of the merged registered ∪ guest view for an event.
// ID refers to the rsvps row or the event_guests row depending on Kind.
type Attendee struct {
	ID                  int64     `db:"id" json:"id"`
	Kind                string    `db:"kind" json:"kind"`
	DisplayName         string    `db:"display_name" json:"display_name"`
	Email               string    `db:"email" json:"email,omitempty"`
	Status              string    `db:"status" json:"status"`
	DietaryRestrictions string    `db:"dietary_restrictions" json:"dietary_restrictions,omitempty"`
	PlusOne             bool      `db:"plus_one" json:"plus_one"`
	PlusOneName         string    `db:"plus_one_name" json:"plus_one_name,omitempty"`
	Notes               string    `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the envelope for a total row count.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// EventListOptions filters GET /events.
type EventListOptions struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// EventUpdate carries a partial event update. Nil fields are left unchanged.
type EventUpdate struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	EventDate     *time.Time `json:"event_date"`
	Location      *string    `json:"location"`
	MaxAttendees  *int64     `json:"max_attendees"`
	Status        *string    `json:"status"`
	IsPublic      *bool      `json:"is_public"`
	AllowComments *bool      `json:"allow_comments"`
	TrackDietary  *bool      `json:"track_dietary"`
}

type UserRepository interface {
	Create(u *User, password string) error
	ValidateCredentials(email, plain string) (User, error)
	GetByID(id int64) (User, error)
}

type EventRepository interface {
	Create(e *Event) error
	GetByID(id int64) (Event, error)
	List(opts EventListOptions) ([]Event, int, error)
	ListByOwner(userID int64, page, limit int) ([]Event, int, error)
	Update(id int64, upd EventUpdate) error
	Cancel(id int64) error
}

type RSVPRepository interface {
	// Upsert inserts or updates the row for (EventID, UserID) and reports
	// whether a new row was created.
	Upsert(r *RSVP) (created bool, err error)
	GetByID(id int64) (RSVP, error)
	UpdateStatus(id int64, status, notes string) error
	ListByUser(userID int64, page, limit int) ([]RSVP, int, error)
	ListAttendees(eventID int64) ([]Attendee, error)
}

type GuestRepository interface {
	Create(g *GuestRSVP) error
}
