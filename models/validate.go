package models

import (
	"strings"
	"unicode/utf8"
)

func validRSVPStatus(s string) bool {
	switch s {
	case RSVPStatusPending, RSVPStatusConfirmed, RSVPStatusDeclined:
		return true
	}
	return false
}

func validEventStatus(s string) bool {
	switch s {
	case EventStatusActive, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// runeLen counts characters, not bytes, so multibyte input is measured the
// same way the bounds are written.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

// ValidateEvent checks a new event's fields.
func ValidateEvent(e *Event) error {
	title := strings.TrimSpace(e.Title)
	if title == "" || runeLen(title) > 200 {
		return invalid("title", "must be 1-200 characters")
	}
	e.Title = title
	if runeLen(e.Description) > 1000 {
		return invalid("description", "must be at most 1000 characters")
	}
	if e.EventDate.IsZero() {
		return invalid("event_date", "is required")
	}
	if runeLen(e.Location) > 200 {
		return invalid("location", "must be at most 200 characters")
	}
	if e.MaxAttendees != nil && *e.MaxAttendees < 1 {
		return invalid("max_attendees", "must be at least 1")
	}
	return nil
}

// ValidateEventUpdate checks only the fields present in a partial update.
func ValidateEventUpdate(upd *EventUpdate) error {
	if upd.Title != nil {
		t := strings.TrimSpace(*upd.Title)
		if t == "" || runeLen(t) > 200 {
			return invalid("title", "must be 1-200 characters")
		}
		*upd.Title = t
	}
	if upd.Description != nil && runeLen(*upd.Description) > 1000 {
		return invalid("description", "must be at most 1000 characters")
	}
	if upd.Location != nil && runeLen(*upd.Location) > 200 {
		return invalid("location", "must be at most 200 characters")
	}
	if upd.MaxAttendees != nil && *upd.MaxAttendees < 1 {
		return invalid("max_attendees", "must be at least 1")
	}
	if upd.Status != nil && !validEventStatus(*upd.Status) {
		return invalid("status", "must be active, cancelled or completed")
	}
	return nil
}

// ValidateRSVP checks a registered RSVP submission.
func ValidateRSVP(r *RSVP) error {
	if !validRSVPStatus(r.Status) {
		return invalid("status", "must be pending, confirmed or declined")
	}
	if runeLen(r.DietaryRestrictions) > 500 {
		return invalid("dietary_restrictions", "must be at most 500 characters")
	}
	if runeLen(r.PlusOneName) > 100 {
		return invalid("plus_one_name", "must be at most 100 characters")
	}
	if runeLen(r.Notes) > 1000 {
		return invalid("notes", "must be at most 1000 characters")
	}
	return nil
}

// ValidateGuestRSVP checks a guest submission.
func ValidateGuestRSVP(g *GuestRSVP) error {
	name := strings.TrimSpace(g.Name)
	if name == "" || runeLen(name) > 100 {
		return invalid("name", "must be 1-100 characters")
	}
	g.Name = name
	if g.Email != "" && !strings.Contains(g.Email, "@") {
		return invalid("email", "must be a valid email address")
	}
	if runeLen(g.Phone) > 20 {
		return invalid("phone", "must be at most 20 characters")
	}
	if !validRSVPStatus(g.Status) {
		return invalid("status", "must be pending, confirmed or declined")
	}
	if runeLen(g.DietaryRestrictions) > 500 {
		return invalid("dietary_restrictions", "must be at most 500 characters")
	}
	if runeLen(g.PlusOneName) > 100 {
		return invalid("plus_one_name", "must be at most 100 characters")
	}
	if runeLen(g.Notes) > 1000 {
		return invalid("notes", "must be at most 1000 characters")
	}
	return nil
}

// ValidateUser checks a signup request.
func ValidateUser(u *User, password string) error {
	username := strings.TrimSpace(u.Username)
	if username == "" || runeLen(username) > 50 {
		return invalid("username", "must be 1-50 characters")
	}
	u.Username = username
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return invalid("email", "must be a valid email address")
	}
	if len(password) < 6 {
		return invalid("password", "must be at least 6 characters")
	}
	return nil
}
