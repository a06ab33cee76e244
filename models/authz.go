package models

// CanManageEvent is the single owner-scoped authorization gate: event
// updates, cancellation, RSVP moderation and full RSVP listings all go
// through it. Evaluated fresh on every call.
func CanManageEvent(e Event, userID int64, role string) bool {
	return e.CreatedBy == userID || role == RoleAdmin
}
