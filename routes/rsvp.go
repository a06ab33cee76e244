package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rsvpapp/models"
)

// loadActiveEvent fetches an event and checks it accepts new RSVPs.
func (d *deps) loadActiveEvent(c *gin.Context, eventID int64) (models.Event, bool) {
	event, err := d.events.GetByID(eventID)
	if err != nil {
		respondError(c, err)
		return models.Event{}, false
	}
	if event.Status != models.EventStatusActive {
		respondError(c, models.ErrInvalidState)
		return models.Event{}, false
	}
	return event, true
}

// POST /rsvp/submit — upsert on (event, user): a resubmission updates the
// existing row, last write wins.
func (d *deps) submitRSVP(c *gin.Context) {
	var rsvp models.RSVP
	if err := c.ShouldBindJSON(&rsvp); err != nil {
		respondBadJSON(c)
		return
	}
	if rsvp.EventID < 1 {
		respondError(c, &models.ValidationError{Field: "event_id", Reason: "is required"})
		return
	}
	rsvp.UserID = c.GetInt64("userId")

	if err := models.ValidateRSVP(&rsvp); err != nil {
		respondError(c, err)
		return
	}

	event, ok := d.loadActiveEvent(c, rsvp.EventID)
	if !ok {
		return
	}

	created, err := d.rsvps.Upsert(&rsvp)
	if err != nil {
		respondError(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvent(c, event.ID)
	}
	// The response does not wait on the mirror; a failed refresh is
	// recovered by the next RSVP write on this event.
	d.mirror.ScheduleRefresh(event.ID, event.Title)

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "RSVP submitted successfully", "status": rsvp.Status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RSVP updated successfully", "status": rsvp.Status})
}

// POST /rsvp/guest — no identity, no deduplication: always a new row.
func (d *deps) submitGuestRSVP(c *gin.Context) {
	var guest models.GuestRSVP
	if err := c.ShouldBindJSON(&guest); err != nil {
		respondBadJSON(c)
		return
	}
	if guest.EventID < 1 {
		respondError(c, &models.ValidationError{Field: "event_id", Reason: "is required"})
		return
	}

	if err := models.ValidateGuestRSVP(&guest); err != nil {
		respondError(c, err)
		return
	}

	event, ok := d.loadActiveEvent(c, guest.EventID)
	if !ok {
		return
	}

	if err := d.guests.Create(&guest); err != nil {
		respondError(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvent(c, event.ID)
	}
	d.mirror.ScheduleRefresh(event.ID, event.Title)

	c.JSON(http.StatusCreated, gin.H{"message": "Guest RSVP submitted successfully"})
}

// GET /rsvp/my-rsvps
func (d *deps) myRSVPs(c *gin.Context) {
	page, limit := pageParams(c)
	rsvps, total, err := d.rsvps.ListByUser(c.GetInt64("userId"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rsvps":      rsvps,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GET /rsvp/event/:eventId — owner or admin only; merged registered ∪ guest
// view, submission order.
func (d *deps) eventRSVPs(c *gin.Context) {
	eventID, ok := idParam(c, "eventId")
	if !ok {
		return
	}

	event, err := d.events.GetByID(eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !models.CanManageEvent(event, c.GetInt64("userId"), c.GetString("role")) {
		respondError(c, models.ErrForbidden)
		return
	}

	attendees, err := d.rsvps.ListAttendees(eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rsvps": attendees})
}

// PUT /rsvp/:rsvpId — moderation of a registered RSVP by the event owner or
// an admin.
func (d *deps) moderateRSVP(c *gin.Context) {
	rsvpID, ok := idParam(c, "rsvpId")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c)
		return
	}
	check := models.RSVP{Status: req.Status, Notes: req.Notes}
	if err := models.ValidateRSVP(&check); err != nil {
		respondError(c, err)
		return
	}

	rsvp, err := d.rsvps.GetByID(rsvpID)
	if err != nil {
		respondError(c, err)
		return
	}
	event, err := d.events.GetByID(rsvp.EventID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !models.CanManageEvent(event, c.GetInt64("userId"), c.GetString("role")) {
		respondError(c, models.ErrForbidden)
		return
	}

	if err := d.rsvps.UpdateStatus(rsvpID, req.Status, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvent(c, event.ID)
	}
	d.mirror.ScheduleRefresh(event.ID, event.Title)

	c.JSON(http.StatusOK, gin.H{"message": "RSVP updated successfully"})
}
