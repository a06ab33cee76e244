package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rsvpapp/models"
)

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	// Visibility flags default to open; absent JSON fields leave them alone.
	event := models.Event{IsPublic: true, AllowComments: true}
	if err := c.ShouldBindJSON(&event); err != nil {
		respondBadJSON(c)
		return
	}
	event.CreatedBy = c.GetInt64("userId")

	if err := models.ValidateEvent(&event); err != nil {
		respondError(c, err)
		return
	}
	if err := d.events.Create(&event); err != nil {
		respondError(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgeEventsList(c)
	}
	// The event exists regardless of whether its mirror workspace can be
	// created; workspace failures are logged inside the mirror.
	d.mirror.ScheduleWorkspace(event.ID, event.Title)

	c.JSON(http.StatusCreated, gin.H{"message": "Event created successfully", "event": event})
}

// GET /events
func (d *deps) getEvents(c *gin.Context) {
	page, limit := pageParams(c)
	events, total, err := d.events.List(models.EventListOptions{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	event, err := d.events.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

// GET /events/my-events
func (d *deps) myEvents(c *gin.Context) {
	page, limit := pageParams(c)
	events, total, err := d.events.ListByOwner(c.GetInt64("userId"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// PUT /events/:id
func (d *deps) updateEvent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	event, err := d.events.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !models.CanManageEvent(event, c.GetInt64("userId"), c.GetString("role")) {
		respondError(c, models.ErrForbidden)
		return
	}

	var upd models.EventUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBadJSON(c)
		return
	}
	if err := models.ValidateEventUpdate(&upd); err != nil {
		respondError(c, err)
		return
	}
	if err := d.events.Update(id, upd); err != nil {
		respondError(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvent(c, id)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully"})
}

// DELETE /events/:id — soft delete; RSVP rows stay readable.
func (d *deps) deleteEvent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	event, err := d.events.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !models.CanManageEvent(event, c.GetInt64("userId"), c.GetString("role")) {
		respondError(c, models.ErrForbidden)
		return
	}

	if err := d.events.Cancel(id); err != nil {
		respondError(c, err)
		return
	}

	if d.inv != nil {
		d.inv.PurgeEvent(c, id)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}
