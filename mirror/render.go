package mirror

import (
	"fmt"
	"strings"
	"time"

	"rsvpapp/models"
)

// Render produces the attendance file for one event: a deterministic
// markdown table of every registered and guest RSVP, in the order the
// source returns them (submission time ascending).
func Render(title string, attendees []models.Attendee) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Attendance: %s\n\n", cell(title))
	fmt.Fprintf(&b, "Total responses: %d\n\n", len(attendees))

	b.WriteString("| Kind | Name | Status | Plus one | Dietary | Notes | Submitted |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for _, a := range attendees {
		plusOne := ""
		if a.PlusOne {
			plusOne = "yes"
			if a.PlusOneName != "" {
				plusOne = a.PlusOneName
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			a.Kind,
			cell(a.DisplayName),
			a.Status,
			cell(plusOne),
			cell(a.DietaryRestrictions),
			cell(a.Notes),
			a.CreatedAt.UTC().Format(time.RFC3339),
		)
	}

	return []byte(b.String())
}

// cell makes a value safe for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}
