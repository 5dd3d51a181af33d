// Package notes implements the staff notes widget shown on booking detail
// pages. Notes are written in Markdown and stored alongside their rendered,
// sanitized HTML so pages never render unsanitized input.
//
// Notes are a Widget: they provide their own routes and a component the
// bookings detail page mounts, and they know nothing about bookings beyond
// the booking ID they hang off.
package notes

import "time"

// MaxBodyLength caps a note's Markdown source.
const MaxBodyLength = 10000

// Note is one staff note on a booking.
type Note struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	BodyHTML   string    `json:"body_html"`
	CreatedAt  time.Time `json:"created_at"`
}

// --- Request DTOs ---

// CreateNoteRequest holds the data submitted when adding a note.
type CreateNoteRequest struct {
	Body string `json:"body" form:"body"`
}

// UpdateNoteRequest holds the data submitted when editing a note.
type UpdateNoteRequest struct {
	Body string `json:"body" form:"body"`
}
