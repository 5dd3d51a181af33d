// Package bookings lists, inspects and updates collection bookings. Rows are
// read from MariaDB and checked at the repository boundary, so everything
// past the repository can rely on a known status and a well-formed quote.
package bookings

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is a booking's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Booking is one collection job.
type Booking struct {
	ID             string     `json:"id"`
	UserID         *string    `json:"user_id"`
	CustomerName   string     `json:"customer_name,omitempty"`
	CustomerEmail  string     `json:"customer_email,omitempty"`
	Postcode       string     `json:"postcode"`
	Address        string     `json:"address"`
	Geolocation    *string    `json:"geolocation"`
	Status         Status     `json:"status"`
	CollectionTime *time.Time `json:"collection_time"`
	Quote          *Quote     `json:"quote"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Price is the quoted total, or zero when the booking has no quote.
func (b *Booking) Price() float64 {
	if b.Quote == nil {
		return 0
	}
	return b.Quote.Breakdown.PriceComponents.Total
}

// Quote is the pricing snapshot stored with a booking.
type Quote struct {
	Breakdown   Breakdown       `json:"breakdown"`
	Compliance  []string        `json:"compliance,omitempty"`
	Explanation json.RawMessage `json:"explanation,omitempty"`
}

// Breakdown explains how a quote was priced.
type Breakdown struct {
	Volume          string          `json:"volume"`
	MaterialRisk    float64         `json:"material_risk"`
	Postcode        string          `json:"postcode"`
	PriceComponents PriceComponents `json:"price_components"`
}

// PriceComponents are the line items of a quote.
type PriceComponents struct {
	BaseRate        float64 `json:"base_rate"`
	HazardSurcharge float64 `json:"hazard_surcharge"`
	AccessFee       float64 `json:"access_fee"`
	DismantlingFee  float64 `json:"dismantling_fee"`
	Total           float64 `json:"total"`
}

// Stats counts bookings per status.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}

// --- Request DTOs ---

// StatusUpdateRequest changes one booking's status.
type StatusUpdateRequest struct {
	Status string `json:"status" form:"status"`
	Reason string `json:"reason" form:"reason"`
}

// BulkStatusRequest changes the status of several bookings. The API requires
// explicit IDs; the list page fills them from its saved selection.
type BulkStatusRequest struct {
	IDs    []string `json:"ids" form:"ids"`
	Status string   `json:"status" form:"status"`
	Reason string   `json:"reason" form:"reason"`
}

// --- Row validation ---

// bookingRow is a booking as scanned from the database, before validation.
type bookingRow struct {
	Booking
	rawStatus string
	rawQuote  []byte
}

// coerce validates the row and converts it into a Booking. An unknown
// status rejects the row; a malformed quote is dropped to nil.
func (r *bookingRow) coerce() (*Booking, error) {
	b := r.Booking
	b.Status = Status(r.rawStatus)
	if !b.Status.Valid() {
		return nil, fmt.Errorf("booking %s: unknown status %q", b.ID, r.rawStatus)
	}

	b.Quote = decodeQuote(r.rawQuote)
	return &b, nil
}

// decodeQuote parses stored quote JSON. Malformed or empty input yields nil.
func decodeQuote(raw []byte) *Quote {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var q Quote
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil
	}
	return &q
}
