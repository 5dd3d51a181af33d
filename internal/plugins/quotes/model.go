// Package quotes creates and tracks price quotes. Prices and quote numbers
// come from backend stored procedures; this package only records and lists
// the results.
package quotes

import (
	"encoding/json"
	"time"
)

// Status is a quote's lifecycle state.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusDraft, StatusSent, StatusAccepted, StatusExpired}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Quote is one priced quote.
type Quote struct {
	ID          string          `json:"id"`
	QuoteNumber string          `json:"quote_number"`
	BookingID   *string         `json:"booking_id"`
	CustomerID  *string         `json:"customer_id"`
	Status      Status          `json:"status"`
	Postcode    string          `json:"postcode"`
	Volume      string          `json:"volume"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Breakdown   json.RawMessage `json:"breakdown,omitempty"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// --- Request DTOs ---

// CreateQuoteRequest holds the inputs priced by calculate_price.
type CreateQuoteRequest struct {
	BookingID      string  `json:"booking_id" form:"booking_id"`
	CustomerID     string  `json:"customer_id" form:"customer_id"`
	Postcode       string  `json:"postcode" form:"postcode"`
	Volume         float64 `json:"volume" form:"volume"`
	CollectionDate string  `json:"collection_date" form:"collection_date"`
	HeavyItems     bool    `json:"heavy_items" form:"heavy_items"`
	Dismantling    bool    `json:"dismantling_required" form:"dismantling_required"`
}

// StatusUpdateRequest moves a quote to another status.
type StatusUpdateRequest struct {
	Status string `json:"status" form:"status"`
	Reason string `json:"reason" form:"reason"`
}
