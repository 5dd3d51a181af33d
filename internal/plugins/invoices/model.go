// Package invoices records invoices issued for confirmed bookings and tracks
// them until they are paid. An issued invoice whose due date has passed reads
// as overdue without anyone having to mark it.
package invoices

import (
	"time"
)

// Status is an invoice's stored lifecycle state.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusOverdue Status = "overdue"
	StatusPaid    Status = "paid"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusDraft, StatusPending, StatusSent, StatusOverdue, StatusPaid}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// rank orders statuses along the lifecycle. Overdue sits level with sent.
func (s Status) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusPending:
		return 1
	case StatusSent, StatusOverdue:
		return 2
	case StatusPaid:
		return 3
	}
	return -1
}

// Invoice is one issued invoice.
type Invoice struct {
	ID             string     `json:"id"`
	InvoiceNumber  string     `json:"invoice_number"`
	BookingID      *string    `json:"booking_id"`
	CustomerName   string     `json:"customer_name"`
	CustomerEmail  string     `json:"customer_email"`
	BillingAddress string     `json:"billing_address"`
	TotalAmount    float64    `json:"total_amount"`
	Currency       string     `json:"currency"`
	Status         Status     `json:"status"`
	IssueDate      time.Time  `json:"issue_date"`
	DueDate        time.Time  `json:"due_date"`
	PaidAt         *time.Time `json:"paid_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// EffectiveStatus is the status an operator sees on day now: an issued,
// unpaid invoice past its due date is overdue.
func (i *Invoice) EffectiveStatus(now time.Time) Status {
	if i.Status != StatusPending && i.Status != StatusSent {
		return i.Status
	}
	if i.DueDate.Format(time.DateOnly) < now.Format(time.DateOnly) {
		return StatusOverdue
	}
	return i.Status
}

// --- Request DTOs ---

// CreateInvoiceRequest issues an invoice for a booking. DueDate is
// YYYY-MM-DD and defaults to two weeks after issue.
type CreateInvoiceRequest struct {
	BookingID string `json:"booking_id" form:"booking_id"`
	DueDate   string `json:"due_date" form:"due_date"`
}

// StatusUpdateRequest moves an invoice along its lifecycle.
type StatusUpdateRequest struct {
	Status string `json:"status" form:"status"`
	Reason string `json:"reason" form:"reason"`
}
