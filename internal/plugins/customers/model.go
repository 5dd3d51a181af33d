// Package customers lists customer profiles with booking statistics and
// exports selected customers as CSV.
package customers

import "time"

// Activity statuses accepted by the customer list's status filter.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ActiveWindowDays is how recently a customer must have booked to count as
// active.
const ActiveWindowDays = 90

// Customer is a customer profile with aggregates over their bookings.
type Customer struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           *string    `json:"phone"`
	Role            string     `json:"role"`
	CreatedAt       time.Time  `json:"created_at"`
	TotalBookings   int        `json:"total_bookings"`
	TotalSpent      float64    `json:"total_spent"`
	LastBookingDate *time.Time `json:"last_booking_date"`
}

// Active reports whether the customer booked within the activity window
// ending at now.
func (c *Customer) Active(now time.Time) bool {
	if c.LastBookingDate == nil {
		return false
	}
	return c.LastBookingDate.After(now.AddDate(0, 0, -ActiveWindowDays))
}

// Stats summarises the customer base for the dashboard.
type Stats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// ExportRequest lists the customers to export. The list selection is used
// when IDs is empty.
type ExportRequest struct {
	IDs []string `json:"ids" form:"ids"`
}
