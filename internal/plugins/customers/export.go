package customers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

var exportHeader = []string{
	"id", "name", "email", "phone", "created_at",
	"total_bookings", "total_spent", "last_booking_date", "active",
}

// writeCSV renders customers as CSV with a header row. Times are RFC 3339
// in UTC.
func writeCSV(items []Customer, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, c := range items {
		phone := ""
		if c.Phone != nil {
			phone = *c.Phone
		}
		last := ""
		if c.LastBookingDate != nil {
			last = c.LastBookingDate.UTC().Format(time.RFC3339)
		}
		record := []string{
			c.ID,
			csvSafe(c.Name),
			csvSafe(c.Email),
			csvSafe(phone),
			c.CreatedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(c.TotalBookings),
			strconv.FormatFloat(c.TotalSpent, 'f', 2, 64),
			last,
			strconv.FormatBool(c.Active(now)),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// csvSafe neutralises values a spreadsheet would evaluate as a formula.
func csvSafe(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

func exportFilename(now time.Time) string {
	return "customers-" + now.UTC().Format("20060102-150405") + ".csv"
}
