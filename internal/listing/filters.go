// Package listing is the shared list-view layer for bookings, customers,
// media and quotes. It turns the filter form an operator edits into the sparse
// query filter repositories consume, slices result sets into pages, and keeps
// per-session view state (filters, page window, bulk selection).
//
// Everything here except StateStore is pure: no I/O, inputs are never mutated.
package listing

import (
	"strings"
	"time"
)

// StatusAll is the sentinel status meaning "no status constraint".
const StatusAll = "all"

// DateRange is the relative date window offered by every list view.
type DateRange string

const (
	RangeAll     DateRange = "all"
	RangeToday   DateRange = "today"
	RangeWeek    DateRange = "week"
	RangeMonth   DateRange = "month"
	RangeQuarter DateRange = "quarter"
)

// SortOrder is the list sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filters is the filter form bound directly to the list controls. It is the
// single source of truth for a view and is always fully populated.
type Filters struct {
	Status    string    `json:"status" query:"status" form:"status"`
	Search    string    `json:"search" query:"search" form:"search"`
	DateRange DateRange `json:"dateRange" query:"dateRange" form:"dateRange"`
	SortBy    string    `json:"sortBy" query:"sortBy" form:"sortBy"`
	SortOrder SortOrder `json:"sortOrder" query:"sortOrder" form:"sortOrder"`
}

// DefaultFilters returns the filters a view starts with.
func DefaultFilters() Filters {
	return Filters{
		Status:    StatusAll,
		Search:    "",
		DateRange: RangeAll,
		SortBy:    "created_at",
		SortOrder: SortDesc,
	}
}

// Normalize fills blank fields with their defaults and folds an unknown sort
// order to descending, so a Filters value is never partially populated.
func (f Filters) Normalize() Filters {
	d := DefaultFilters()
	if strings.TrimSpace(f.Status) == "" {
		f.Status = d.Status
	}
	if f.DateRange == "" {
		f.DateRange = d.DateRange
	}
	if strings.TrimSpace(f.SortBy) == "" {
		f.SortBy = d.SortBy
	}
	switch SortOrder(strings.ToLower(string(f.SortOrder))) {
	case SortAsc:
		f.SortOrder = SortAsc
	default:
		f.SortOrder = SortDesc
	}
	return f
}

// TimeRange is a resolved [From, To] window.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Query is the sparse filter consumed by repositories. A nil field means
// "no constraint" and must not produce a predicate.
type Query struct {
	Status    *string    `json:"status,omitempty"`
	Search    *string    `json:"search,omitempty"`
	DateRange *TimeRange `json:"dateRange,omitempty"`
}

// IsEmpty reports whether the query constrains nothing.
func (q Query) IsEmpty() bool {
	return q.Status == nil && q.Search == nil && q.DateRange == nil
}

// Translate projects the filter form onto the query filter, resolving the
// relative date range against now. Deterministic for a fixed (f, now).
func Translate(f Filters, now time.Time) Query {
	var q Query

	if status := strings.TrimSpace(f.Status); status != "" && status != StatusAll {
		q.Status = &status
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		q.Search = &search
	}

	if r, ok := ResolveRange(f.DateRange, now); ok {
		q.DateRange = &r
	}

	return q
}

// ResolveRange turns a relative range into concrete boundaries. The second
// return is false for "all" (and blank), meaning no date constraint. Calendar
// boundaries are computed in now's location. Unrecognised values resolve to
// [epoch, now] rather than failing.
func ResolveRange(r DateRange, now time.Time) (TimeRange, bool) {
	loc := now.Location()
	var from time.Time

	switch r {
	case RangeAll, "":
		return TimeRange{}, false
	case RangeToday:
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	case RangeWeek:
		from = now.Add(-7 * 24 * time.Hour)
	case RangeMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	case RangeQuarter:
		quarterStart := (int(now.Month()) - 1) / 3 * 3
		from = time.Date(now.Year(), time.Month(quarterStart+1), 1, 0, 0, 0, 0, loc)
	default:
		from = time.Unix(0, 0).In(loc)
	}

	return TimeRange{From: from, To: now}, true
}
