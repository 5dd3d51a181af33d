// Package audit records staff actions in the admin_audit_log table. Every
// mutation made through the dashboard (booking status changes, bulk
// updates, media deletions, quotes, pricing rules, invoices, exports) is
// captured as an AuditEntry with the before and after values, so admins can
// see who changed what and when.
//
// This plugin never modifies business data, it only records observations
// about changes made by other plugins.
package audit

import "time"

// --- Action Constants ---
// Each action string follows the pattern "resource.verb" for consistent
// filtering and display grouping.

const (
	ActionBookingStatusChanged = "booking.status_changed"
	ActionBookingBulkStatus    = "booking.bulk_status_changed"
	ActionBookingNoteAdded     = "booking.note_added"
	ActionMediaUploaded        = "media.uploaded"
	ActionMediaDeleted         = "media.deleted"
	ActionQuoteCreated         = "quote.created"
	ActionQuoteStatusChanged   = "quote.status_changed"
	ActionCustomersExported    = "customer.exported"
	ActionPricingRuleCreated   = "pricing_rule.created"
	ActionPricingRuleUpdated   = "pricing_rule.updated"
	ActionPricingRuleDeleted   = "pricing_rule.deleted"
	ActionInvoiceCreated       = "invoice.created"
	ActionInvoiceStatusChanged = "invoice.status_changed"
)

// Entity types used in EntityType.
const (
	EntityBooking  = "booking"
	EntityMedia    = "media"
	EntityQuote    = "quote"
	EntityCustomer = "customer"
	EntityPricing  = "pricing_rule"
	EntityInvoice  = "invoice"
)

// AuditEntry represents a single recorded action.
type AuditEntry struct {
	ID            int64          `json:"id"`
	AdminUserID   string         `json:"admin_user_id"`
	AdminName     string         `json:"admin_name,omitempty"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entity_type,omitempty"`
	EntityID      string         `json:"entity_id,omitempty"`
	PreviousValue map[string]any `json:"previous_value,omitempty"`
	NewValue      map[string]any `json:"new_value,omitempty"`
	Reason        *string        `json:"reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Actor identifies the staff member performing an action. Handlers build it
// from the signed-in profile.
type Actor struct {
	UserID string
	Name   string
}
