package audit

import (
	"context"
	"encoding/json"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/templates/pages"
)

var entityOptions = []pages.Option{
	{Value: listing.StatusAll, Label: "All entities"},
	{Value: EntityBooking, Label: "Bookings"},
	{Value: EntityCustomer, Label: "Customers"},
	{Value: EntityMedia, Label: "Media"},
	{Value: EntityQuote, Label: "Quotes"},
	{Value: EntityPricing, Label: "Pricing rules"},
	{Value: EntityInvoice, Label: "Invoices"},
}

var sortOptions = []pages.Option{
	{Value: "created_at", Label: "Time"},
	{Value: "action", Label: "Action"},
}

// LogPage renders the audit log. A nil page renders the could-not-load state.
func LogPage(basePath string, st listing.ViewState, page *listing.Page[AuditEntry]) templ.Component {
	v := pages.ListView{
		BasePath:    basePath,
		State:       st,
		Statuses:    entityOptions,
		SortOptions: sortOptions,
	}
	if page != nil {
		v.Meta = page.Meta
	}

	return pages.Page("Audit log", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Audit log</h1>`)
		h.Component(ctx, pages.FilterBar(v))

		if page == nil {
			h.Component(ctx, pages.CouldNotLoad("the audit log"))
			return
		}

		h.Component(ctx, EntryTable(page.Items))
		h.Component(ctx, pages.Pagination(v))
	}))
}

// EntryTable renders audit entries, newest first as given.
func EntryTable(entries []AuditEntry) templ.Component {
	return pages.Component(func(ctx context.Context, h *pages.Writer) {
		if len(entries) == 0 {
			h.Raw(`<p class="empty">No activity recorded.</p>`)
			return
		}
		h.Raw(`<table class="audit"><thead><tr><th>When</th><th>Who</th><th>Action</th><th>Entity</th><th>Change</th></tr></thead><tbody>`)
		for _, e := range entries {
			h.Raw(`<tr><td>`)
			h.Text(e.CreatedAt.Format("02 Jan 2006 15:04"))
			h.Raw(`</td><td>`)
			if e.AdminName != "" {
				h.Text(e.AdminName)
			} else {
				h.Text(e.AdminUserID)
			}
			h.Raw(`</td><td>`)
			h.Text(e.Action)
			h.Raw(`</td><td>`)
			h.Text(e.EntityType + " " + e.EntityID)
			h.Raw(`</td><td><code>`)
			h.Text(describeChange(e))
			h.Raw(`</code></td></tr>`)
		}
		h.Raw(`</tbody></table>`)
	})
}

func describeChange(e AuditEntry) string {
	var out string
	if e.PreviousValue != nil {
		b, _ := json.Marshal(e.PreviousValue)
		out = string(b) + " → "
	}
	if e.NewValue != nil {
		b, _ := json.Marshal(e.NewValue)
		out += string(b)
	}
	return out
}
