package customers

import (
	"context"
	"fmt"
	"time"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/templates/pages"
)

var statusOptions = []pages.Option{
	{Value: listing.StatusAll, Label: "All customers"},
	{Value: StatusActive, Label: "Active"},
	{Value: StatusInactive, Label: "Inactive"},
}

var sortOptions = []pages.Option{
	{Value: "created_at", Label: "Joined"},
	{Value: "name", Label: "Name"},
	{Value: "total_bookings", Label: "Bookings"},
	{Value: "total_spent", Label: "Spend"},
	{Value: "last_booking_date", Label: "Last booking"},
}

// ListPage renders the customer list. A nil page renders the could-not-load
// state.
func ListPage(basePath string, st listing.ViewState, page *listing.Page[Customer], now time.Time) templ.Component {
	v := pages.ListView{
		BasePath:    basePath,
		State:       st,
		Statuses:    statusOptions,
		SortOptions: sortOptions,
	}
	if page != nil {
		v.Meta = page.Meta
		for _, c := range page.Items {
			v.VisibleIDs = append(v.VisibleIDs, c.ID)
		}
	}

	return pages.Page("Customers", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Customers</h1>`)
		h.Component(ctx, pages.FilterBar(v))

		if page == nil {
			h.Component(ctx, pages.CouldNotLoad("customers"))
			return
		}

		h.Component(ctx, pages.SelectionSummary(v))
		if len(st.SelectedIDs()) > 0 {
			h.Raw(`<form method="post" action="`)
			h.Text(basePath + "/export")
			h.Raw(`">`)
			pages.CSRFField(ctx, h)
			h.Raw(`<button type="submit">Export selected as CSV</button></form>`)
		}

		if len(page.Items) == 0 {
			h.Raw(`<p class="empty">No customers match these filters.</p>`)
		} else {
			h.Raw(`<table class="customers"><thead><tr><th>`)
			h.Component(ctx, pages.SelectAllToggle(v))
			h.Raw(`</th><th>Name</th><th>Email</th><th>Phone</th><th>Bookings</th><th>Spent</th><th>Last booking</th><th>Status</th></tr></thead><tbody>`)
			for _, c := range page.Items {
				h.Raw(`<tr><td>`)
				h.Component(ctx, pages.RowToggle(v, c.ID))
				h.Raw(`</td><td>`)
				h.Text(c.Name)
				h.Raw(`</td><td>`)
				h.Text(c.Email)
				h.Raw(`</td><td>`)
				if c.Phone != nil {
					h.Text(*c.Phone)
				}
				h.Raw(`</td><td>`)
				h.Textf("%d", c.TotalBookings)
				h.Raw(`</td><td>`)
				h.Text(fmt.Sprintf("£%.2f", c.TotalSpent))
				h.Raw(`</td><td>`)
				if c.LastBookingDate != nil {
					h.Text(c.LastBookingDate.Format("02 Jan 2006"))
				} else {
					h.Raw(`Never`)
				}
				h.Raw(`</td><td>`)
				if c.Active(now) {
					h.Raw(`<span class="badge status-active">Active</span>`)
				} else {
					h.Raw(`<span class="badge status-inactive">Inactive</span>`)
				}
				h.Raw(`</td></tr>`)
			}
			h.Raw(`</tbody></table>`)
		}

		h.Component(ctx, pages.Pagination(v))
	}))
}
