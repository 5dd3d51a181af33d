package bookings

import (
	"context"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/templates/pages"
)

var statusOptions = func() []pages.Option {
	opts := []pages.Option{{Value: listing.StatusAll, Label: "All statuses"}}
	for _, s := range Statuses {
		opts = append(opts, pages.Option{Value: string(s), Label: statusLabel(s)})
	}
	return opts
}()

var sortOptions = []pages.Option{
	{Value: "created_at", Label: "Created"},
	{Value: "collection_time", Label: "Collection"},
	{Value: "postcode", Label: "Postcode"},
	{Value: "status", Label: "Status"},
}

func statusLabel(s Status) string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// listView builds the shared list controls' input for a bookings page.
func listView(basePath string, st listing.ViewState, page *listing.Page[Booking]) pages.ListView {
	v := pages.ListView{
		BasePath:    basePath,
		State:       st,
		Statuses:    statusOptions,
		SortOptions: sortOptions,
	}
	if page != nil {
		v.Meta = page.Meta
		for _, b := range page.Items {
			v.VisibleIDs = append(v.VisibleIDs, b.ID)
		}
	}
	return v
}

// ListPage renders the bookings list. A nil page renders the
// could-not-load state in place of the table.
func ListPage(basePath string, st listing.ViewState, page *listing.Page[Booking]) templ.Component {
	v := listView(basePath, st, page)

	return pages.Page("Bookings", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Bookings</h1>`)
		h.Component(ctx, pages.FilterBar(v))

		if page == nil {
			h.Component(ctx, pages.CouldNotLoad("bookings"))
			return
		}

		h.Component(ctx, pages.SelectionSummary(v))
		if len(st.SelectedIDs()) > 0 {
			bulkForm(ctx, h, basePath)
		}

		if len(page.Items) == 0 {
			h.Raw(`<p class="empty">No bookings match these filters.</p>`)
		} else {
			h.Raw(`<table class="bookings"><thead><tr><th>`)
			h.Component(ctx, pages.SelectAllToggle(v))
			h.Raw(`</th><th>Customer</th><th>Postcode</th><th>Collection</th><th>Status</th><th>Price</th><th>Created</th></tr></thead><tbody>`)
			for _, b := range page.Items {
				h.Raw(`<tr><td>`)
				h.Component(ctx, pages.RowToggle(v, b.ID))
				h.Raw(`</td><td><a href="`)
				h.Text(basePath + "/" + b.ID)
				h.Raw(`">`)
				h.Text(fallback(b.CustomerName, "Guest"))
				h.Raw(`</a></td><td>`)
				h.Text(b.Postcode)
				h.Raw(`</td><td>`)
				if b.CollectionTime != nil {
					h.Text(b.CollectionTime.Format("02 Jan 2006 15:04"))
				} else {
					h.Raw(`—`)
				}
				h.Raw(`</td><td><span class="badge status-`)
				h.Text(string(b.Status))
				h.Raw(`">`)
				h.Text(statusLabel(b.Status))
				h.Raw(`</span></td><td>`)
				if b.Quote != nil {
					h.Text(formatGBP(b.Price()))
				} else {
					h.Raw(`—`)
				}
				h.Raw(`</td><td>`)
				h.Text(b.CreatedAt.Format("02 Jan 2006"))
				h.Raw(`</td></tr>`)
			}
			h.Raw(`</tbody></table>`)
		}

		h.Component(ctx, pages.Pagination(v))
	}))
}

func bulkForm(ctx context.Context, h *pages.Writer, basePath string) {
	h.Raw(`<form class="bulk" method="post" action="`)
	h.Text(basePath + "/bulk/status")
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	h.Raw(`<label>Set status <select name="status">`)
	for _, s := range Statuses {
		h.Raw(`<option value="`)
		h.Text(string(s))
		h.Raw(`">`)
		h.Text(statusLabel(s))
		h.Raw(`</option>`)
	}
	h.Raw(`</select></label><input type="text" name="reason" placeholder="Reason (optional)">`)
	h.Raw(`<button type="submit">Apply to selected</button></form>`)
}

// DetailPage renders one booking with its quote, status form and the notes
// panel.
func DetailPage(b *Booking, notes templ.Component) templ.Component {
	return pages.Page("Booking "+b.Postcode, pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<p><a href="/admin/bookings">← Bookings</a></p><h1>`)
		h.Text(fallback(b.CustomerName, "Guest") + " · " + b.Postcode)
		h.Raw(`</h1><dl class="booking">`)
		field(h, "Status", statusLabel(b.Status))
		field(h, "Address", b.Address)
		if b.CustomerEmail != "" {
			field(h, "Email", b.CustomerEmail)
		}
		if b.CollectionTime != nil {
			field(h, "Collection", b.CollectionTime.Format("Mon 02 Jan 2006 15:04"))
		}
		if b.Geolocation != nil {
			field(h, "Location", *b.Geolocation)
		}
		field(h, "Created", b.CreatedAt.Format("02 Jan 2006 15:04"))
		h.Raw(`</dl>`)

		if q := b.Quote; q != nil {
			pc := q.Breakdown.PriceComponents
			h.Raw(`<section class="quote"><h2>Quote</h2><dl>`)
			field(h, "Volume", q.Breakdown.Volume)
			field(h, "Base rate", formatGBP(pc.BaseRate))
			field(h, "Hazard surcharge", formatGBP(pc.HazardSurcharge))
			field(h, "Access fee", formatGBP(pc.AccessFee))
			field(h, "Dismantling fee", formatGBP(pc.DismantlingFee))
			field(h, "Total", formatGBP(pc.Total))
			h.Raw(`</dl><a class="button" href="`)
			h.Text("/admin/bookings/" + b.ID + "/invoice.pdf")
			h.Raw(`">Download invoice</a></section>`)
		}

		h.Raw(`<form class="status" method="post" action="`)
		h.Text("/admin/bookings/" + b.ID + "/status")
		h.Raw(`">`)
		pages.CSRFField(ctx, h)
		h.Raw(`<label>Status <select name="status">`)
		for _, s := range Statuses {
			h.Raw(`<option value="`)
			h.Text(string(s))
			h.Raw(`"`)
			if s == b.Status {
				h.Raw(` selected`)
			}
			h.Raw(`>`)
			h.Text(statusLabel(s))
			h.Raw(`</option>`)
		}
		h.Raw(`</select></label><input type="text" name="reason" placeholder="Reason (optional)">`)
		h.Raw(`<button type="submit">Update</button></form>`)

		h.Component(ctx, notes)
	}))
}

func field(h *pages.Writer, label, value string) {
	h.Raw(`<dt>`)
	h.Text(label)
	h.Raw(`</dt><dd>`)
	h.Text(value)
	h.Raw(`</dd>`)
}
