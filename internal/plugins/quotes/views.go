package quotes

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/templates/pages"
)

var statusOptions = func() []pages.Option {
	opts := []pages.Option{{Value: listing.StatusAll, Label: "All quotes"}}
	for _, s := range Statuses {
		opts = append(opts, pages.Option{Value: string(s), Label: string(s)})
	}
	return opts
}()

var sortOptions = []pages.Option{
	{Value: "created_at", Label: "Created"},
	{Value: "amount", Label: "Amount"},
	{Value: "postcode", Label: "Postcode"},
	{Value: "status", Label: "Status"},
}

// ListPage renders the quote list with the new-quote form.
func ListPage(basePath string, st listing.ViewState, page *listing.Page[Quote]) templ.Component {
	v := pages.ListView{
		BasePath:    basePath,
		State:       st,
		Statuses:    statusOptions,
		SortOptions: sortOptions,
	}
	if page != nil {
		v.Meta = page.Meta
	}

	return pages.Page("Quotes", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Quotes</h1>`)
		createForm(ctx, h, basePath)
		h.Component(ctx, pages.FilterBar(v))

		if page == nil {
			h.Component(ctx, pages.CouldNotLoad("quotes"))
			return
		}
		if len(page.Items) == 0 {
			h.Raw(`<p class="empty">No quotes match these filters.</p>`)
			return
		}

		h.Raw(`<table class="quotes"><thead><tr><th>Number</th><th>Postcode</th><th>Volume</th><th>Amount</th><th>Status</th><th>Created</th></tr></thead><tbody>`)
		for _, q := range page.Items {
			h.Raw(`<tr><td>`)
			h.Text(q.QuoteNumber)
			h.Raw(`</td><td>`)
			h.Text(q.Postcode)
			h.Raw(`</td><td>`)
			h.Text(q.Volume + " yd³")
			h.Raw(`</td><td>`)
			h.Text(fmt.Sprintf("%.2f %s", q.Amount, q.Currency))
			h.Raw(`</td><td>`)
			statusForm(ctx, h, basePath, q)
			h.Raw(`</td><td>`)
			h.Text(q.CreatedAt.Format("02 Jan 2006"))
			h.Raw(`</td></tr>`)
		}
		h.Raw(`</tbody></table>`)

		h.Component(ctx, pages.Pagination(v))
	}))
}

func createForm(ctx context.Context, h *pages.Writer, basePath string) {
	h.Raw(`<form class="new-quote" method="post" action="`)
	h.Text(basePath)
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	h.Raw(`<label>Postcode <input name="postcode" required></label>`)
	h.Raw(`<label>Volume (yd³) <input name="volume" type="number" step="0.5" min="0.5" required></label>`)
	h.Raw(`<label>Collection date <input name="collection_date" type="date"></label>`)
	h.Raw(`<label>Booking <input name="booking_id" placeholder="optional"></label>`)
	h.Raw(`<label><input type="checkbox" name="heavy_items"> Heavy items</label>`)
	h.Raw(`<label><input type="checkbox" name="dismantling_required"> Dismantling</label>`)
	h.Raw(`<button type="submit">Price quote</button></form>`)
}

func statusForm(ctx context.Context, h *pages.Writer, basePath string, q Quote) {
	if q.Status == StatusAccepted || q.Status == StatusExpired {
		h.Raw(`<span class="badge status-`)
		h.Text(string(q.Status))
		h.Raw(`">`)
		h.Text(string(q.Status))
		h.Raw(`</span>`)
		return
	}
	h.Raw(`<form method="post" action="`)
	h.Text(basePath + "/" + q.ID + "/status")
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	h.Raw(`<select name="status" onchange="this.form.submit()">`)
	for _, s := range Statuses {
		h.Raw(`<option value="`)
		h.Text(string(s))
		h.Raw(`"`)
		if s == q.Status {
			h.Raw(` selected`)
		}
		h.Raw(`>`)
		h.Text(string(s))
		h.Raw(`</option>`)
	}
	h.Raw(`</select></form>`)
}
