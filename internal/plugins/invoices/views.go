package invoices

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/templates/pages"
)

var statusOptions = func() []pages.Option {
	opts := []pages.Option{{Value: listing.StatusAll, Label: "All invoices"}}
	for _, s := range Statuses {
		opts = append(opts, pages.Option{Value: string(s), Label: string(s)})
	}
	return append(opts, pages.Option{Value: StatusUnpaid, Label: "unpaid"})
}()

var sortOptions = []pages.Option{
	{Value: "created_at", Label: "Created"},
	{Value: "issue_date", Label: "Issued"},
	{Value: "due_date", Label: "Due"},
	{Value: "total_amount", Label: "Amount"},
	{Value: "invoice_number", Label: "Number"},
}

// nextStatuses lists the statuses an operator can move an invoice to.
func nextStatuses(s Status) []Status {
	switch s {
	case StatusDraft:
		return []Status{StatusPending, StatusSent, StatusPaid}
	case StatusPending:
		return []Status{StatusSent, StatusPaid}
	case StatusSent, StatusOverdue:
		return []Status{StatusPaid}
	}
	return nil
}

// ListPage renders the invoice list with the issue-invoice form.
func ListPage(basePath string, st listing.ViewState, page *listing.Page[Invoice]) templ.Component {
	v := pages.ListView{
		BasePath:    basePath,
		State:       st,
		Statuses:    statusOptions,
		SortOptions: sortOptions,
	}
	if page != nil {
		v.Meta = page.Meta
	}

	return pages.Page("Invoices", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Invoices</h1>`)
		createForm(ctx, h, basePath)
		h.Component(ctx, pages.FilterBar(v))

		if page == nil {
			h.Component(ctx, pages.CouldNotLoad("invoices"))
			return
		}
		if len(page.Items) == 0 {
			h.Raw(`<p class="empty">No invoices match these filters.</p>`)
			return
		}

		h.Raw(`<table class="invoices"><thead><tr><th>Number</th><th>Customer</th><th>Amount</th><th>Issued</th><th>Due</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, inv := range page.Items {
			h.Raw(`<tr><td>`)
			h.Text(inv.InvoiceNumber)
			h.Raw(`</td><td>`)
			h.Text(inv.CustomerName)
			if inv.CustomerEmail != "" {
				h.Raw(`<br><small>`)
				h.Text(inv.CustomerEmail)
				h.Raw(`</small>`)
			}
			h.Raw(`</td><td>`)
			h.Text(fmt.Sprintf("%.2f %s", inv.TotalAmount, inv.Currency))
			h.Raw(`</td><td>`)
			h.Text(inv.IssueDate.Format("02 Jan 2006"))
			h.Raw(`</td><td>`)
			h.Text(inv.DueDate.Format("02 Jan 2006"))
			h.Raw(`</td><td>`)
			statusForm(ctx, h, basePath, inv)
			h.Raw(`</td><td>`)
			if inv.BookingID != nil {
				h.Raw(`<a href="/admin/bookings/`)
				h.Text(*inv.BookingID)
				h.Raw(`/invoice.pdf">PDF</a>`)
			}
			h.Raw(`</td></tr>`)
		}
		h.Raw(`</tbody></table>`)

		h.Component(ctx, pages.Pagination(v))
	}))
}

func createForm(ctx context.Context, h *pages.Writer, basePath string) {
	h.Raw(`<form class="new-invoice" method="post" action="`)
	h.Text(basePath)
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	h.Raw(`<label>Booking <input name="booking_id" required></label>`)
	h.Raw(`<label>Due date <input name="due_date" type="date" placeholder="in 14 days"></label>`)
	h.Raw(`<button type="submit">Issue invoice</button></form>`)
}

func statusForm(ctx context.Context, h *pages.Writer, basePath string, inv Invoice) {
	h.Raw(`<span class="badge status-`)
	h.Text(string(inv.Status))
	h.Raw(`">`)
	h.Text(string(inv.Status))
	h.Raw(`</span>`)

	next := nextStatuses(inv.Status)
	if len(next) == 0 {
		return
	}
	h.Raw(`<form method="post" action="`)
	h.Text(basePath + "/" + inv.ID + "/status")
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	h.Raw(`<select name="status" onchange="this.form.submit()"><option value="" selected disabled>Mark as…</option>`)
	for _, s := range next {
		h.Raw(`<option value="`)
		h.Text(string(s))
		h.Raw(`">`)
		h.Text(string(s))
		h.Raw(`</option>`)
	}
	h.Raw(`</select></form>`)
}
