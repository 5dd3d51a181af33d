package pages

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
)

// Option is one choice in a select control.
type Option struct {
	Value string
	Label string
}

// ListView is what the shared list controls need to render one view.
type ListView struct {
	// BasePath is the list page URL, e.g. "/admin/bookings".
	BasePath string

	State listing.ViewState
	Meta  listing.PaginationMeta

	// Statuses are the status filter choices, including "all".
	Statuses []Option

	// SortOptions are the sortable columns.
	SortOptions []Option

	// VisibleIDs are the row IDs on the current page, in display order.
	VisibleIDs []string
}

var dateRangeOptions = []Option{
	{Value: string(listing.RangeAll), Label: "All time"},
	{Value: string(listing.RangeToday), Label: "Today"},
	{Value: string(listing.RangeWeek), Label: "Last 7 days"},
	{Value: string(listing.RangeMonth), Label: "This month"},
	{Value: string(listing.RangeQuarter), Label: "This quarter"},
}

var pageSizes = []int{10, 25, 50, 100}

// FilterBar renders the filter form. Submitting it is a GET to the list page,
// which applies the filters and resets the window.
func FilterBar(v ListView) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		f := v.State.Filters

		h.Raw(`<form class="filters" method="get" action="`)
		h.Text(v.BasePath)
		h.Raw(`"><input type="search" name="search" placeholder="Search" value="`)
		h.Text(f.Search)
		h.Raw(`">`)

		selectControl(h, "status", "Status", v.Statuses, f.Status)
		selectControl(h, "dateRange", "Date", dateRangeOptions, string(f.DateRange))
		if len(v.SortOptions) > 0 {
			selectControl(h, "sortBy", "Sort by", v.SortOptions, f.SortBy)
		}
		selectControl(h, "sortOrder", "Order", []Option{
			{Value: string(listing.SortDesc), Label: "Newest first"},
			{Value: string(listing.SortAsc), Label: "Oldest first"},
		}, string(f.SortOrder))

		sizes := make([]Option, 0, len(pageSizes))
		for _, n := range pageSizes {
			sizes = append(sizes, Option{Value: strconv.Itoa(n), Label: strconv.Itoa(n) + " per page"})
		}
		selectControl(h, "per_page", "Page size", sizes, strconv.Itoa(v.State.Window.ItemsPerPage))

		h.Raw(`<button type="submit">Apply</button></form>`)
	})
}

func selectControl(h *Writer, name, label string, opts []Option, current string) {
	h.Raw(`<label>`)
	h.Text(label)
	h.Raw(` <select name="`)
	h.Text(name)
	h.Raw(`">`)
	for _, o := range opts {
		h.Raw(`<option value="`)
		h.Text(o.Value)
		h.Raw(`"`)
		if o.Value == current {
			h.Raw(` selected`)
		}
		h.Raw(`>`)
		h.Text(o.Label)
		h.Raw(`</option>`)
	}
	h.Raw(`</select></label>`)
}

// PageURL links to page p of the list, keeping stored filters.
func PageURL(base string, p int) string {
	return base + "?" + url.Values{"page": {strconv.Itoa(p)}}.Encode()
}

// Pagination renders the page summary and previous/next links.
func Pagination(v ListView) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		m := v.Meta
		h.Raw(`<nav class="pagination" aria-label="Pagination"><span>`)
		if m.TotalItems == 0 {
			h.Raw(`No results`)
		} else {
			start := (m.CurrentPage-1)*m.PerPage + 1
			end := start + m.PerPage - 1
			if end > m.TotalItems {
				end = m.TotalItems
			}
			h.Textf("%d–%d of %d · page %d of %d", start, end, m.TotalItems, m.CurrentPage, m.TotalPages)
		}
		h.Raw(`</span>`)
		if m.HasPrev() {
			h.Raw(`<a rel="prev" href="`)
			h.Text(PageURL(v.BasePath, m.CurrentPage-1))
			h.Raw(`">Previous</a>`)
		}
		if m.HasNext() {
			h.Raw(`<a rel="next" href="`)
			h.Text(PageURL(v.BasePath, m.CurrentPage+1))
			h.Raw(`">Next</a>`)
		}
		h.Raw(`</nav>`)
	})
}

// SelectAllToggle renders the header checkbox form that selects or clears
// every visible row.
func SelectAllToggle(v ListView) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		h.Raw(`<form method="post" action="`)
		h.Text(v.BasePath + "/selection")
		h.Raw(`">`)
		CSRFField(ctx, h)
		h.Raw(`<input type="hidden" name="all" value="1">`)
		for _, id := range v.VisibleIDs {
			h.Raw(`<input type="hidden" name="visible" value="`)
			h.Text(id)
			h.Raw(`">`)
		}
		h.Raw(`<button type="submit" class="checkbox" aria-label="Select all on page">`)
		if v.State.AllSelected(v.VisibleIDs) {
			h.Raw(`☑`)
		} else {
			h.Raw(`☐`)
		}
		h.Raw(`</button></form>`)
	})
}

// RowToggle renders one row's selection checkbox form.
func RowToggle(v ListView, id string) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		h.Raw(`<form method="post" action="`)
		h.Text(v.BasePath + "/selection")
		h.Raw(`">`)
		CSRFField(ctx, h)
		h.Raw(`<input type="hidden" name="id" value="`)
		h.Text(id)
		h.Raw(`"><button type="submit" class="checkbox" aria-label="Select row">`)
		if v.State.IsSelected(id) {
			h.Raw(`☑`)
		} else {
			h.Raw(`☐`)
		}
		h.Raw(`</button></form>`)
	})
}

// SelectionSummary shows how many rows are selected.
func SelectionSummary(v ListView) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		n := len(v.State.VisibleSelection(v.VisibleIDs))
		if n == 0 {
			return
		}
		h.Raw(`<p class="selection-summary">`)
		h.Textf("%d selected", n)
		h.Raw(`</p>`)
	})
}
