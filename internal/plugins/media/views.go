package media

import (
	"context"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/templates/pages"
)

var filterOptions = []pages.Option{
	{Value: listing.StatusAll, Label: "All uploads"},
	{Value: FilterAccessRestricted, Label: "Access restricted"},
	{Value: FilterDismantlingRequired, Label: "Dismantling required"},
	{Value: FilterRecent, Label: "Last 7 days"},
}

var sortOptions = []pages.Option{
	{Value: "created_at", Label: "Uploaded"},
	{Value: "waste_location", Label: "Waste location"},
	{Value: "file_size", Label: "Size"},
}

// LibraryPage renders the photo library as a grid of thumbnails.
func LibraryPage(basePath string, st listing.ViewState, page *listing.Page[MediaFile]) templ.Component {
	v := pages.ListView{
		BasePath:    basePath,
		State:       st,
		Statuses:    filterOptions,
		SortOptions: sortOptions,
	}
	if page != nil {
		v.Meta = page.Meta
	}

	return pages.Page("Media", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Media library</h1>`)
		h.Component(ctx, pages.FilterBar(v))

		if page == nil {
			h.Component(ctx, pages.CouldNotLoad("media"))
			return
		}
		if len(page.Items) == 0 {
			h.Raw(`<p class="empty">No uploads match these filters.</p>`)
			return
		}

		h.Raw(`<ul class="media-grid">`)
		for _, f := range page.Items {
			h.Raw(`<li><a href="/media/`)
			h.Text(f.ID)
			h.Raw(`"><img loading="lazy" src="/media/`)
			h.Text(f.ID)
			h.Raw(`/thumb/300" alt="`)
			h.Text(f.OriginalName)
			h.Raw(`"></a><p>`)
			h.Text(f.WasteLocation)
			h.Raw(`</p>`)
			if f.AccessRestricted {
				h.Raw(`<span class="badge flag">Access restricted</span>`)
			}
			if f.DismantlingRequired {
				h.Raw(`<span class="badge flag">Dismantling</span>`)
			}
			h.Raw(`<p class="meta"><a href="/admin/bookings/`)
			h.Text(f.BookingID)
			h.Raw(`">Booking</a> · `)
			h.Text(f.CreatedAt.Format("02 Jan 2006"))
			h.Raw(`</p><form method="post" action="`)
			h.Text(basePath + "/" + f.ID + "/delete")
			h.Raw(`">`)
			pages.CSRFField(ctx, h)
			h.Raw(`<input type="hidden" name="reason" value="removed from library"><button type="submit" class="link">Delete</button></form></li>`)
		}
		h.Raw(`</ul>`)

		h.Component(ctx, pages.Pagination(v))
	}))
}
