package admin

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/plugins/bookings"
	"github.com/plusvans/admin/internal/templates/pages"
)

// DashboardPage renders the staff overview.
func DashboardPage(d DashboardData) templ.Component {
	return pages.Page("Dashboard", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Dashboard</h1><div class="cards">`)

		h.Raw(`<section class="card"><h2>Bookings</h2>`)
		if b := d.Bookings; b != nil {
			h.Raw(`<p class="figure">`)
			h.Textf("%d", b.Total)
			h.Raw(`</p><ul>`)
			for _, s := range bookings.Statuses {
				h.Raw(`<li><a href="/admin/bookings?status=`)
				h.Text(string(s))
				h.Raw(`">`)
				h.Text(string(s))
				h.Raw(`</a> `)
				h.Textf("%d", b.ByStatus[s])
				h.Raw(`</li>`)
			}
			h.Raw(`</ul>`)
		} else {
			h.Component(ctx, pages.CouldNotLoad("booking figures"))
		}
		h.Raw(`</section>`)

		h.Raw(`<section class="card"><h2>Customers</h2>`)
		if c := d.Customers; c != nil {
			h.Raw(`<p class="figure">`)
			h.Textf("%d", c.Total)
			h.Raw(`</p><p>`)
			h.Textf("%d active in the last 90 days", c.Active)
			h.Raw(`</p>`)
		} else {
			h.Component(ctx, pages.CouldNotLoad("customer figures"))
		}
		h.Raw(`</section>`)

		h.Raw(`<section class="card"><h2>Media</h2>`)
		if m := d.Media; m != nil {
			h.Raw(`<p class="figure">`)
			h.Textf("%d", m.TotalUploads)
			h.Raw(`</p><ul><li>`)
			h.Textf("%d this week", m.RecentUploads)
			h.Raw(`</li><li><a href="/admin/media?status=access_restricted">`)
			h.Textf("%d flagged", m.FlaggedItems())
			h.Raw(`</a></li><li>`)
			h.Text(formatBytes(m.TotalBytes))
			h.Raw(`</li>`)
			if m.TopWasteLocation != "" {
				h.Raw(`<li>Most common: `)
				h.Text(m.TopWasteLocation)
				h.Raw(`</li>`)
			}
			h.Raw(`</ul>`)
		} else {
			h.Component(ctx, pages.CouldNotLoad("media figures"))
		}
		h.Raw(`</section></div>`)

		if len(d.Activity) > 0 {
			h.Raw(`<section><h2>Recent activity</h2><ul class="activity">`)
			for _, e := range d.Activity {
				h.Raw(`<li><time>`)
				h.Text(e.CreatedAt.Format("02 Jan 15:04"))
				h.Raw(`</time> `)
				h.Text(e.AdminName + " · " + e.Action + " · " + e.EntityID)
				h.Raw(`</li>`)
			}
			h.Raw(`</ul><a href="/admin/audit">Full audit log</a></section>`)
		}
	}))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
