package notes

import (
	"context"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/templates/layouts"
	"github.com/plusvans/admin/internal/templates/pages"
)

// Panel renders a booking's notes with the add-note form. BodyHTML is
// sanitized at write time and rendered as-is.
func Panel(bookingID string, notes []Note) templ.Component {
	return pages.Component(func(ctx context.Context, h *pages.Writer) {
		userID := layouts.GetUserID(ctx)
		admin := layouts.GetUserRole(ctx) == "admin"

		h.Raw(`<section class="notes"><h2>Notes</h2>`)
		if len(notes) == 0 {
			h.Raw(`<p class="empty">No notes yet.</p>`)
		}
		for _, n := range notes {
			h.Raw(`<article class="note"><header>`)
			h.Text(n.AuthorName)
			h.Raw(` · <time>`)
			h.Text(n.CreatedAt.Format("02 Jan 2006 15:04"))
			h.Raw(`</time>`)
			if n.AuthorID == userID || admin {
				h.Raw(`<form method="post" action="`)
				h.Text(detailPath(bookingID) + "/notes/" + n.ID + "/delete")
				h.Raw(`">`)
				pages.CSRFField(ctx, h)
				h.Raw(`<button type="submit" class="link">Delete</button></form>`)
			}
			h.Raw(`</header><div class="note-body">`)
			h.Raw(n.BodyHTML)
			h.Raw(`</div></article>`)
		}

		h.Raw(`<form method="post" action="`)
		h.Text(detailPath(bookingID) + "/notes")
		h.Raw(`">`)
		pages.CSRFField(ctx, h)
		h.Raw(`<textarea name="body" rows="4" required placeholder="Add a note (Markdown supported)"></textarea>`)
		h.Raw(`<button type="submit">Add note</button></form></section>`)
	})
}
