package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/templates/layouts"
)

// Page wraps body in the admin shell: document head, navigation for the
// signed-in user's role and the sign-out button.
func Page(title string, body templ.Component) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Raw(`<title>`)
		h.Text(title)
		h.Raw(` · Plus Vans Admin</title><link rel="stylesheet" href="/static/css/admin.css"></head><body>`)

		if layouts.IsAuthenticated(ctx) {
			navBar(ctx, h)
		}

		h.Raw(`<main id="main">`)
		h.Component(ctx, body)
		h.Raw(`</main></body></html>`)
	})
}

func navBar(ctx context.Context, h *Writer) {
	active := layouts.GetActivePath(ctx)

	h.Raw(`<nav class="sidebar"><ul>`)
	for _, item := range layouts.Nav(layouts.GetUserRole(ctx)) {
		h.Raw(`<li><a href="`)
		h.Text(item.Path)
		h.Raw(`"`)
		if item.IsActive(active) {
			h.Raw(` class="active" aria-current="page"`)
		}
		h.Raw(`>`)
		h.Text(item.Label)
		h.Raw(`</a></li>`)
	}
	h.Raw(`</ul><div class="user" data-user-id="`)
	h.Text(layouts.GetUserID(ctx))
	h.Raw(`" title="`)
	h.Text(layouts.GetUserEmail(ctx))
	h.Raw(`">`)
	h.Text(layouts.GetUserName(ctx))
	h.Raw(` <span class="role">`)
	h.Text(layouts.GetUserRole(ctx))
	h.Raw(`</span>`)
	h.Raw(`<form method="post" action="/auth/signout">`)
	CSRFField(ctx, h)
	h.Raw(`<button type="submit">Sign out</button></form></div></nav>`)
}

// CSRFField writes the hidden CSRF input for a form.
func CSRFField(ctx context.Context, h *Writer) {
	h.Raw(`<input type="hidden" name="csrf_token" value="`)
	h.Text(layouts.GetCSRFToken(ctx))
	h.Raw(`">`)
}
