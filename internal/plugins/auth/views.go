package auth

import (
	"context"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/templates/pages"
)

// SignInPage is the full sign-in page.
func SignInPage(csrfToken, username, callbackURL, errMsg string) templ.Component {
	return pages.Page("Sign in", SignInForm(csrfToken, username, callbackURL, errMsg))
}

// SignInForm is the sign-in form alone, swapped in place by HTMX on failure.
func SignInForm(csrfToken, username, callbackURL, errMsg string) templ.Component {
	return pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<section id="signin" class="signin"><h1>Plus Vans Admin</h1>`)
		if errMsg != "" {
			h.Raw(`<p class="form-error" role="alert">`)
			h.Text(errMsg)
			h.Raw(`</p>`)
		}
		h.Raw(`<form method="post" action="/auth/signin" hx-post="/auth/signin" hx-target="#signin" hx-swap="outerHTML">`)
		h.Raw(`<input type="hidden" name="csrf_token" value="`)
		h.Text(csrfToken)
		h.Raw(`"><input type="hidden" name="callbackUrl" value="`)
		h.Text(callbackURL)
		h.Raw(`"><label>Email <input type="text" name="username" autocomplete="username" required value="`)
		h.Text(username)
		h.Raw(`"></label>`)
		h.Raw(`<label>Password <input type="password" name="password" autocomplete="current-password" required></label>`)
		h.Raw(`<button type="submit">Sign in</button></form></section>`)
	})
}
