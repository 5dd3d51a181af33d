package pages

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/templates/layouts"
)

// ErrorPage is the top-level recoverable error screen. "Try again" reloads
// the current URL; the request ID is shown so support can find the log line.
func ErrorPage(code int, message string) templ.Component {
	body := Component(func(ctx context.Context, h *Writer) {
		h.Raw(`<section class="error-page"><p class="error-code">`)
		h.Text(strconv.Itoa(code))
		h.Raw(`</p><h1>Something went wrong</h1><p>`)
		h.Text(message)
		h.Raw(`</p><div class="actions"><a class="button" href="">Try again</a>`)
		h.Raw(`<a class="button secondary" href="/admin">Return to dashboard</a></div>`)
		if rid := layouts.GetRequestID(ctx); rid != "" {
			h.Raw(`<p class="error-id">Error ID: <code>`)
			h.Text(rid)
			h.Raw(`</code></p>`)
		}
		h.Raw(`</section>`)
	})
	return Page("Error", body)
}

// LoadingPage is the neutral placeholder shown while authentication has not
// resolved. It never contains protected content.
func LoadingPage() templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta http-equiv="refresh" content="1"><title>Loading…</title></head>`)
		h.Raw(`<body><div class="spinner" role="status" aria-live="polite">Loading…</div></body></html>`)
	})
}

// UnauthorizedPage is shown when the signed-in user's role does not allow
// the requested page.
func UnauthorizedPage() templ.Component {
	body := Component(func(ctx context.Context, h *Writer) {
		h.Raw(`<section class="error-page"><h1>Access denied</h1>`)
		h.Raw(`<p>Your account does not have permission to view this page.</p>`)
		h.Raw(`<div class="actions"><a class="button" href="/admin">Return to dashboard</a></div></section>`)
	})
	return Page("Unauthorized", body)
}

// CouldNotLoad is the inert state a list or panel shows when its data
// query failed. Nothing is retried automatically.
func CouldNotLoad(what string) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		h.Raw(`<div class="could-not-load" role="alert">Could not load `)
		h.Text(what)
		h.Raw(`. <a href="">Reload</a></div>`)
	})
}
