// Package pages holds the shared page shell and the components every admin
// page reuses: error and loading states, the list filter bar, pagination and
// selection controls. Plugin-specific pages live in their plugin and build on
// these. Components are templ.Components so handlers render them through
// middleware.Render like any generated template.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// Writer accumulates HTML output and remembers the first write error, so
// component bodies can write unconditionally and check Err once.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup as-is.
func (h *Writer) Raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// Text writes s HTML-escaped. Safe for element content and quoted attributes.
func (h *Writer) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Textf formats and writes escaped text.
func (h *Writer) Textf(format string, args ...any) {
	h.Text(fmt.Sprintf(format, args...))
}

// Component renders a nested component.
func (h *Writer) Component(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Err returns the first write error.
func (h *Writer) Err() error {
	return h.err
}

// Component adapts a writer-based render function to templ.Component.
func Component(fn func(ctx context.Context, h *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewWriter(w)
		fn(ctx, h)
		return h.Err()
	})
}
