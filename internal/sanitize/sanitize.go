// Package sanitize turns staff-written text into HTML that is safe to render.
// Booking notes are written in Markdown, converted with goldmark and then
// passed through a bluemonday policy that strips scripts, event handlers and
// javascript: URLs while keeping ordinary formatting.
package sanitize

import (
	"bytes"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// GFM tables and task lists.
		policy.AllowElements("table", "thead", "tbody", "tr", "td", "th")
		policy.AllowAttrs("align").OnElements("td", "th")
		policy.AllowAttrs("type", "checked", "disabled").OnElements("input")
		policy.AllowElements("input")

		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return policy
}

// HTML sanitizes user-supplied HTML. Must be applied before storing or
// rendering anything a user typed.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	return getPolicy().Sanitize(input)
}

// Markdown renders Markdown to sanitized HTML. Raw HTML in the source is
// passed through by goldmark so the text around it survives; the policy
// then strips any markup it does not allow.
func Markdown(input string) (string, error) {
	if input == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return "", err
	}
	return HTML(buf.String()), nil
}
