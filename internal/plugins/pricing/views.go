package pricing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/templates/pages"
)

var statusOptions = []pages.Option{
	{Value: listing.StatusAll, Label: "All rules"},
	{Value: StatusActive, Label: "Active"},
	{Value: StatusInactive, Label: "Inactive"},
}

var sortOptions = []pages.Option{
	{Value: "priority", Label: "Priority"},
	{Value: "rule_name", Label: "Name"},
	{Value: "rule_type", Label: "Type"},
	{Value: "created_at", Label: "Created"},
}

func formatGBP(v float64) string {
	return fmt.Sprintf("£%.2f", v)
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// humanize turns a snake_case enum value into a label.
func humanize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ListPage renders the pricing rules with the new-rule form.
func ListPage(basePath string, st listing.ViewState, page *listing.Page[Rule]) templ.Component {
	v := pages.ListView{
		BasePath:    basePath,
		State:       st,
		Statuses:    statusOptions,
		SortOptions: sortOptions,
	}
	if page != nil {
		v.Meta = page.Meta
	}

	return pages.Page("Pricing rules", pages.Component(func(ctx context.Context, h *pages.Writer) {
		h.Raw(`<h1>Pricing rules</h1>`)
		createForm(ctx, h, basePath)
		h.Component(ctx, pages.FilterBar(v))

		if page == nil {
			h.Component(ctx, pages.CouldNotLoad("pricing rules"))
			return
		}
		if len(page.Items) == 0 {
			h.Raw(`<p class="empty">No pricing rules found. Create your first rule to get started.</p>`)
			return
		}

		h.Raw(`<table class="pricing-rules"><thead><tr><th>Rule</th><th>Type</th><th>Condition</th><th>Method</th><th>Amount/Rate</th><th>Priority</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, r := range page.Items {
			h.Raw(`<tr><td>`)
			h.Text(r.Name)
			h.Raw(`</td><td><span class="badge rule-`)
			h.Text(string(r.RuleType))
			h.Raw(`">`)
			h.Text(humanize(string(r.RuleType)))
			h.Raw(`</span></td><td>`)
			h.Text(humanize(string(r.ConditionType)))
			h.Raw(`</td><td>`)
			h.Text(humanize(string(r.CalculationMethod)))
			h.Raw(`</td><td>`)
			h.Text(r.Amount())
			h.Raw(`</td><td>`)
			h.Text(strconv.Itoa(r.Priority))
			h.Raw(`</td><td>`)
			toggleForm(ctx, h, basePath, r)
			h.Raw(`</td><td>`)
			deleteForm(ctx, h, basePath, r)
			h.Raw(`</td></tr>`)
		}
		h.Raw(`</tbody></table>`)

		h.Component(ctx, pages.Pagination(v))
	}))
}

func selectField[T ~string](h *pages.Writer, name, label string, values []T) {
	h.Raw(`<label>`)
	h.Text(label)
	h.Raw(` <select name="`)
	h.Text(name)
	h.Raw(`" required>`)
	for _, v := range values {
		h.Raw(`<option value="`)
		h.Text(string(v))
		h.Raw(`">`)
		h.Text(humanize(string(v)))
		h.Raw(`</option>`)
	}
	h.Raw(`</select></label>`)
}

func createForm(ctx context.Context, h *pages.Writer, basePath string) {
	h.Raw(`<form class="new-rule" method="post" action="`)
	h.Text(basePath)
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	h.Raw(`<label>Rule name <input name="rule_name" maxlength="120" required></label>`)
	selectField(h, "rule_type", "Type", RuleTypes)
	selectField(h, "condition_type", "Condition", ConditionTypes)
	selectField(h, "calculation_method", "Method", Methods)
	selectField(h, "applies_to", "Applies to", AppliesToValues)
	h.Raw(`<label>Amount (£) <input name="base_amount" type="number" step="0.01" min="0"></label>`)
	h.Raw(`<label>Rate (%) <input name="percentage_rate" type="number" step="0.01" min="0" max="100"></label>`)
	h.Raw(`<label>Minimum (£) <input name="min_amount" type="number" step="0.01" min="0"></label>`)
	h.Raw(`<label>Maximum (£) <input name="max_amount" type="number" step="0.01" min="0"></label>`)
	h.Raw(`<label>Priority <input name="priority" type="number" min="0" value="100"></label>`)
	h.Raw(`<label>Description <textarea name="description" rows="2"></textarea></label>`)
	h.Raw(`<button type="submit">Create rule</button></form>`)
}

func toggleForm(ctx context.Context, h *pages.Writer, basePath string, r Rule) {
	h.Raw(`<form method="post" action="`)
	h.Text(basePath + "/" + r.ID + "/active")
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	if r.IsActive {
		h.Raw(`<input type="hidden" name="active" value="false"><span class="badge active">Active</span> <button type="submit" class="link">Deactivate</button>`)
	} else {
		h.Raw(`<input type="hidden" name="active" value="true"><span class="badge inactive">Inactive</span> <button type="submit" class="link">Activate</button>`)
	}
	h.Raw(`</form>`)
}

func deleteForm(ctx context.Context, h *pages.Writer, basePath string, r Rule) {
	h.Raw(`<form method="post" onsubmit="return confirm('Delete this pricing rule?')" action="`)
	h.Text(basePath + "/" + r.ID + "/delete")
	h.Raw(`">`)
	pages.CSRFField(ctx, h)
	h.Raw(`<button type="submit" class="link danger">Delete</button></form>`)
}
