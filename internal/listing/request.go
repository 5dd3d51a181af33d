package listing

import (
	"net/url"
	"strconv"
)

// ApplyValues folds request query parameters into the state. Only parameters
// present in v are applied, so a bare page link keeps the stored filters.
// A filter or page size change resets to page 1 and wins over "page".
func (s *ViewState) ApplyValues(v url.Values) {
	reset := false

	if hasAny(v, "status", "search", "dateRange", "sortBy", "sortOrder") {
		f := s.Filters
		if v.Has("status") {
			f.Status = v.Get("status")
		}
		if v.Has("search") {
			f.Search = v.Get("search")
		}
		if v.Has("dateRange") {
			f.DateRange = DateRange(v.Get("dateRange"))
		}
		if v.Has("sortBy") {
			f.SortBy = v.Get("sortBy")
		}
		if v.Has("sortOrder") {
			f.SortOrder = SortOrder(v.Get("sortOrder"))
		}
		reset = s.ApplyFilters(f)
	}

	if n, err := strconv.Atoi(v.Get("per_page")); err == nil {
		before := s.Window.ItemsPerPage
		s.SetPageSize(n)
		if s.Window.ItemsPerPage != before {
			s.Window.CurrentPage = 1
			reset = true
		}
	}

	if reset {
		return
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil {
		s.SetPage(p)
	}
}

func hasAny(v url.Values, keys ...string) bool {
	for _, k := range keys {
		if v.Has(k) {
			return true
		}
	}
	return false
}
