package listing

import "sort"

// ViewState is everything a list view remembers between requests: the filter
// form, the page window and the set of row IDs selected for bulk actions.
//
// Selection is a set of IDs rather than positions, so it survives reordering,
// but it is cleared whenever the visible result set changes (filters, page
// size, or page), so bulk actions never touch rows the operator can't see.
type ViewState struct {
	Filters  Filters         `json:"filters"`
	Window   Window          `json:"window"`
	Selected map[string]bool `json:"selected"`
}

// NewViewState returns the initial state for a view.
func NewViewState(perPage int) ViewState {
	return ViewState{
		Filters:  DefaultFilters(),
		Window:   NewWindow(1, perPage),
		Selected: map[string]bool{},
	}
}

// ApplyFilters replaces the filter form. A change resets the window to page 1
// and clears the selection. Reports whether anything changed.
func (s *ViewState) ApplyFilters(f Filters) bool {
	f = f.Normalize()
	if f == s.Filters {
		return false
	}
	s.Filters = f
	s.Window.CurrentPage = 1
	s.ClearSelection()
	return true
}

// SetPageSize changes the page size, resetting to page 1 and clearing the
// selection when it differs from the current one.
func (s *ViewState) SetPageSize(perPage int) {
	w := NewWindow(1, perPage)
	if w.ItemsPerPage == s.Window.ItemsPerPage {
		return
	}
	s.Window = w
	s.ClearSelection()
}

// SetPage moves to page p, clearing the selection when the page changes.
func (s *ViewState) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	if p == s.Window.CurrentPage {
		return
	}
	s.Window.CurrentPage = p
	s.ClearSelection()
}

// ClampPage pulls the current page back inside [1, totalPages] after the
// result set shrinks. Selection is left alone.
func (s *ViewState) ClampPage(totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if s.Window.CurrentPage > totalPages {
		s.Window.CurrentPage = totalPages
	}
}

// Toggle flips membership of id in the selection.
func (s *ViewState) Toggle(id string) {
	if s.Selected == nil {
		s.Selected = map[string]bool{}
	}
	if s.Selected[id] {
		delete(s.Selected, id)
		return
	}
	s.Selected[id] = true
}

// ToggleAll selects every visible row, or clears the selection if every
// visible row is already selected.
func (s *ViewState) ToggleAll(visible []string) {
	if s.AllSelected(visible) {
		s.ClearSelection()
		return
	}
	s.Selected = make(map[string]bool, len(visible))
	for _, id := range visible {
		s.Selected[id] = true
	}
}

// AllSelected reports whether visible is non-empty and entirely selected.
func (s ViewState) AllSelected(visible []string) bool {
	if len(visible) == 0 {
		return false
	}
	for _, id := range visible {
		if !s.Selected[id] {
			return false
		}
	}
	return true
}

// IsSelected reports whether id is selected.
func (s ViewState) IsSelected(id string) bool {
	return s.Selected[id]
}

// ClearSelection empties the selection.
func (s *ViewState) ClearSelection() {
	s.Selected = map[string]bool{}
}

// SelectedIDs returns the selection in sorted order.
func (s ViewState) SelectedIDs() []string {
	ids := make([]string, 0, len(s.Selected))
	for id, ok := range s.Selected {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// VisibleSelection intersects the selection with the visible rows, keeping
// the order of visible.
func (s ViewState) VisibleSelection(visible []string) []string {
	out := make([]string, 0, len(s.Selected))
	for _, id := range visible {
		if s.Selected[id] {
			out = append(out, id)
		}
	}
	return out
}
