package listing

import (
	"net/url"
	"reflect"
	"testing"
)

func TestViewState_ApplyFiltersResetsPageAndSelection(t *testing.T) {
	s := NewViewState(10)
	s.SetPage(3)
	s.Toggle("a")

	f := DefaultFilters()
	f.Status = "pending"
	if !s.ApplyFilters(f) {
		t.Fatal("expected change")
	}
	if s.Window.CurrentPage != 1 {
		t.Errorf("expected page 1, got %d", s.Window.CurrentPage)
	}
	if len(s.Selected) != 0 {
		t.Errorf("expected selection cleared, got %v", s.SelectedIDs())
	}
}

func TestViewState_ApplySameFiltersKeepsState(t *testing.T) {
	s := NewViewState(10)
	s.SetPage(2)
	s.Toggle("a")

	if s.ApplyFilters(DefaultFilters()) {
		t.Fatal("expected no change")
	}
	if s.Window.CurrentPage != 2 || !s.IsSelected("a") {
		t.Errorf("state changed unexpectedly: %+v", s)
	}
}

func TestViewState_PageSizeResets(t *testing.T) {
	s := NewViewState(10)
	s.SetPage(4)
	s.Toggle("a")

	s.SetPageSize(25)
	if s.Window.CurrentPage != 1 || s.Window.ItemsPerPage != 25 {
		t.Errorf("unexpected window %+v", s.Window)
	}
	if len(s.Selected) != 0 {
		t.Error("expected selection cleared on page size change")
	}
}

func TestViewState_PageChangeClearsSelection(t *testing.T) {
	s := NewViewState(10)
	s.Toggle("a")
	s.SetPage(2)
	if len(s.Selected) != 0 {
		t.Error("expected selection cleared on page change")
	}
}

func TestViewState_ToggleAll(t *testing.T) {
	visible := []string{"a", "b", "c"}
	s := NewViewState(10)

	s.Toggle("b")
	s.ToggleAll(visible)
	if !reflect.DeepEqual(s.SelectedIDs(), visible) {
		t.Fatalf("expected all selected, got %v", s.SelectedIDs())
	}
	if !s.AllSelected(visible) {
		t.Error("AllSelected should be true")
	}

	s.ToggleAll(visible)
	if len(s.Selected) != 0 {
		t.Errorf("expected selection cleared, got %v", s.SelectedIDs())
	}
	if s.AllSelected(nil) {
		t.Error("AllSelected on empty page should be false")
	}
}

func TestViewState_ToggleIsInvolution(t *testing.T) {
	s := NewViewState(10)
	s.Toggle("x")
	s.Toggle("x")
	if s.IsSelected("x") {
		t.Error("expected x deselected after two toggles")
	}
}

func TestViewState_VisibleSelection(t *testing.T) {
	s := NewViewState(10)
	s.Toggle("c")
	s.Toggle("a")
	got := s.VisibleSelection([]string{"a", "b", "c"})
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("unexpected visible selection %v", got)
	}
}

func TestViewState_ClampPage(t *testing.T) {
	s := NewViewState(10)
	s.SetPage(7)
	s.ClampPage(3)
	if s.Window.CurrentPage != 3 {
		t.Errorf("expected page 3, got %d", s.Window.CurrentPage)
	}
	s.ClampPage(0)
	if s.Window.CurrentPage != 1 {
		t.Errorf("expected page 1, got %d", s.Window.CurrentPage)
	}
}

func TestViewState_ApplyValues(t *testing.T) {
	s := NewViewState(10)
	s.ApplyValues(url.Values{"page": {"3"}})
	if s.Window.CurrentPage != 3 {
		t.Fatalf("expected page 3, got %d", s.Window.CurrentPage)
	}

	s.ApplyValues(url.Values{"status": {"confirmed"}, "page": {"5"}})
	if s.Filters.Status != "confirmed" || s.Window.CurrentPage != 1 {
		t.Errorf("filter change should win over page: %+v", s)
	}
	if s.Filters.SortBy != "created_at" {
		t.Errorf("absent params should keep stored filters, got %+v", s.Filters)
	}

	s.ApplyValues(url.Values{"per_page": {"50"}, "page": {"2"}})
	if s.Window.ItemsPerPage != 50 || s.Window.CurrentPage != 1 {
		t.Errorf("page size change should reset page: %+v", s.Window)
	}

	s.ApplyValues(url.Values{"status": {"pending"}, "per_page": {"25"}})
	if s.Filters.Status != "pending" || s.Window.ItemsPerPage != 25 || s.Window.CurrentPage != 1 {
		t.Errorf("filters and page size should apply together: %+v", s)
	}
}
