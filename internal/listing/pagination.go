package listing

const (
	// DefaultPerPage is the page size a view starts with.
	DefaultPerPage = 10

	// MaxPerPage caps page sizes requested by clients.
	MaxPerPage = 100
)

// Window is the visible page of a list.
type Window struct {
	CurrentPage  int `json:"current_page"`
	ItemsPerPage int `json:"per_page"`
}

// NewWindow clamps page to >= 1 and perPage to (0, MaxPerPage]; a
// non-positive perPage falls back to DefaultPerPage.
func NewWindow(page, perPage int) Window {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Window{CurrentPage: page, ItemsPerPage: perPage}
}

// Bounds returns the half-open [start, end) slice bounds of the window over n
// items. Out-of-range windows yield start == end.
func (w Window) Bounds(n int) (int, int) {
	w = NewWindow(w.CurrentPage, w.ItemsPerPage)
	// Compare pages before multiplying so huge page numbers cannot overflow.
	if w.CurrentPage-1 >= TotalPages(n, w.ItemsPerPage) {
		return n, n
	}
	start := (w.CurrentPage - 1) * w.ItemsPerPage
	end := start + w.ItemsPerPage
	if end > n {
		end = n
	}
	return start, end
}

// TotalPages is ceil(total / perPage); zero items means zero pages.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// PaginationMeta describes a page for JSON responses and templates.
type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// HasPrev reports whether a previous page exists.
func (m PaginationMeta) HasPrev() bool { return m.CurrentPage > 1 }

// HasNext reports whether a following page exists.
func (m PaginationMeta) HasNext() bool { return m.CurrentPage < m.TotalPages }

// Page is one window over a fully fetched result set.
type Page[T any] struct {
	Items []T            `json:"data"`
	Meta  PaginationMeta `json:"pagination"`
}

// Paginate slices items to the window. The returned Items never aliases
// beyond the window and is non-nil so it encodes as [].
func Paginate[T any](items []T, w Window) Page[T] {
	w = NewWindow(w.CurrentPage, w.ItemsPerPage)
	start, end := w.Bounds(len(items))

	visible := make([]T, end-start)
	copy(visible, items[start:end])

	return Page[T]{
		Items: visible,
		Meta: PaginationMeta{
			CurrentPage: w.CurrentPage,
			PerPage:     w.ItemsPerPage,
			TotalItems:  len(items),
			TotalPages:  TotalPages(len(items), w.ItemsPerPage),
		},
	}
}

// PaginateView pages items for st, first pulling st back onto the last page
// when the result set has shrunk below the stored page.
func PaginateView[T any](items []T, st *ViewState) Page[T] {
	st.ClampPage(TotalPages(len(items), st.Window.ItemsPerPage))
	return Paginate(items, st.Window)
}
