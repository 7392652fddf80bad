// Package pagination implements the standalone pagination state unit:
// page/size/total bookkeeping with derived navigation flags, a centered
// window of page numbers for page controls, and the visible item range.
package pagination

import "github.com/aihavenlabs/pathwei-admin/pkg/types"

// Options configures a State. Zero values take the defaults.
type Options struct {
	InitialPage     int
	InitialLimit    int
	MaxVisiblePages int
	OnPageChange    func(page int)
	OnLimitChange   func(limit int)
}

// Default option values.
const (
	DefaultInitialPage     = 1
	DefaultInitialLimit    = types.DefaultPageLimit
	DefaultMaxVisiblePages = types.DefaultMaxVisiblePages
)

// Patch carries the fields to merge in Update; nil fields are left alone.
type Patch struct {
	CurrentPage  *int
	TotalPages   *int
	TotalItems   *int
	ItemsPerPage *int
}

// PatchFrom builds a Patch carrying every field of server-reported
// pagination.
func PatchFrom(p types.Pagination) Patch {
	return Patch{
		CurrentPage:  &p.CurrentPage,
		TotalPages:   &p.TotalPages,
		TotalItems:   &p.TotalItems,
		ItemsPerPage: &p.ItemsPerPage,
	}
}

// Totals builds a Patch carrying only totals, which is what a server listing
// usually contributes.
func Totals(totalItems, totalPages int) Patch {
	return Patch{TotalItems: &totalItems, TotalPages: &totalPages}
}

// State is owned by a single caller and is not safe for concurrent use.
type State struct {
	st         types.PaginationState
	maxVisible int
	onPage     func(int)
	onLimit    func(int)
}

// New creates a State. Until totals are known the page count equals the
// initial page, so the initial page is always in range.
func New(opts Options) *State {
	page := opts.InitialPage
	if page < 1 {
		page = DefaultInitialPage
	}
	limit := opts.InitialLimit
	if limit < 1 {
		limit = DefaultInitialLimit
	}
	maxVisible := opts.MaxVisiblePages
	if maxVisible < 1 {
		maxVisible = DefaultMaxVisiblePages
	}
	s := &State{
		st: types.PaginationState{
			CurrentPage:  page,
			TotalPages:   page,
			ItemsPerPage: limit,
		},
		maxVisible: maxVisible,
		onPage:     opts.OnPageChange,
		onLimit:    opts.OnLimitChange,
	}
	s.recompute()
	return s
}

// State returns a snapshot.
func (s *State) State() types.PaginationState {
	return s.st
}

// SetPage moves to page. Pages outside [1, TotalPages] are ignored.
func (s *State) SetPage(page int) {
	if page < 1 || page > s.st.TotalPages {
		return
	}
	s.st.CurrentPage = page
	s.recompute()
	if s.onPage != nil {
		s.onPage(page)
	}
}

// SetLimit changes the page size, recomputes the page count from the known
// total and clamps the current page into range. Limits below 1 are ignored.
func (s *State) SetLimit(limit int) {
	if limit < 1 {
		return
	}
	prev := s.st.CurrentPage
	s.st.ItemsPerPage = limit
	s.st.TotalPages = max(ceilDiv(s.st.TotalItems, limit), 1)
	s.st.CurrentPage = min(s.st.CurrentPage, s.st.TotalPages)
	s.recompute()
	if s.onLimit != nil {
		s.onLimit(limit)
	}
	if s.st.CurrentPage != prev && s.onPage != nil {
		s.onPage(s.st.CurrentPage)
	}
}

// NextPage advances one page when there is a next page.
func (s *State) NextPage() {
	if s.st.HasNextPage {
		s.SetPage(s.st.CurrentPage + 1)
	}
}

// PrevPage goes back one page when there is a previous page.
func (s *State) PrevPage() {
	if s.st.HasPrevPage {
		s.SetPage(s.st.CurrentPage - 1)
	}
}

// FirstPage moves to page 1.
func (s *State) FirstPage() {
	s.SetPage(1)
}

// LastPage moves to the last page.
func (s *State) LastPage() {
	s.SetPage(s.st.TotalPages)
}

// Update merges p, typically server-reported totals, and recomputes the
// navigation flags. The page count is at least 1 and the current page is
// clamped into range.
func (s *State) Update(p Patch) {
	if p.CurrentPage != nil {
		s.st.CurrentPage = *p.CurrentPage
	}
	if p.TotalPages != nil {
		s.st.TotalPages = *p.TotalPages
	}
	if p.TotalItems != nil {
		s.st.TotalItems = *p.TotalItems
	}
	if p.ItemsPerPage != nil {
		s.st.ItemsPerPage = *p.ItemsPerPage
	}
	s.st.TotalPages = max(s.st.TotalPages, 1)
	s.st.CurrentPage = max(1, min(s.st.CurrentPage, s.st.TotalPages))
	s.recompute()
}

// VisiblePages returns a window of at most MaxVisiblePages consecutive page
// numbers centered on the current page and kept inside [1, TotalPages].
func (s *State) VisiblePages() []int {
	total := s.st.TotalPages
	half := s.maxVisible / 2
	start := max(1, s.st.CurrentPage-half)
	end := min(total, start+s.maxVisible-1)
	if end-start+1 < s.maxVisible {
		start = max(1, end-s.maxVisible+1)
	}
	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// PageInfo returns the 1-based range of items on the current page, clamped
// to the total.
func (s *State) PageInfo() types.PageInfo {
	per := s.st.ItemsPerPage
	total := s.st.TotalItems
	return types.PageInfo{
		StartItem:  min((s.st.CurrentPage-1)*per+1, total),
		EndItem:    min(s.st.CurrentPage*per, total),
		TotalItems: total,
	}
}

func (s *State) recompute() {
	s.st.HasNextPage = s.st.CurrentPage < s.st.TotalPages
	s.st.HasPrevPage = s.st.CurrentPage > 1
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
