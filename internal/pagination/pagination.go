// Package pagination splits ordered post listings into fixed-size pages.
//
// Listings backed by the database use NewWindow to compute LIMIT/OFFSET
// from a total count, then wrap the fetched rows with NewPage. In-memory
// slices can be paged directly with Paginate.
package pagination

import "strconv"

// QueryParam is the query string key carrying the requested page number.
const QueryParam = "page"

// Window describes one page of a result set of known size.
type Window struct {
	Number     int // 1-based page number after clamping
	PerPage    int
	TotalItems int
	TotalPages int
	Limit      int
	Offset     int
}

// NewWindow resolves the requested page against total items.
// Any page number outside 1..pages resolves to the last page, so a page
// below 1 does too. An empty result still has a single, empty page.
func NewWindow(total, perPage, requested int) Window {
	if perPage < 1 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}

	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}

	number := requested
	if number < 1 || number > pages {
		number = pages
	}

	return Window{
		Number:     number,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: pages,
		Limit:      perPage,
		Offset:     (number - 1) * perPage,
	}
}

// Page is a slice of items together with its position in the full listing.
type Page[T any] struct {
	Window
	Items []T
}

// NewPage pairs items fetched for w with the window metadata.
func NewPage[T any](w Window, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Window: w, Items: items}
}

// Paginate returns the requested page of an already ordered slice.
func Paginate[T any](items []T, perPage, requested int) *Page[T] {
	w := NewWindow(len(items), perPage, requested)
	end := w.Offset + w.Limit
	if end > len(items) {
		end = len(items)
	}
	return NewPage(w, items[w.Offset:end])
}

// ParsePageNumber reads a page number from a raw query value.
// Anything that is not an integer means the first page.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

func (p *Page[T]) Len() int { return len(p.Items) }

func (p *Page[T]) HasNext() bool { return p.Number < p.TotalPages }

func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p *Page[T]) HasOtherPages() bool { return p.HasNext() || p.HasPrevious() }

func (p *Page[T]) NextPageNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, for rendering the paginator.
func (p *Page[T]) PageRange() []int {
	r := make([]int, p.TotalPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}
