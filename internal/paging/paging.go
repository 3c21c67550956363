package paging

import "strconv"

// PageSize is the number of posts shown on every listing page.
const PageSize = 10

// Page describes one page of a listing. The zero value is not useful;
// build pages with New.
type Page struct {
	Number   int // 1-based, already clamped to [1, NumPages]
	Total    int // total items across all pages
	NumPages int
}

// ParseNumber maps the raw "page" query value to a page number.
// Missing, malformed or non-positive input means page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// New computes the page for a listing of total items. A number past the
// last page clamps to the last page; an empty listing still has one
// (empty) page so navigation can render.
func New(total, number int) Page {
	numPages := (total + PageSize - 1) / PageSize
	if numPages < 1 {
		numPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}
	return Page{Number: number, Total: total, NumPages: numPages}
}

// Offset returns the query offset for this page.
func (p Page) Offset() int { return (p.Number - 1) * PageSize }

// Limit returns the query limit for this page.
func (p Page) Limit() int { return PageSize }

// Count returns how many items this page holds.
func (p Page) Count() int {
	remaining := p.Total - p.Offset()
	if remaining < 0 {
		return 0
	}
	if remaining > PageSize {
		return PageSize
	}
	return remaining
}

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) PrevNumber() int {
	if p.Number <= 1 {
		return 1
	}
	return p.Number - 1
}

func (p Page) NextNumber() int {
	if p.Number >= p.NumPages {
		return p.NumPages
	}
	return p.Number + 1
}
