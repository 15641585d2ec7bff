// Package pagination splits ordered listings into numbered pages.
// Page numbers are 1-based and an empty listing still has one page.
package pagination

import (
	"strconv"
	"strings"
)

// PerPage is the page size of every feed.
const PerPage = 10

type Paginator struct {
	Count   int
	PerPage int
}

func New(count, perPage int) *Paginator {
	if perPage <= 0 {
		perPage = PerPage
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages is at least 1.
func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Number resolves a raw page parameter. Anything that is not an integer
// gives page 1; integers outside the range give the last page.
func (p *Paginator) Number(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	if n < 1 || n > p.NumPages() {
		return p.NumPages()
	}
	return n
}

// Offset of the first item on page number.
func (p *Paginator) Offset(number int) int {
	return (number - 1) * p.PerPage
}

type Page[T any] struct {
	Number   int
	Items    []T
	NumPages int
	Count    int
}

// GetPage resolves raw and fetches that page's items.
func GetPage[T any](p *Paginator, raw string, fetch func(limit, offset int) ([]T, error)) (*Page[T], error) {
	number := p.Number(raw)
	page := &Page[T]{
		Number:   number,
		NumPages: p.NumPages(),
		Count:    p.Count,
	}
	if p.Count == 0 {
		page.Items = []T{}
		return page, nil
	}

	items, err := fetch(p.PerPage, p.Offset(number))
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

func (pg *Page[T]) HasPrevious() bool {
	return pg.Number > 1
}

func (pg *Page[T]) HasNext() bool {
	return pg.Number < pg.NumPages
}

func (pg *Page[T]) HasOtherPages() bool {
	return pg.HasPrevious() || pg.HasNext()
}

func (pg *Page[T]) PreviousNumber() int {
	return pg.Number - 1
}

func (pg *Page[T]) NextNumber() int {
	return pg.Number + 1
}

// PageRange lists 1..NumPages for the paginator links.
func (pg *Page[T]) PageRange() []int {
	pages := make([]int, pg.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
