// Package query holds the per-list request state: the active filter set,
// single-column sort and paging. Every setter that changes the outgoing
// criteria synchronously triggers exactly one new search through the bound
// runner; there is no hidden watcher.
package query

import (
	"sync"

	"github.com/medlab/labadmin/pkg/criteria"
)

// Runner re-issues the list search with the current criteria. A nil runner
// puts the ListQuery in manual mode (the owner triggers refreshes itself).
type Runner func()

// ListQuery is the filter/sort/page state of one list view. Safe for
// concurrent use.
type ListQuery struct {
	mu         sync.Mutex
	filters    []criteria.Filter
	sort       criteria.SortBy
	pageIndex  int
	pageSize   int
	totalPages int
	run        Runner
}

func New(run Runner) *ListQuery {
	return &ListQuery{
		pageIndex: 1,
		pageSize:  criteria.DefaultPageSize,
		run:       run,
	}
}

// Criteria builds the outgoing request shape. Empty-valued filters are kept
// here (they still render in the UI state) and dropped at the client edge.
func (q *ListQuery) Criteria() criteria.Criteria {
	q.mu.Lock()
	defer q.mu.Unlock()
	filters := make([]criteria.Filter, len(q.filters))
	copy(filters, q.filters)
	return criteria.Criteria{
		Filters:   filters,
		SortBy:    q.sort,
		PageIndex: q.pageIndex,
		PageSize:  q.pageSize,
	}
}

// SetFilter upserts the filter for field, preserving insertion order, then
// triggers one search. An empty value keeps the entry locally but it is
// never sent.
func (q *ListQuery) SetFilter(field, value string) {
	q.SetFilterOp(field, "", value)
}

// SetFilterOp is SetFilter with an explicit backend operation.
func (q *ListQuery) SetFilterOp(field, op, value string) {
	q.mu.Lock()
	found := false
	for i := range q.filters {
		if q.filters[i].Field == field {
			q.filters[i].Operation = op
			q.filters[i].Value = value
			found = true
			break
		}
	}
	if !found {
		q.filters = append(q.filters, criteria.Filter{Field: field, Operation: op, Value: value})
	}
	q.pageIndex = 1
	q.mu.Unlock()
	q.trigger()
}

// RemoveFilter drops the filter for field and triggers one search. Removing
// an absent field is a no-op.
func (q *ListQuery) RemoveFilter(field string) {
	q.mu.Lock()
	kept := q.filters[:0]
	removed := false
	for _, f := range q.filters {
		if f.Field == field {
			removed = true
			continue
		}
		kept = append(kept, f)
	}
	q.filters = kept
	if removed {
		q.pageIndex = 1
	}
	q.mu.Unlock()
	if removed {
		q.trigger()
	}
}

// ClearFilters drops every filter and triggers one search.
func (q *ListQuery) ClearFilters() {
	q.mu.Lock()
	q.filters = nil
	q.pageIndex = 1
	q.mu.Unlock()
	q.trigger()
}

// ToggleSort sorts by field ascending, or flips the direction when field is
// already the sort key. Sorting is single-column: a new key replaces the
// old one.
func (q *ListQuery) ToggleSort(field string) {
	q.mu.Lock()
	if q.sort.Field == field {
		q.sort.Ascending = !q.sort.Ascending
	} else {
		q.sort = criteria.SortBy{Field: field, Ascending: true}
	}
	q.mu.Unlock()
	q.trigger()
}

// SetPage moves to a 1-based page index, clamped to [1, totalPages] when
// the total is known.
func (q *ListQuery) SetPage(index int) {
	q.mu.Lock()
	q.pageIndex = q.clampLocked(index)
	q.mu.Unlock()
	q.trigger()
}

// NextPage advances one page; filters and sort are untouched.
func (q *ListQuery) NextPage() {
	q.mu.Lock()
	q.pageIndex = q.clampLocked(q.pageIndex + 1)
	q.mu.Unlock()
	q.trigger()
}

// PrevPage goes back one page, never below 1.
func (q *ListQuery) PrevPage() {
	q.mu.Lock()
	q.pageIndex = q.clampLocked(q.pageIndex - 1)
	q.mu.Unlock()
	q.trigger()
}

// SetPageSize changes the page size and resets to page 1, so the caller
// never lands past the end of the resized result set.
func (q *ListQuery) SetPageSize(size int) {
	if size < 1 {
		size = criteria.DefaultPageSize
	}
	if size > criteria.MaxPageSize {
		size = criteria.MaxPageSize
	}
	q.mu.Lock()
	q.pageSize = size
	q.pageIndex = 1
	q.mu.Unlock()
	q.trigger()
}

// SetTotalPages feeds the paging total from the last response back in for
// clamping. Does not trigger a search.
func (q *ListQuery) SetTotalPages(n int) {
	q.mu.Lock()
	q.totalPages = n
	q.mu.Unlock()
}

// PageIndex returns the current 1-based page.
func (q *ListQuery) PageIndex() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pageIndex
}

func (q *ListQuery) clampLocked(index int) int {
	if index < 1 {
		return 1
	}
	if q.totalPages > 0 && index > q.totalPages {
		return q.totalPages
	}
	return index
}

func (q *ListQuery) trigger() {
	if q.run != nil {
		q.run()
	}
}
