// Package criteria defines the wire shapes shared by every entity endpoint:
// the search request (filters, sort, paging) and the uniform response
// envelope the backend wraps all payloads in.
package criteria

import "fmt"

// Page sizes the backend accepts. DefaultPageSize is used when a caller
// does not choose one.
const (
	DefaultPageSize = 30
	MaxPageSize     = 100
)

// PageSizes lists the selectable page sizes, smallest first.
var PageSizes = []int{30, 50, 100}

// Filter is a single field predicate. Filters in a Criteria are ANDed
// together. Operation is optional and passed through opaquely; the backend
// decides the default semantics (equals/contains).
type Filter struct {
	Field     string `json:"fieldName"`
	Operation string `json:"operation,omitempty"`
	Value     string `json:"value"`
}

// SortBy names a single sort column. An empty Field means backend-default
// order. Multi-column sort is not supported.
type SortBy struct {
	Field     string `json:"fieldName,omitempty"`
	Ascending bool   `json:"ascending"`
}

// Criteria is the body of a POST {base}/search request. PageIndex is
// 1-based everywhere in this module.
type Criteria struct {
	Filters   []Filter `json:"filters"`
	SortBy    SortBy   `json:"sortBy"`
	PageIndex int      `json:"pageIndex"`
	PageSize  int      `json:"pageSize"`
}

// Default returns a Criteria with no filters, backend-default order and the
// first page at the default size.
func Default() Criteria {
	return Criteria{Filters: []Filter{}, PageIndex: 1, PageSize: DefaultPageSize}
}

// Sanitized returns a copy with empty-valued filters removed; a filter whose
// value is the empty string is never sent to the backend. Order of the
// remaining filters is preserved.
func (c Criteria) Sanitized() Criteria {
	out := c
	out.Filters = make([]Filter, 0, len(c.Filters))
	for _, f := range c.Filters {
		if f.Value != "" {
			out.Filters = append(out.Filters, f)
		}
	}
	return out
}

// Validate checks the paging invariants.
func (c Criteria) Validate() error {
	if c.PageIndex < 1 {
		return fmt.Errorf("pageIndex must be >= 1, got %d", c.PageIndex)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("pageSize must be > 0, got %d", c.PageSize)
	}
	return nil
}

// Envelope is the uniform response wrapper. When IsSuccess is false, Data
// must not be trusted and Message carries the backend error.
type Envelope[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message,omitempty"`
	Data      T      `json:"data"`
}

// PageData is the payload of a successful search: one page of items plus
// paging totals. TotalPrice is only populated by endpoints that aggregate a
// monetary column (test orders).
type PageData[T any] struct {
	Data        []T     `json:"data"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalRows   int     `json:"totalRows"`
	TotalPrice  float64 `json:"totalPrice,omitempty"`
}

// Page is the full envelope of a search response.
type Page[T any] = Envelope[PageData[T]]
