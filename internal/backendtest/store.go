package backendtest

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/medlab/labadmin/pkg/criteria"
)

// entityStore is one entity's in-memory table. Filtering is
// case-insensitive substring match, matching the backend's default
// "equals/contains" semantics; filters are ANDed. Default order is
// insertion order.
type entityStore[T any] struct {
	mu     sync.RWMutex
	items  map[string]T
	order  []string
	withID func(T, string) T
	// fields projects an entity to its filterable/sortable string columns.
	fields func(T) map[string]string
	// vet returns a business rejection message, or "" to accept. Runs on
	// create and update.
	vet func(s *entityStore[T], v T) string
}

func newEntityStore[T any](withID func(T, string) T, fields func(T) map[string]string) *entityStore[T] {
	return &entityStore[T]{
		items:  make(map[string]T),
		withID: withID,
		fields: fields,
	}
}

func (s *entityStore[T]) create(v T) (T, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vet != nil {
		if msg := s.vet(s, v); msg != "" {
			var zero T
			return zero, msg
		}
	}
	id := uuid.NewString()
	v = s.withID(v, id)
	s.items[id] = v
	s.order = append(s.order, id)
	return v, ""
}

func (s *entityStore[T]) get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	return v, ok
}

func (s *entityStore[T]) update(id string, v T) (T, bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		var zero T
		return zero, false, ""
	}
	v = s.withID(v, id)
	if s.vet != nil {
		if msg := s.vet(s, v); msg != "" {
			var zero T
			return zero, true, msg
		}
	}
	s.items[id] = v
	return v, true, ""
}

func (s *entityStore[T]) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// find returns the first entity whose column equals value exactly.
func (s *entityStore[T]) find(field, value string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(field, value)
}

// findLocked is find for callers that already hold the lock (vet hooks).
func (s *entityStore[T]) findLocked(field, value string) (T, bool) {
	for _, id := range s.order {
		v := s.items[id]
		if s.fields(v)[field] == value {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (s *entityStore[T]) search(crit criteria.Criteria) criteria.PageData[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []T
	for _, id := range s.order {
		v := s.items[id]
		if s.matches(v, crit.Filters) {
			rows = append(rows, v)
		}
	}

	if crit.SortBy.Field != "" {
		field := crit.SortBy.Field
		asc := crit.SortBy.Ascending
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := s.fields(rows[i])[field], s.fields(rows[j])[field]
			if asc {
				return a < b
			}
			return a > b
		})
	}

	total := len(rows)
	size := crit.PageSize
	totalPages := (total + size - 1) / size

	// An index past the end serves the last page, and CurrentPage reports
	// the page actually served.
	index := crit.PageIndex
	if index > totalPages {
		index = totalPages
	}
	if index < 1 {
		index = 1
	}
	start := (index - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	page := rows[start:end]
	if page == nil {
		page = []T{}
	}
	return criteria.PageData[T]{
		Data:        page,
		CurrentPage: index,
		TotalPages:  totalPages,
		TotalRows:   total,
	}
}

func (s *entityStore[T]) matches(v T, filters []criteria.Filter) bool {
	cols := s.fields(v)
	for _, f := range filters {
		if f.Value == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(cols[f.Field]), strings.ToLower(f.Value)) {
			return false
		}
	}
	return true
}
