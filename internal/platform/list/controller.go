// Package list wires one entity's gateway, query state and async resource
// into the fetch cycle every management screen shares: change criteria ->
// one search -> Loading -> Success/Error -> re-render.
package list

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/internal/platform/query"
	"github.com/medlab/labadmin/internal/platform/state"
	"github.com/medlab/labadmin/pkg/criteria"
)

// Gateway is the slice of an entity gateway the list cycle needs.
type Gateway[T any] interface {
	Search(ctx context.Context, crit criteria.Criteria) (*criteria.PageData[T], error)
	Delete(ctx context.Context, id string) error
}

// Controller owns the list state of one entity. Every criteria change goes
// through a Controller method so each change issues exactly one search.
type Controller[T any] struct {
	gw    Gateway[T]
	query *query.ListQuery
	res   *state.Resource[criteria.PageData[T]]
	del   *state.Mutation
	log   zerolog.Logger
}

func NewController[T any](gw Gateway[T], log zerolog.Logger) *Controller[T] {
	return &Controller[T]{
		gw:    gw,
		query: query.New(nil),
		res:   state.NewResource[criteria.PageData[T]](),
		del:   state.NewMutation(),
		log:   log,
	}
}

// Refresh re-issues the search with unchanged criteria. A response that
// lost the race to a newer request is dropped by the resource's generation
// check.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	tk := c.res.Begin()
	page, err := c.gw.Search(ctx, c.query.Criteria())
	if err != nil {
		if c.res.Resolve(tk, criteria.PageData[T]{}, err) {
			c.log.Warn().Err(err).Msg("list fetch failed")
		}
		return err
	}
	c.query.SetTotalPages(page.TotalPages)
	c.res.Resolve(tk, *page, nil)
	return nil
}

// SetFilter upserts a filter and refreshes.
func (c *Controller[T]) SetFilter(ctx context.Context, field, value string) error {
	c.query.SetFilter(field, value)
	return c.Refresh(ctx)
}

// RemoveFilter drops a filter and refreshes.
func (c *Controller[T]) RemoveFilter(ctx context.Context, field string) error {
	c.query.RemoveFilter(field)
	return c.Refresh(ctx)
}

// ToggleSort toggles the sort column and refreshes.
func (c *Controller[T]) ToggleSort(ctx context.Context, field string) error {
	c.query.ToggleSort(field)
	return c.Refresh(ctx)
}

// SetPage jumps to a page and refreshes.
func (c *Controller[T]) SetPage(ctx context.Context, index int) error {
	c.query.SetPage(index)
	return c.Refresh(ctx)
}

// NextPage advances a page, keeping filters and sort, and refreshes.
func (c *Controller[T]) NextPage(ctx context.Context) error {
	c.query.NextPage()
	return c.Refresh(ctx)
}

// PrevPage goes back a page and refreshes.
func (c *Controller[T]) PrevPage(ctx context.Context) error {
	c.query.PrevPage()
	return c.Refresh(ctx)
}

// SetPageSize changes the page size (resetting to page 1) and refreshes.
func (c *Controller[T]) SetPageSize(ctx context.Context, size int) error {
	c.query.SetPageSize(size)
	return c.Refresh(ctx)
}

// Delete removes an entity upstream. The cached page is never spliced
// locally; on success the list is refetched, which is what actually makes
// the row disappear.
func (c *Controller[T]) Delete(ctx context.Context, id string) error {
	c.del.Begin()
	if err := c.gw.Delete(ctx, id); err != nil {
		c.del.Resolve(err)
		return err
	}
	c.del.Resolve(nil)
	return c.Refresh(ctx)
}

// Criteria returns the current request shape.
func (c *Controller[T]) Criteria() criteria.Criteria { return c.query.Criteria() }

// Snapshot returns the current fetch state.
func (c *Controller[T]) Snapshot() state.Snapshot[criteria.PageData[T]] { return c.res.Snapshot() }

// Subscribe registers a change listener on the fetch state.
func (c *Controller[T]) Subscribe(fn func(state.Snapshot[criteria.PageData[T]])) {
	c.res.Subscribe(fn)
}

// Deletion exposes the delete mutation signal.
func (c *Controller[T]) Deletion() *state.Mutation { return c.del }
