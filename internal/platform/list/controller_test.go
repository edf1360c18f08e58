package list

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/internal/platform/state"
	"github.com/medlab/labadmin/pkg/criteria"
)

type row struct {
	ID   string
	Name string
}

type fakeGateway struct {
	mu        sync.Mutex
	rows      []row
	searches  []criteria.Criteria
	deletes   []string
	searchErr error
	deleteErr error
	// onSearch, when set, intercepts Search results.
	onSearch func(crit criteria.Criteria) (*criteria.PageData[row], error)
}

func (f *fakeGateway) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeGateway) Search(_ context.Context, crit criteria.Criteria) (*criteria.PageData[row], error) {
	f.mu.Lock()
	f.searches = append(f.searches, crit)
	f.mu.Unlock()
	if f.onSearch != nil {
		return f.onSearch(crit)
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &criteria.PageData[row]{
		Data:        f.rows,
		CurrentPage: crit.PageIndex,
		TotalPages:  5,
		TotalRows:   len(f.rows),
	}, nil
}

func (f *fakeGateway) Delete(_ context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func newController(gw *fakeGateway) *Controller[row] {
	return NewController[row](gw, zerolog.Nop())
}

func TestRefreshSuccess(t *testing.T) {
	gw := &fakeGateway{rows: []row{{ID: "1", Name: "a"}}}
	c := newController(gw)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := c.Snapshot()
	if snap.Phase != state.Success || len(snap.Value.Data) != 1 {
		t.Fatalf("snapshot: %+v", snap)
	}
}

func TestRefreshError(t *testing.T) {
	gw := &fakeGateway{searchErr: errors.New("backend down")}
	c := newController(gw)

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	snap := c.Snapshot()
	if snap.Phase != state.Error || snap.Err == nil {
		t.Fatalf("snapshot: %+v", snap)
	}
	// The cached value stays empty; views render an empty table plus the
	// error, they do not crash.
	if len(snap.Value.Data) != 0 {
		t.Errorf("value retained on error path: %+v", snap.Value)
	}
}

func TestEachChangeIssuesOneSearch(t *testing.T) {
	gw := &fakeGateway{}
	c := newController(gw)
	ctx := context.Background()

	_ = c.SetFilter(ctx, "name", "a")
	_ = c.ToggleSort(ctx, "name")
	_ = c.NextPage(ctx)
	_ = c.SetPageSize(ctx, 50)

	if gw.searchCount() != 4 {
		t.Fatalf("search issued %d times, want 4", gw.searchCount())
	}
}

func TestNextPageKeepsCriteria(t *testing.T) {
	gw := &fakeGateway{}
	c := newController(gw)
	ctx := context.Background()

	_ = c.SetFilter(ctx, "fullName", "an")
	_ = c.ToggleSort(ctx, "fullName")
	_ = c.NextPage(ctx)

	last := gw.searches[len(gw.searches)-1]
	if last.PageIndex != 2 {
		t.Errorf("pageIndex = %d, want 2", last.PageIndex)
	}
	if len(last.Filters) != 1 || last.Filters[0].Value != "an" {
		t.Errorf("filters changed: %+v", last.Filters)
	}
	if last.SortBy.Field != "fullName" || !last.SortBy.Ascending {
		t.Errorf("sort changed: %+v", last.SortBy)
	}
}

func TestDeleteRefetchesInsteadOfSplicing(t *testing.T) {
	gw := &fakeGateway{rows: []row{{ID: "1"}, {ID: "2"}}}
	c := newController(gw)
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "1"); err != nil {
		t.Fatal(err)
	}

	if len(gw.deletes) != 1 || gw.deletes[0] != "1" {
		t.Fatalf("deletes = %v", gw.deletes)
	}
	// One initial search plus the post-delete refetch.
	if gw.searchCount() != 2 {
		t.Fatalf("searches = %d, want refetch after delete", gw.searchCount())
	}
	snap := c.Snapshot()
	for _, r := range snap.Value.Data {
		if r.ID == "1" {
			t.Error("deleted row still present after refetch")
		}
	}
	if o, _ := c.Deletion().Outcome(); o != state.Succeeded {
		t.Errorf("delete outcome = %v", o)
	}
}

func TestDeleteFailureKeepsList(t *testing.T) {
	gw := &fakeGateway{rows: []row{{ID: "1"}}, deleteErr: errors.New("forbidden")}
	c := newController(gw)
	ctx := context.Background()

	_ = c.Refresh(ctx)
	if err := c.Delete(ctx, "1"); err == nil {
		t.Fatal("expected delete error")
	}
	// Failed mutation leaves the prior list untouched, no refetch issued.
	if gw.searchCount() != 1 {
		t.Errorf("searches = %d, want no refetch on failure", gw.searchCount())
	}
	snap := c.Snapshot()
	if snap.Phase != state.Success || len(snap.Value.Data) != 1 {
		t.Errorf("list corrupted by failed delete: %+v", snap)
	}
	if o, err := c.Deletion().Outcome(); o != state.Failed || err == nil {
		t.Errorf("delete outcome = %v, %v", o, err)
	}
}

func TestStaleResponseDoesNotOverwriteNewer(t *testing.T) {
	gw := &fakeGateway{}
	c := newController(gw)
	ctx := context.Background()

	// Simulate the slow-then-fast overlap: the first request's result
	// arrives after the second one already resolved.
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	var mu sync.Mutex
	n := 0
	gw.onSearch = func(crit criteria.Criteria) (*criteria.PageData[row], error) {
		mu.Lock()
		n++
		seq := n
		mu.Unlock()
		if seq == 1 {
			close(started)
			<-release
		}
		return &criteria.PageData[row]{
			Data:       []row{{ID: strconv.Itoa(seq)}},
			TotalPages: 1,
		}, nil
	}

	go func() {
		_ = c.Refresh(ctx)
		close(done)
	}()
	// Issue the second request only once the first is in flight.
	<-started
	_ = c.Refresh(ctx)
	close(release)
	<-done

	snap := c.Snapshot()
	if len(snap.Value.Data) != 1 || snap.Value.Data[0].ID != "2" {
		t.Fatalf("stale response won: %+v", snap.Value)
	}
}
