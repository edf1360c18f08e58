// Package session orchestrates one edit surface: open for a new or
// existing entity, populate the form, validate and submit, then navigate
// back to the list underneath and signal it to refresh.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/medlab/labadmin/internal/platform/form"
	"github.com/medlab/labadmin/internal/platform/nav"
	"github.com/medlab/labadmin/internal/platform/state"
)

// Phase is the edit session's lifecycle state.
type Phase int

const (
	Closed Phase = iota
	OpenNew
	OpeningExisting
	Submitting
	ClosedAfterSave
)

func (p Phase) String() string {
	switch p {
	case OpenNew:
		return "open-new"
	case OpeningExisting:
		return "open-existing"
	case Submitting:
		return "submitting"
	case ClosedAfterSave:
		return "closed-after-save"
	}
	return "closed"
}

// Gateway is the slice of an entity gateway an edit session needs.
type Gateway[T any] interface {
	GetByID(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, values T) (*T, error)
	Update(ctx context.Context, values T) (*T, error)
}

// Config assembles a Controller's collaborators. WithID returns a copy of
// an entity with its id replaced; it is explicit because the form never
// carries the id itself.
type Config[T any] struct {
	Gateway   Gateway[T]
	Schema    *form.Schema[T]
	Backstack *nav.Backstack
	WithID    func(T, string) T
	// OnSaved fires after a successful create or update, once the session
	// has closed. List controllers hook their refresh here.
	OnSaved func()
	Logger  zerolog.Logger
}

// Controller drives one edit surface. Safe for concurrent use, though the
// expected caller is a single UI loop.
type Controller[T any] struct {
	cfg Config[T]
	mut *state.Mutation

	mu       sync.Mutex
	phase    Phase
	targetID string
	form     T
}

func NewController[T any](cfg Config[T]) *Controller[T] {
	return &Controller[T]{cfg: cfg, mut: state.NewMutation()}
}

// Open starts a session for a new entity. The form is initialized from the
// schema defaults; no network call is made.
func (c *Controller[T]) Open(background nav.Location) error {
	if err := c.cfg.Backstack.Push(background); err != nil {
		return err
	}
	c.mu.Lock()
	c.phase = OpenNew
	c.targetID = ""
	c.form = c.cfg.Schema.Defaults()
	c.mu.Unlock()
	return nil
}

// OpenExisting starts a session for entity id. The entity is fetched and
// every field except the id is copied into the form. A failed fetch leaves
// the form at defaults and is returned for surfacing, but the session stays
// open and can still be cancelled.
func (c *Controller[T]) OpenExisting(ctx context.Context, id string, background nav.Location) error {
	if err := c.cfg.Backstack.Push(background); err != nil {
		return err
	}
	c.mu.Lock()
	c.phase = OpeningExisting
	c.targetID = id
	c.form = c.cfg.Schema.Defaults()
	c.mu.Unlock()

	entity, err := c.cfg.Gateway.GetByID(ctx, id)
	if err != nil {
		c.cfg.Logger.Warn().Err(err).Str("id", id).Msg("loading entity for edit failed")
		return fmt.Errorf("loading entity %s: %w", id, err)
	}

	c.mu.Lock()
	// The session may have been cancelled while the fetch was in flight;
	// the late response must not resurrect it.
	if c.phase == OpeningExisting && c.targetID == id {
		c.form = c.cfg.WithID(*entity, "")
	}
	c.mu.Unlock()
	return nil
}

// Form returns the current form values.
func (c *Controller[T]) Form() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// SetForm replaces the form values while the session is open.
func (c *Controller[T]) SetForm(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == OpenNew || c.phase == OpeningExisting {
		c.form = v
	}
}

// Phase returns the current lifecycle state.
func (c *Controller[T]) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Mutation exposes the submit outcome signal.
func (c *Controller[T]) Mutation() *state.Mutation { return c.mut }

// Submit validates and then creates or updates, depending on whether the
// session targets an existing id. Validation failure aborts before any
// network call and returns form.Errors. On success the session closes,
// OnSaved fires and the background location is returned. On a backend
// failure the session stays open for retry.
func (c *Controller[T]) Submit(ctx context.Context) (nav.Location, error) {
	c.mu.Lock()
	if c.phase != OpenNew && c.phase != OpeningExisting {
		c.mu.Unlock()
		return "", fmt.Errorf("no edit session open (phase %s)", c.phase)
	}
	prior := c.phase
	values := c.form
	targetID := c.targetID
	c.mu.Unlock()

	if err := c.cfg.Schema.Validate(values); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.phase = Submitting
	c.mu.Unlock()
	c.mut.Begin()

	var err error
	if targetID != "" {
		_, err = c.cfg.Gateway.Update(ctx, c.cfg.WithID(values, targetID))
	} else {
		_, err = c.cfg.Gateway.Create(ctx, values)
	}
	c.mut.Resolve(err)

	if err != nil {
		c.mu.Lock()
		c.phase = prior
		c.mu.Unlock()
		return "", err
	}

	c.mu.Lock()
	c.phase = ClosedAfterSave
	c.targetID = ""
	c.form = c.cfg.Schema.Defaults()
	c.mu.Unlock()

	loc := c.cfg.Backstack.Pop()
	if c.cfg.OnSaved != nil {
		c.cfg.OnSaved()
	}
	return loc, nil
}

// Cancel closes the session without saving and returns the background
// location to navigate to. The form is discarded.
func (c *Controller[T]) Cancel() nav.Location {
	c.mu.Lock()
	c.phase = Closed
	c.targetID = ""
	c.form = c.cfg.Schema.Defaults()
	c.mu.Unlock()
	return c.cfg.Backstack.Pop()
}
