// Package nav implements modal-over-list navigation: opening an edit or
// delete overlay records the list route underneath, closing restores it.
package nav

import (
	"errors"
	"sync"
)

// Location is a client-side route, e.g. "/patients".
type Location string

// ErrOverlayOpen is returned when an overlay is opened while another one is
// already recorded. Nested overlays are not supported; making this an error
// keeps the undefined behavior from being silently allowed.
var ErrOverlayOpen = errors.New("an overlay is already open")

// Backstack records the background location under a single overlay.
type Backstack struct {
	mu         sync.Mutex
	background *Location
	fallback   Location
}

// New creates a Backstack. fallback is where Pop lands when no background
// was recorded (deep link straight into an overlay).
func New(fallback Location) *Backstack {
	return &Backstack{fallback: fallback}
}

// Push records the list route an overlay is opened from.
func (b *Backstack) Push(background Location) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.background != nil {
		return ErrOverlayOpen
	}
	b.background = &background
	return nil
}

// Pop clears the record and returns the location to navigate back to: the
// recorded background, or the fallback when none was recorded.
func (b *Backstack) Pop() Location {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.background == nil {
		return b.fallback
	}
	loc := *b.background
	b.background = nil
	return loc
}

// Peek reports the recorded background without clearing it.
func (b *Backstack) Peek() (Location, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.background == nil {
		return "", false
	}
	return *b.background, true
}
