package nav

import (
	"errors"
	"testing"
)

func TestPushPop(t *testing.T) {
	b := New("/home")
	if err := b.Push("/patients"); err != nil {
		t.Fatal(err)
	}
	if loc, ok := b.Peek(); !ok || loc != "/patients" {
		t.Fatalf("Peek = %q, %v", loc, ok)
	}
	if loc := b.Pop(); loc != "/patients" {
		t.Fatalf("Pop = %q, want recorded background", loc)
	}
	if _, ok := b.Peek(); ok {
		t.Fatal("background not cleared by Pop")
	}
}

func TestPopWithoutBackgroundFallsBack(t *testing.T) {
	b := New("/home")
	if loc := b.Pop(); loc != "/home" {
		t.Fatalf("Pop on empty stack = %q, want fallback", loc)
	}
}

func TestNestedOverlayRejected(t *testing.T) {
	b := New("/home")
	if err := b.Push("/patients"); err != nil {
		t.Fatal(err)
	}
	if err := b.Push("/doctors"); !errors.Is(err, ErrOverlayOpen) {
		t.Fatalf("second Push = %v, want ErrOverlayOpen", err)
	}
	// Original background survives the rejected push.
	if loc := b.Pop(); loc != "/patients" {
		t.Fatalf("Pop = %q", loc)
	}
}

func TestReusableAfterPop(t *testing.T) {
	b := New("/home")
	_ = b.Push("/units")
	_ = b.Pop()
	if err := b.Push("/doctors"); err != nil {
		t.Fatalf("Push after Pop = %v", err)
	}
}
