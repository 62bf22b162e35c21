// Package browser abstracts the browser session an appointment check drives.
//
// A Launcher acquires a Session, which is exclusively owned by one check and
// must be released with Close exactly once. The Chrome launcher implements
// both on top of chromedp.
package browser

import (
	"context"
	"errors"
)

var (
	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = errors.New("timed out")
	// ErrElementNotFound is returned when an element is absent from the DOM.
	ErrElementNotFound = errors.New("element not found")
)

// Launcher starts new browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is one live browser tab. Element lookups take the element id.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitReady blocks until an element matching the CSS selector exists.
	WaitReady(ctx context.Context, selector string) error
	// WaitClickable blocks until the element is visible and enabled.
	WaitClickable(ctx context.Context, id string) error
	IsSelected(ctx context.Context, id string) (bool, error)
	Click(ctx context.Context, id string) error
	// SetSelected checks the element directly, bypassing simulated input.
	SetSelected(ctx context.Context, id string) error
	// Text returns the rendered text of the whole page.
	Text(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	Close() error
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(ctx context.Context) (Session, error)

// Launch calls f(ctx).
func (f LauncherFunc) Launch(ctx context.Context) (Session, error) {
	return f(ctx)
}
