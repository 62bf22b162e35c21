// Package notify delivers "appointments might be available" messages.
package notify

import (
	"context"
	"errors"
)

// Source identifies terminwatch in outbound payloads.
const Source = "terminwatch"

// Notifier delivers a single human-readable message somewhere.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, message string) error

// Notify calls f(ctx, message).
func (f Func) Notify(ctx context.Context, message string) error {
	return f(ctx, message)
}

// Multi sends to every notifier, even after one fails.
// The returned error joins all failures.
type Multi []Notifier

// Notify sends message to every notifier in order.
func (m Multi) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
