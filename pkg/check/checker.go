package check

import "context"

// Checker is implemented by anything that can run one appointment check.
// Implementations classify every failure into the returned Result
// instead of returning an error.
//
// Implementations:
//   - appointment.Check: drives the booking form in a browser
type Checker interface {
	Run(ctx context.Context) Result
}
