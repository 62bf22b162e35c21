package main

import (
	"context"
	"errors"

	"github.com/vertti/terminwatch/pkg/check"
	"github.com/vertti/terminwatch/pkg/output"
)

// ErrCheckFailed is returned when a check could not classify the page.
var ErrCheckFailed = errors.New("check failed")

// runCheck executes a check, prints the result, and returns an error if it failed.
// The returned error causes Cobra to exit with code 1. Finding no appointments
// is not a failure.
func runCheck(ctx context.Context, c check.Checker) error {
	result := c.Run(ctx)
	output.PrintResult(result)

	if !result.OK() {
		return ErrCheckFailed
	}
	return nil
}
