// Package schedule runs appointment checks repeatedly on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/vertti/terminwatch/pkg/check"
)

// Runner runs one check per cron tick. Ticks that arrive while a check is
// still running are skipped, so at most one check is ever in flight.
type Runner struct {
	Spec     string             // cron spec, e.g. "*/5 * * * *" or "@every 10m"
	Checker  check.Checker      // required
	OnResult func(check.Result) // called after every check
	Logger   *slog.Logger       // default: slog.Default()
	Options  []cron.Option      // extra cron options, e.g. cron.WithLocation
}

// Run schedules checks and blocks until ctx is done. It then waits for an
// in-flight check to finish before returning.
func (r *Runner) Run(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if r.Checker == nil {
		return fmt.Errorf("no checker configured")
	}

	cl := cronLogger{logger: logger}
	opts := append([]cron.Option{
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	}, r.Options...)
	c := cron.New(opts...)

	_, err := c.AddFunc(r.Spec, func() {
		result := r.Checker.Run(ctx)
		if r.OnResult != nil {
			r.OnResult(result)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", r.Spec, err)
	}

	logger.Info("watching for appointments", "schedule", r.Spec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("stopped watching")
	return nil
}

// Validate reports whether spec is a valid cron spec.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
