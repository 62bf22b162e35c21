// Package appointment checks the booking page for available appointments.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vertti/terminwatch/pkg/browser"
	"github.com/vertti/terminwatch/pkg/check"
	"github.com/vertti/terminwatch/pkg/notify"
)

// Sleeper waits for a fixed duration or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Check opens the booking page, searches all locations and classifies
// the result page.
type Check struct {
	Config   Config
	Launcher browser.Launcher // required
	Notifier notify.Notifier  // optional; called once when appointments might be available
	Logger   *slog.Logger     // default: slog.Default()
	Sleep    Sleeper          // injected for testing
}

// Run executes one appointment check. It never returns an error or panics:
// every failure is classified into the result, and the browser session is
// closed exactly once on every path.
func (c *Check) Run(ctx context.Context) (result check.Result) {
	cfg := c.Config.withDefaults()
	result = check.Result{
		Name: "appointments: " + cfg.URL,
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("url", cfg.URL)

	defer func() {
		if r := recover(); r != nil {
			result = result.Fail(check.FailureError, fmt.Sprintf("unexpected error: %v", r), fmt.Errorf("panic: %v", r))
		}
		logOutcome(logger, result)
	}()

	if c.Launcher == nil {
		return result.Failf(check.FailureError, "no browser launcher configured")
	}

	logger.Info("starting appointment check")
	session, err := c.Launcher.Launch(ctx)
	if err != nil {
		return fail(&result, "launch browser", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("browser close failed", "error", err)
		}
		logger.Debug("browser closed")
	}()

	return c.run(ctx, session, cfg, logger, &result)
}

func (c *Check) run(ctx context.Context, session browser.Session, cfg Config, logger *slog.Logger, result *check.Result) check.Result {
	logger.Debug("navigating")
	step := "navigate"
	if err := withTimeout(ctx, cfg.Timeout, func(ctx context.Context) error {
		if err := session.Navigate(ctx, cfg.URL); err != nil {
			return err
		}
		step = "wait for page"
		return session.WaitReady(ctx, "body")
	}); err != nil {
		return fail(result, step, err)
	}

	logger.Debug("looking for all-locations checkbox", "id", cfg.CheckboxID)
	if err := withTimeout(ctx, cfg.Timeout, func(ctx context.Context) error {
		return session.WaitClickable(ctx, cfg.CheckboxID)
	}); err != nil {
		return fail(result, fmt.Sprintf("wait for checkbox #%s", cfg.CheckboxID), err)
	}

	selected, err := session.IsSelected(ctx, cfg.CheckboxID)
	if err != nil {
		return fail(result, fmt.Sprintf("read checkbox #%s", cfg.CheckboxID), err)
	}
	if selected {
		logger.Debug("checkbox already selected")
	} else if err := selectCheckbox(ctx, session, cfg.CheckboxID, logger); err != nil {
		return fail(result, fmt.Sprintf("select checkbox #%s", cfg.CheckboxID), err)
	}

	logger.Debug("looking for submit button", "id", cfg.SubmitID)
	if err := withTimeout(ctx, cfg.Timeout, func(ctx context.Context) error {
		return session.WaitClickable(ctx, cfg.SubmitID)
	}); err != nil {
		return fail(result, fmt.Sprintf("wait for submit #%s", cfg.SubmitID), err)
	}
	if err := session.Click(ctx, cfg.SubmitID); err != nil {
		return fail(result, fmt.Sprintf("click submit #%s", cfg.SubmitID), err)
	}

	sleep := c.Sleep
	if sleep == nil {
		sleep = realSleep
	}
	logger.Debug("waiting for results page", "delay", cfg.SettleDelay)
	if err := sleep(ctx, cfg.SettleDelay); err != nil {
		return fail(result, "wait for results page", err)
	}

	text, err := session.Text(ctx)
	if err != nil {
		return fail(result, "read page text", err)
	}
	if ContainsPhrase(text, cfg.Phrase) {
		result.AddDetail("no appointments available")
		return result.NoAppointments()
	}

	url, err := session.CurrentURL(ctx)
	if err != nil {
		return fail(result, "read current URL", err)
	}
	result.AddDetailf("url: %s", url)

	if c.Notifier != nil {
		if err := withTimeout(ctx, cfg.NotifyTimeout, func(ctx context.Context) error {
			return c.Notifier.Notify(ctx, Message(url))
		}); err != nil {
			logger.Warn("notification failed", "error", err)
			result.AddDetailf("notification failed: %v", err)
		}
	}
	return result.Appointments(url)
}

// selectCheckbox clicks the checkbox and falls back to setting its state
// directly when an overlay swallowed the click.
func selectCheckbox(ctx context.Context, session browser.Session, id string, logger *slog.Logger) error {
	clickErr := session.Click(ctx, id)
	if errors.Is(clickErr, browser.ErrElementNotFound) {
		return clickErr
	}
	if clickErr == nil {
		selected, err := session.IsSelected(ctx, id)
		if err != nil {
			return err
		}
		if selected {
			return nil
		}
	}

	logger.Debug("click did not select checkbox, setting state directly", "click_error", clickErr)
	return session.SetSelected(ctx, id)
}

// ContainsPhrase reports whether text contains phrase, ignoring case.
func ContainsPhrase(text, phrase string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}

// Message is the notification text for a result page at url.
func Message(url string) string {
	return "Appointments might be available! Check: " + url
}

func withTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	err := fn(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, browser.ErrTimeout) {
		return fmt.Errorf("%w after %s: %v", browser.ErrTimeout, d, err)
	}
	return err
}

// fail classifies err by kind and marks the result failed.
func fail(result *check.Result, step string, err error) check.Result {
	return result.Fail(Classify(err), fmt.Sprintf("%s: %v", step, err), err)
}

// Classify maps an error from a browser session to a failure kind.
func Classify(err error) check.FailureKind {
	switch {
	case errors.Is(err, browser.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return check.FailureTimeout
	case errors.Is(err, browser.ErrElementNotFound):
		return check.FailureElementNotFound
	default:
		return check.FailureError
	}
}

func logOutcome(logger *slog.Logger, r check.Result) {
	switch r.Outcome {
	case check.OutcomeNoAppointments:
		logger.Info("no appointments available")
	case check.OutcomeAppointments:
		logger.Warn("appointments might be available", "result_url", r.URL)
	default:
		logger.Error("appointment check failed", "failure", r.Failure, "error", r.Err)
	}
}
