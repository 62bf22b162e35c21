// Package browsercheck verifies that a usable Chrome is installed.
package browsercheck

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/vertti/terminwatch/pkg/browser"
	"github.com/vertti/terminwatch/pkg/check"
	"github.com/vertti/terminwatch/pkg/version"
)

// DefaultTimeout bounds the --version call.
const DefaultTimeout = 30 * time.Second

// PathNames are looked up in PATH when no well-known install location exists.
var PathNames = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome"}

// Check verifies that Chrome exists and reports its version.
type Check struct {
	ExecPath   string           // explicit binary; skips discovery
	MinVersion *version.Version // minimum version required (inclusive)
	GOOS       string           // default: runtime.GOOS
	Timeout    time.Duration    // timeout for the version command (default: 30s)
	Runner     Runner           // injected for testing
}

// Run executes the browser check.
func (c *Check) Run(ctx context.Context) check.Result {
	result := check.Result{
		Name: "browser: chrome",
	}

	runner := c.Runner
	if runner == nil {
		runner = &RealRunner{}
	}

	path, err := c.locate(runner)
	if err != nil {
		return result.Failf(check.FailureError, "%v", err)
	}
	result.AddDetailf("path: %s", path)

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := runner.RunCommandContext(ctx, path, "--version")
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result.Failf(check.FailureTimeout, "version command timed out after %s", timeout)
		}
		if stderr != "" {
			result.AddDetailf("stderr: %s", strings.TrimSpace(stderr))
		}
		return result.Fail(check.FailureError, fmt.Sprintf("version command failed: %v", err), err)
	}

	output := strings.TrimSpace(stdout)
	if output == "" {
		output = strings.TrimSpace(stderr)
	}

	v, err := version.Extract(output)
	if err != nil {
		return result.Failf(check.FailureError, "could not parse version from output: %v", err)
	}
	result.AddDetailf("version: %s", v)

	if c.MinVersion != nil && !v.GreaterThanOrEqual(*c.MinVersion) {
		err := fmt.Errorf("version %s below minimum %s", v, c.MinVersion)
		return result.Fail(check.FailureError, fmt.Sprintf("version %s < minimum %s", v, c.MinVersion), err)
	}

	return result.Pass()
}

// locate resolves the browser binary the same way the Chrome launcher does,
// then falls back to PATH.
func (c *Check) locate(runner Runner) (string, error) {
	if c.ExecPath != "" {
		if !runner.Exists(c.ExecPath) {
			return "", fmt.Errorf("configured chrome not found: %s", c.ExecPath)
		}
		return c.ExecPath, nil
	}

	goos := c.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if path := browser.FindChrome(goos, runner.Exists); path != "" {
		return path, nil
	}

	for _, name := range PathNames {
		if path, err := runner.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("chrome not found (tried %s and PATH)", strings.Join(browser.ChromeCandidates[goos], ", "))
}
