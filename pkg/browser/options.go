package browser

import (
	"os"
	"runtime"

	"github.com/chromedp/chromedp"
)

// DefaultUserAgent is sent instead of the HeadlessChrome user agent, which the
// booking site treats differently.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ChromeCandidates lists well-known Chrome locations per platform.
var ChromeCandidates = map[string][]string{
	"darwin": {
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	},
	"linux": {
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
	},
}

// FileExists reports whether a regular file exists at path.
type FileExists func(path string) bool

func realFileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FindChrome returns the first candidate for goos that exists, or "".
// An empty result lets chromedp fall back to its own lookup.
func FindChrome(goos string, exists FileExists) string {
	if exists == nil {
		exists = realFileExists
	}
	for _, path := range ChromeCandidates[goos] {
		if exists(path) {
			return path
		}
	}
	return ""
}

// Options builds the allocator options for a check run.
func Options(headless bool, execPath string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-plugins", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(DefaultUserAgent),
	)

	if execPath == "" {
		execPath = FindChrome(runtime.GOOS, nil)
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}
	return opts
}
