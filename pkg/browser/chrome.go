package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/chromedp"
)

// Chrome launches headless (or visible) Chrome sessions through chromedp.
type Chrome struct {
	Headless bool
	ExecPath string       // empty: discover a known install location
	Logger   *slog.Logger // receives chromedp's own log lines at debug level
}

// Launch starts a browser and opens one tab.
func (c *Chrome) Launch(ctx context.Context) (Session, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, Options(c.Headless, c.ExecPath)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "source", "chromedp")
		}),
	)

	// An empty Run starts the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &chromeSession{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// run executes actions in the tab while honoring the caller's deadline and
// cancellation. Only the derived context is canceled, never the tab itself.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitReady(ctx context.Context, selector string) error {
	return s.run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (s *chromeSession) WaitClickable(ctx context.Context, id string) error {
	return s.run(ctx,
		chromedp.WaitVisible(id, chromedp.ByID),
		chromedp.WaitEnabled(id, chromedp.ByID),
	)
}

type checkboxState struct {
	Found   bool `json:"found"`
	Checked bool `json:"checked"`
}

func (s *chromeSession) state(ctx context.Context, script string) (checkboxState, error) {
	var st checkboxState
	if err := s.run(ctx, chromedp.Evaluate(script, &st)); err != nil {
		return st, err
	}
	return st, nil
}

func (s *chromeSession) IsSelected(ctx context.Context, id string) (bool, error) {
	st, err := s.state(ctx, fmt.Sprintf(`(() => {
		const el = document.getElementById(%q);
		return {found: el !== null, checked: el !== null && !!el.checked};
	})()`, id))
	if err != nil {
		return false, err
	}
	if !st.Found {
		return false, fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return st.Checked, nil
}

func (s *chromeSession) Click(ctx context.Context, id string) error {
	st, err := s.state(ctx, fmt.Sprintf(`({found: document.getElementById(%q) !== null, checked: false})`, id))
	if err != nil {
		return err
	}
	if !st.Found {
		return fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return s.run(ctx, chromedp.Click(id, chromedp.ByID))
}

func (s *chromeSession) SetSelected(ctx context.Context, id string) error {
	st, err := s.state(ctx, fmt.Sprintf(`(() => {
		const el = document.getElementById(%q);
		if (el === null) return {found: false, checked: false};
		el.checked = true;
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return {found: true, checked: !!el.checked};
	})()`, id))
	if err != nil {
		return err
	}
	if !st.Found {
		return fmt.Errorf("%w: #%s", ErrElementNotFound, id)
	}
	return nil
}

func (s *chromeSession) Text(ctx context.Context) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text))
	return text, err
}

func (s *chromeSession) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

// Close shuts the browser down. Calls after the first are no-ops.
func (s *chromeSession) Close() error {
	var err error
	s.once.Do(func() {
		err = chromedp.Cancel(s.ctx)
		s.cancel()
	})
	return err
}
