package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/vertti/terminwatch/pkg/browser"
)

// FakeSession is a scripted browser.Session that records calls.
// Errors keyed by method name ("Navigate", "WaitReady", "WaitClickable:<id>",
// "IsSelected", "Click:<id>", "SetSelected", "Text", "CurrentURL") are returned
// from the matching call.
type FakeSession struct {
	PageText string
	URL      string
	Selected map[string]bool
	// ClickSelects controls whether Click on a checkbox changes its state.
	// Set it false to simulate an overlay swallowing the click.
	ClickSelects bool
	Errors       map[string]error
	// Block makes the named waits block until their context is done.
	Block map[string]bool

	mu     sync.Mutex
	Calls  []string
	Closed int
}

// NewFakeSession returns a session whose clicks work and whose checkbox
// starts unselected.
func NewFakeSession(pageText, url string) *FakeSession {
	return &FakeSession{
		PageText:     pageText,
		URL:          url,
		Selected:     map[string]bool{},
		ClickSelects: true,
		Errors:       map[string]error{},
		Block:        map[string]bool{},
	}
}

func (f *FakeSession) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	return f.Errors[call]
}

func (f *FakeSession) wait(ctx context.Context, call string) error {
	if err := f.record(call); err != nil {
		return err
	}
	if f.Block[call] {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *FakeSession) Navigate(ctx context.Context, url string) error {
	return f.wait(ctx, "Navigate")
}

func (f *FakeSession) WaitReady(ctx context.Context, selector string) error {
	return f.wait(ctx, "WaitReady")
}

func (f *FakeSession) WaitClickable(ctx context.Context, id string) error {
	return f.wait(ctx, "WaitClickable:"+id)
}

func (f *FakeSession) IsSelected(ctx context.Context, id string) (bool, error) {
	if err := f.record("IsSelected"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Selected[id], nil
}

func (f *FakeSession) Click(ctx context.Context, id string) error {
	if err := f.record("Click:" + id); err != nil {
		return err
	}
	if f.ClickSelects {
		f.mu.Lock()
		f.Selected[id] = true
		f.mu.Unlock()
	}
	return nil
}

func (f *FakeSession) SetSelected(ctx context.Context, id string) error {
	if err := f.record("SetSelected"); err != nil {
		return err
	}
	f.mu.Lock()
	f.Selected[id] = true
	f.mu.Unlock()
	return nil
}

func (f *FakeSession) Text(ctx context.Context) (string, error) {
	return f.PageText, f.record("Text")
}

func (f *FakeSession) CurrentURL(ctx context.Context) (string, error) {
	return f.URL, f.record("CurrentURL")
}

func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed++
	return nil
}

// Called reports whether call was recorded.
func (f *FakeSession) Called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == call {
			return true
		}
	}
	return false
}

// Launcher returns a launcher that always hands out f.
func (f *FakeSession) Launcher() browser.Launcher {
	return browser.LauncherFunc(func(ctx context.Context) (browser.Session, error) {
		return f, nil
	})
}

// RecordingNotifier collects notification messages.
type RecordingNotifier struct {
	Err      error
	Messages []string
}

func (r *RecordingNotifier) Notify(ctx context.Context, message string) error {
	r.Messages = append(r.Messages, message)
	return r.Err
}

// ContainsDetail checks if any detail string contains the given substring.
func ContainsDetail(details []string, substr string) bool {
	for _, d := range details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}
