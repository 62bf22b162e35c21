package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertti/terminwatch/pkg/browser"
	"github.com/vertti/terminwatch/pkg/check"
	"github.com/vertti/terminwatch/pkg/config"
	"github.com/vertti/terminwatch/pkg/notify"
	"github.com/vertti/terminwatch/pkg/testutil"
	"github.com/vertti/terminwatch/pkg/version"
)

const noAppointmentsPage = "Terminvereinbarung\nLeider sind aktuell keine Termine für ihre Auswahl verfügbar.\n"

func executeCommand(args ...string) (string, error) {
	return executeCommandContext(context.Background(), args...)
}

func executeCommandContext(ctx context.Context, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	resetFlags(rootCmd)
	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Value.Type() == "stringSlice" {
			_ = f.Value.(pflag.SliceValue).Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// useFakeBrowser swaps the Chrome launcher for session for the duration of the test.
func useFakeBrowser(t *testing.T, session *testutil.FakeSession) {
	t.Helper()
	orig := newLauncher
	newLauncher = func(config.File, *slog.Logger) browser.Launcher { return session.Launcher() }
	t.Cleanup(func() { newLauncher = orig })
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionFlag(t *testing.T) {
	output, err := executeCommand("--version")
	require.NoError(t, err)
	assert.Contains(t, output, "terminwatch")
}

func TestHelpFlag(t *testing.T) {
	output, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Contains(t, output, "terminwatch")
	assert.Contains(t, output, "check")
	assert.Contains(t, output, "watch")
	assert.Contains(t, output, "doctor")
}

func TestCheckCommand_NoAppointments(t *testing.T) {
	session := testutil.NewFakeSession(noAppointmentsPage, "https://service.berlin.de/terminvereinbarung/")
	useFakeBrowser(t, session)

	output, err := executeCommand("check", "--settle", "1ms")

	require.NoError(t, err)
	assert.Contains(t, output, "[NONE]")
	assert.NotContains(t, output, "NOTIFICATION")
	assert.Equal(t, 1, session.Closed)
}

func TestCheckCommand_AppointmentsNotify(t *testing.T) {
	session := testutil.NewFakeSession("Bitte wählen Sie einen Tag", "https://service.berlin.de/terminvereinbarung/termin/day/")
	useFakeBrowser(t, session)

	output, err := executeCommand("check", "--settle", "1ms")

	require.NoError(t, err)
	assert.Contains(t, output, "[FOUND]")
	assert.Contains(t, output, "NOTIFICATION: Appointments might be available! Check: https://service.berlin.de/terminvereinbarung/termin/day/")
	assert.Equal(t, 1, session.Closed)
}

func TestCheckCommand_NoNotify(t *testing.T) {
	session := testutil.NewFakeSession("Bitte wählen Sie einen Tag", "https://service.berlin.de/terminvereinbarung/termin/day/")
	useFakeBrowser(t, session)

	output, err := executeCommand("check", "--settle", "1ms", "--no-notify")

	require.NoError(t, err)
	assert.Contains(t, output, "[FOUND]")
	assert.NotContains(t, output, "NOTIFICATION")
}

func TestCheckCommand_FailureExitsNonZero(t *testing.T) {
	tests := []struct {
		name    string
		errKey  string
		err     error
		outcome string
	}{
		{"checkbox timeout", "WaitClickable:checkbox_overall", browser.ErrTimeout, "[FAIL:TIMEOUT]"},
		{"submit missing", "WaitClickable:appointment_submit", browser.ErrElementNotFound, "[FAIL:ELEMENT_NOT_FOUND]"},
		{"navigation error", "Navigate", errors.New("net::ERR_NAME_NOT_RESOLVED"), "[FAIL:ERROR]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := testutil.NewFakeSession(noAppointmentsPage, "")
			session.Errors[tt.errKey] = tt.err
			useFakeBrowser(t, session)

			output, err := executeCommand("check", "--settle", "1ms")

			require.ErrorIs(t, err, ErrCheckFailed)
			assert.Contains(t, output, tt.outcome)
			assert.Equal(t, 1, session.Closed)
		})
	}
}

func TestCheckCommand_CustomIdentifiers(t *testing.T) {
	session := testutil.NewFakeSession("nothing here today", "")
	useFakeBrowser(t, session)

	output, err := executeCommand("check", "--settle", "1ms",
		"--checkbox-id", "all_locations", "--submit-id", "search", "--phrase", "NOTHING HERE")

	require.NoError(t, err)
	assert.Contains(t, output, "[NONE]")
	assert.True(t, session.Called("WaitClickable:all_locations"))
	assert.True(t, session.Called("Click:search"))
}

func TestCheckCommand_ConfigFile(t *testing.T) {
	session := testutil.NewFakeSession("kein Termin frei", "")
	useFakeBrowser(t, session)

	path := writeTempFile(t, config.FileName, `{
		// comments are allowed
		scraper: { url: "https://example.com/booking", page_load_delay: 1 },
		patterns: { no_appointments: "kein termin frei" },
	}`)

	output, err := executeCommand("check", "--config", path, "--settle", "1ms")

	require.NoError(t, err)
	assert.Contains(t, output, "[NONE] appointments: https://example.com/booking")
}

func TestCheckCommand_InvalidFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{"no-notify with webhook", []string{"check", "--no-notify", "--webhook", "https://hooks.example.com"}, "cannot be used together"},
		{"no-notify with email", []string{"check", "--no-notify", "--email-to", "me@example.com"}, "cannot be used together"},
		{"non-http url", []string{"check", "--url", "ftp://service.berlin.de"}, "invalid url"},
		{"empty phrase", []string{"check", "--phrase", "  "}, "pattern is required"},
		{"zero timeout", []string{"check", "--timeout", "0s"}, "--timeout must be positive"},
		{"negative settle", []string{"check", "--settle", "-1s"}, "--settle must be positive"},
		{"zero settle", []string{"check", "--settle", "0s"}, "--settle must be positive"},
		{"unexpected argument", []string{"check", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := testutil.NewFakeSession(noAppointmentsPage, "")
			useFakeBrowser(t, session)

			_, err := executeCommand(tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
			assert.Empty(t, session.Calls)
		})
	}
}

func TestCheckCommand_LogFile(t *testing.T) {
	session := testutil.NewFakeSession(noAppointmentsPage, "")
	useFakeBrowser(t, session)
	path := filepath.Join(t.TempDir(), "terminwatch.log")

	_, err := executeCommand("check", "--settle", "1ms", "--log-file", path, "--verbose")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "starting appointment check")
	assert.Contains(t, string(data), "navigating")
	assert.NotContains(t, string(data), "\033[")
}

func TestWatchCommand_RunsUntilCancelled(t *testing.T) {
	session := testutil.NewFakeSession(noAppointmentsPage, "")
	useFakeBrowser(t, session)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	output, err := executeCommandContext(ctx, "watch", "--schedule", "@every 1s", "--settle", "1ms")

	require.NoError(t, err)
	assert.Contains(t, output, "[NONE]")
	assert.GreaterOrEqual(t, session.Closed, 1)
}

func TestWatchCommand_StopOnFound(t *testing.T) {
	session := testutil.NewFakeSession("Bitte wählen Sie einen Tag", "https://service.berlin.de/day/")
	useFakeBrowser(t, session)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	output, err := executeCommandContext(ctx, "watch", "--schedule", "@every 1s", "--timezone", "UTC",
		"--settle", "1ms", "--stop-on-found", "--no-notify")

	require.NoError(t, err)
	assert.Contains(t, output, "[FOUND]")
	assert.Equal(t, 1, session.Closed)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWatchCommand_InvalidSettings(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		errText string
	}{
		{"schedule", []string{"watch", "--schedule", "every ten minutes"}, "invalid schedule"},
		{"timezone", []string{"watch", "--timezone", "Mars/Olympus_Mons"}, "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

type stubChecker check.Result

func (s stubChecker) Run(context.Context) check.Result { return check.Result(s) }

func TestDoctorCommand(t *testing.T) {
	tests := []struct {
		name    string
		results []check.Result
		wantErr bool
	}{
		{
			name: "all pass",
			results: []check.Result{
				{Name: "browser: chrome", Outcome: check.OutcomeOK},
				{Name: "site: https://service.berlin.de", Outcome: check.OutcomeOK},
			},
		},
		{
			name: "site markup changed",
			results: []check.Result{
				{Name: "browser: chrome", Outcome: check.OutcomeOK},
				{Name: "site: https://service.berlin.de", Outcome: check.OutcomeFailed, Failure: check.FailureElementNotFound},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := doctorChecks
			doctorChecks = func(config.File, *version.Version, bool) []check.Checker {
				checks := make([]check.Checker, len(tt.results))
				for i, r := range tt.results {
					checks[i] = stubChecker(r)
				}
				return checks
			}
			t.Cleanup(func() { doctorChecks = orig })

			output, err := executeCommand("doctor")

			if tt.wantErr {
				require.ErrorIs(t, err, ErrCheckFailed)
				assert.Contains(t, output, "[FAIL:ELEMENT_NOT_FOUND]")
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, output, "[OK] browser: chrome")
		})
	}
}

func TestDoctorCommand_Flags(t *testing.T) {
	var gotMin *version.Version
	var gotSkip bool
	orig := doctorChecks
	doctorChecks = func(_ config.File, minChrome *version.Version, skipSite bool) []check.Checker {
		gotMin, gotSkip = minChrome, skipSite
		return nil
	}
	t.Cleanup(func() { doctorChecks = orig })

	_, err := executeCommand("doctor", "--min-chrome", "120.0", "--skip-site")
	require.NoError(t, err)
	require.NotNil(t, gotMin)
	assert.Equal(t, 120, gotMin.Major)
	assert.True(t, gotSkip)

	_, err = executeCommand("doctor", "--min-chrome", "latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --min-chrome version")
}

func TestCheckCommand_WebhookNotification(t *testing.T) {
	var got []byte
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		gotHeader = r.Header.Get("X-Token")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	session := testutil.NewFakeSession("Bitte wählen Sie einen Tag", "https://service.berlin.de/terminvereinbarung/termin/day/")
	useFakeBrowser(t, session)

	output, err := executeCommand("check", "--settle", "1ms", "--webhook", server.URL, "--webhook-header", "X-Token: secret")

	require.NoError(t, err)
	assert.Contains(t, output, "[FOUND]")
	assert.Contains(t, string(got), `"source":"terminwatch"`)
	assert.Contains(t, string(got), "Appointments might be available! Check: https://service.berlin.de/terminvereinbarung/termin/day/")
	assert.Equal(t, "secret", gotHeader)
}

func TestCheckCommand_WebhookFailureDoesNotFailCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad token"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	session := testutil.NewFakeSession("Bitte wählen Sie einen Tag", "https://service.berlin.de/day/")
	useFakeBrowser(t, session)

	output, err := executeCommand("check", "--settle", "1ms", "--webhook", server.URL)

	require.NoError(t, err)
	assert.Contains(t, output, "[FOUND]")
	assert.Contains(t, output, "bad token")
}

func TestBuildNotifier(t *testing.T) {
	disabled := false

	f := config.Default()
	f.Notification.Enabled = &disabled
	assert.Nil(t, buildNotifier(f, io.Discard, slog.Default()))

	f = config.Default()
	f.Notification.Console = &disabled
	f.Notification.EndpointURL = "https://hooks.example.com"
	f.Notification.SMTP = config.SMTP{Server: "smtp.example.com", To: []string{"me@example.com"}}
	n, ok := buildNotifier(f, io.Discard, slog.Default()).(notify.Multi)
	require.True(t, ok)
	require.Len(t, n, 3)
	assert.IsType(t, notify.Func(nil), n[0])
	assert.IsType(t, &notify.Webhook{}, n[1])
	assert.IsType(t, &notify.Email{}, n[2])
}
