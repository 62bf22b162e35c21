// Package config loads terminwatch settings from a json5 file.
//
// Settings are layered: built-in defaults, then terminwatch.json5, then
// terminwatch.local.json5 next to it, then secrets from the environment.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"github.com/vertti/terminwatch/pkg/appointment"
)

// FileName is the config file searched for by FindFile.
const FileName = "terminwatch.json5"

// Environment variables holding secrets that do not belong in the config file.
const (
	EnvWebhookURL   = "TERMINWATCH_WEBHOOK_URL"
	EnvSMTPUsername = "TERMINWATCH_SMTP_USERNAME"
	EnvSMTPPassword = "TERMINWATCH_SMTP_PASSWORD"
)

// ErrNotFound is returned by FindFile when no config file exists.
var ErrNotFound = errors.New(FileName + " not found")

type File struct {
	Scraper      Scraper      `json:"scraper"`
	Patterns     Patterns     `json:"patterns"`
	Selectors    Selectors    `json:"selectors"`
	Notification Notification `json:"notification"`
	Schedule     Schedule     `json:"schedule"`
	Log          Log          `json:"log"`
}

type Scraper struct {
	URL           string `json:"url"`
	HeadlessMode  *bool  `json:"headless_mode"`
	WaitTimeout   int    `json:"wait_timeout"`    // seconds
	PageLoadDelay int    `json:"page_load_delay"` // seconds after submit
	ChromePath    string `json:"chrome_path"`
}

type Patterns struct {
	NoAppointments string `json:"no_appointments"`
}

type Selectors struct {
	CheckboxAllLocations string `json:"checkbox_all_locations"`
	SubmitButton         string `json:"submit_button"`
}

type Notification struct {
	Enabled     *bool             `json:"enabled"`
	Console     *bool             `json:"console"`
	EndpointURL string            `json:"endpoint_url"`
	Headers     map[string]string `json:"headers"`
	Timeout     int               `json:"timeout"` // seconds
	SMTP        SMTP              `json:"smtp"`
}

type SMTP struct {
	Server   string   `json:"server"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	To       []string `json:"to"`
}

type Schedule struct {
	Spec     string `json:"spec"`     // cron spec for the watch command
	TimeZone string `json:"timezone"` // IANA zone the spec is read in (default: local)
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// DefaultSchedule runs a check every ten minutes.
const DefaultSchedule = "@every 10m"

// Default returns the built-in settings.
func Default() File {
	return File{
		Scraper: Scraper{
			URL:           appointment.DefaultURL,
			HeadlessMode:  boolPtr(true),
			WaitTimeout:   int(appointment.DefaultTimeout / time.Second),
			PageLoadDelay: int(appointment.DefaultSettleDelay / time.Second),
		},
		Patterns: Patterns{NoAppointments: appointment.DefaultPhrase},
		Selectors: Selectors{
			CheckboxAllLocations: appointment.DefaultCheckboxID,
			SubmitButton:         appointment.DefaultSubmitID,
		},
		Notification: Notification{
			Enabled: boolPtr(true),
			Console: boolPtr(true),
			Timeout: 10,
		},
		Schedule: Schedule{Spec: DefaultSchedule},
		Log:      Log{Level: "info"},
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	return strings.TrimSuffix(f, ext), ext
}

// LocalPath returns the local override path for a config file,
// e.g. terminwatch.local.json5 for terminwatch.json5.
func LocalPath(path string) string {
	base, ext := splitExt(path)
	return base + ".local" + ext
}

// Load reads path and its local override on top of the defaults.
// An empty path yields the defaults.
func Load(path string, getenv func(string) string) (File, error) {
	out := Default()

	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return out, err
		}
		if err := mergo.Merge(&out, file, mergo.WithOverride, mergo.WithoutDereference); err != nil {
			return out, fmt.Errorf("failed to merge %s: %w", path, err)
		}

		local := LocalPath(path)
		override, err := readFile(local)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return out, err
		default:
			if err := mergo.Merge(&out, override, mergo.WithOverride, mergo.WithoutDereference); err != nil {
				return out, fmt.Errorf("failed to merge %s: %w", local, err)
			}
			slog.Debug("merged config with local overrides", "local", local)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	applyEnv(&out, getenv)
	return out, nil
}

func readFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	if err != nil {
		return f, err
	}
	if err := json5.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}

func applyEnv(f *File, getenv func(string) string) {
	if v := getenv(EnvWebhookURL); v != "" {
		f.Notification.EndpointURL = v
	}
	if v := getenv(EnvSMTPUsername); v != "" {
		f.Notification.SMTP.Username = v
	}
	if v := getenv(EnvSMTPPassword); v != "" {
		f.Notification.SMTP.Password = v
	}
}

// Validate reports the first setting that would make every check fail.
func (f File) Validate() error {
	u, err := url.Parse(f.Scraper.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url: %q", f.Scraper.URL)
	}
	if f.Selectors.CheckboxAllLocations == "" || f.Selectors.SubmitButton == "" {
		return errors.New("checkbox and submit selectors are required")
	}
	if strings.TrimSpace(f.Patterns.NoAppointments) == "" {
		return errors.New("no_appointments pattern is required")
	}
	if f.Scraper.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be positive, got %d", f.Scraper.WaitTimeout)
	}
	if f.Scraper.PageLoadDelay <= 0 {
		return fmt.Errorf("page_load_delay must be positive, got %d", f.Scraper.PageLoadDelay)
	}
	if f.Notification.EndpointURL != "" {
		u, err := url.Parse(f.Notification.EndpointURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid endpoint_url: %q", f.Notification.EndpointURL)
		}
	}
	return nil
}

// Appointment converts the scraper settings into a check configuration.
func (f File) Appointment() appointment.Config {
	return appointment.Config{
		URL:         f.Scraper.URL,
		CheckboxID:  f.Selectors.CheckboxAllLocations,
		SubmitID:    f.Selectors.SubmitButton,
		Phrase:      f.Patterns.NoAppointments,
		Timeout:     time.Duration(f.Scraper.WaitTimeout) * time.Second,
		SettleDelay: time.Duration(f.Scraper.PageLoadDelay) * time.Second,
	}
}

// Headless reports whether the browser should run without a window.
func (f File) Headless() bool {
	return f.Scraper.HeadlessMode == nil || *f.Scraper.HeadlessMode
}

// NotificationsEnabled reports whether any notifier should be built.
func (f File) NotificationsEnabled() bool {
	return f.Notification.Enabled == nil || *f.Notification.Enabled
}

// ConsoleEnabled reports whether notifications are printed to stdout.
func (f File) ConsoleEnabled() bool {
	return f.Notification.Console == nil || *f.Notification.Console
}
