package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vertti/terminwatch/pkg/appointment"
	"github.com/vertti/terminwatch/pkg/browser"
	"github.com/vertti/terminwatch/pkg/config"
	"github.com/vertti/terminwatch/pkg/notify"
)

var (
	checkURL        string
	checkCheckboxID string
	checkSubmitID   string
	checkPhrase     string
	checkTimeout    time.Duration
	checkSettle     time.Duration
	checkHeadless   bool
	checkChromePath string
	webhookURL      string
	webhookHeaders  []string
	emailTo         []string
	noNotify        bool
)

// newLauncher is replaced in tests to avoid starting Chrome.
var newLauncher = func(f config.File, logger *slog.Logger) browser.Launcher {
	return &browser.Chrome{
		Headless: f.Headless(),
		ExecPath: f.Scraper.ChromePath,
		Logger:   logger,
	}
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check once whether appointments might be available",
	Long: `Check opens the booking page, selects all locations, submits the search and
looks for the "no appointments" message. Exits with 1 only when the check
itself fails (timeout, changed page markup, browser errors).`,
	Args: cobra.NoArgs,
	RunE: runAppointmentCheck,
}

func init() {
	addCheckFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

// addCheckFlags registers the flags shared by check and watch.
func addCheckFlags(cmd *cobra.Command) {
	// Page flags
	cmd.Flags().StringVar(&checkURL, "url", appointment.DefaultURL, "booking page URL")
	cmd.Flags().StringVar(&checkCheckboxID, "checkbox-id", appointment.DefaultCheckboxID, "id of the \"all locations\" checkbox")
	cmd.Flags().StringVar(&checkSubmitID, "submit-id", appointment.DefaultSubmitID, "id of the search submit button")
	cmd.Flags().StringVar(&checkPhrase, "phrase", appointment.DefaultPhrase, "page text meaning no appointments are available")
	cmd.Flags().DurationVar(&checkTimeout, "timeout", appointment.DefaultTimeout, "maximum wait for each page element")
	cmd.Flags().DurationVar(&checkSettle, "settle", appointment.DefaultSettleDelay, "fixed wait for the results page after submitting")

	// Browser flags
	cmd.Flags().BoolVar(&checkHeadless, "headless", true, "run Chrome without a window")
	cmd.Flags().StringVar(&checkChromePath, "chrome-path", "", "Chrome binary (default: search well-known locations)")

	// Notification flags
	cmd.Flags().StringVar(&webhookURL, "webhook", "", "POST notifications as JSON to this URL")
	cmd.Flags().StringSliceVar(&webhookHeaders, "webhook-header", nil, "webhook header (key:value), can be repeated")
	cmd.Flags().StringSliceVar(&emailTo, "email-to", nil, "email notifications to this address (needs smtp settings in the config file)")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "do not send notifications")
}

// applyCheckFlags copies explicitly set flags over the loaded settings.
func applyCheckFlags(cmd *cobra.Command, f *config.File) error {
	flags := cmd.Flags()
	if err := requireAtMostOne(
		flagSet{"--no-notify", noNotify},
		flagSet{"--webhook", flags.Changed("webhook")},
	); err != nil {
		return err
	}
	if err := requireAtMostOne(
		flagSet{"--no-notify", noNotify},
		flagSet{"--email-to", flags.Changed("email-to")},
	); err != nil {
		return err
	}

	if flags.Changed("url") {
		f.Scraper.URL = checkURL
	}
	if flags.Changed("checkbox-id") {
		f.Selectors.CheckboxAllLocations = checkCheckboxID
	}
	if flags.Changed("submit-id") {
		f.Selectors.SubmitButton = checkSubmitID
	}
	if flags.Changed("phrase") {
		f.Patterns.NoAppointments = checkPhrase
	}
	if flags.Changed("headless") {
		f.Scraper.HeadlessMode = &checkHeadless
	}
	if flags.Changed("chrome-path") {
		f.Scraper.ChromePath = checkChromePath
	}
	if flags.Changed("webhook") {
		f.Notification.EndpointURL = webhookURL
	}
	if flags.Changed("webhook-header") {
		if f.Notification.Headers == nil {
			f.Notification.Headers = map[string]string{}
		}
		for k, v := range parseHeaders(webhookHeaders) {
			f.Notification.Headers[k] = v
		}
	}
	if flags.Changed("email-to") {
		f.Notification.SMTP.To = emailTo
	}
	if noNotify {
		disabled := false
		f.Notification.Enabled = &disabled
	}
	return f.Validate()
}

// newAppointmentCheck builds a check from settings and flags.
func newAppointmentCheck(cmd *cobra.Command) (*appointment.Check, error) {
	if err := applyCheckFlags(cmd, &settings); err != nil {
		return nil, err
	}

	cfg := settings.Appointment()
	if cmd.Flags().Changed("timeout") {
		if checkTimeout <= 0 {
			return nil, fmt.Errorf("--timeout must be positive")
		}
		cfg.Timeout = checkTimeout
	}
	if cmd.Flags().Changed("settle") {
		// A zero delay would read the page before the search results render.
		if checkSettle <= 0 {
			return nil, fmt.Errorf("--settle must be positive")
		}
		cfg.SettleDelay = checkSettle
	}

	return &appointment.Check{
		Config:   cfg,
		Launcher: newLauncher(settings, logger),
		Notifier: buildNotifier(settings, cmd.OutOrStdout(), logger),
		Logger:   logger,
	}, nil
}

// buildNotifier assembles every configured notification transport.
func buildNotifier(f config.File, out io.Writer, logger *slog.Logger) notify.Notifier {
	if !f.NotificationsEnabled() {
		return nil
	}

	n := notify.Multi{notify.Log(logger)}
	if f.ConsoleEnabled() {
		n = append(n, &notify.Console{Out: out})
	}
	if f.Notification.EndpointURL != "" {
		n = append(n, &notify.Webhook{
			URL:     f.Notification.EndpointURL,
			Headers: f.Notification.Headers,
			Timeout: time.Duration(f.Notification.Timeout) * time.Second,
		})
	}
	if smtp := f.Notification.SMTP; smtp.Server != "" && len(smtp.To) > 0 {
		n = append(n, &notify.Email{
			Server:   smtp.Server,
			Port:     smtp.Port,
			Username: smtp.Username,
			Password: smtp.Password,
			To:       smtp.To,
		})
	}
	return n
}

func runAppointmentCheck(cmd *cobra.Command, args []string) error {
	c, err := newAppointmentCheck(cmd)
	if err != nil {
		return err
	}
	return runCheck(cmd.Context(), c)
}
