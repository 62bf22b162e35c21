package appointment

import "time"

const (
	DefaultURL        = "https://service.berlin.de/dienstleistung/351180/"
	DefaultCheckboxID = "checkbox_overall"
	DefaultSubmitID   = "appointment_submit"
	DefaultPhrase     = "Leider sind aktuell keine Termine für ihre Auswahl verfügbar."
	DefaultTimeout    = 10 * time.Second

	// DefaultSettleDelay is how long to wait after submitting the search.
	// The result page offers no readiness signal, so this is a fixed delay
	// and breaks if the site becomes slower than this.
	DefaultSettleDelay = 3 * time.Second

	// DefaultNotifyTimeout bounds delivery of the appointments notification.
	DefaultNotifyTimeout = time.Minute
)

// Config describes the booking page and how long to wait on it.
type Config struct {
	URL         string        // booking page (default: DefaultURL)
	CheckboxID  string        // "all locations" checkbox element id
	SubmitID    string        // search submit button element id
	Phrase      string        // page text meaning no appointments are available
	Timeout     time.Duration // bound for every element wait
	SettleDelay time.Duration // fixed wait after submit

	// NotifyTimeout bounds the notifier call so a stalled transport cannot
	// keep the browser session open.
	NotifyTimeout time.Duration
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.CheckboxID == "" {
		c.CheckboxID = DefaultCheckboxID
	}
	if c.SubmitID == "" {
		c.SubmitID = DefaultSubmitID
	}
	if c.Phrase == "" {
		c.Phrase = DefaultPhrase
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.NotifyTimeout == 0 {
		c.NotifyTimeout = DefaultNotifyTimeout
	}
	return c
}
