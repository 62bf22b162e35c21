// Package sitecheck verifies that the booking page is reachable and still
// carries the element ids the appointment check relies on.
package sitecheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/vertti/terminwatch/pkg/browser"
	"github.com/vertti/terminwatch/pkg/check"
)

// Check fetches the booking page without a browser and looks for the
// expected element ids in its markup.
type Check struct {
	URL        string        // booking page (required)
	ElementIDs []string      // ids that must be present
	Timeout    time.Duration // request timeout (default: 10s)
	UserAgent  string        // default: browser.DefaultUserAgent
	Client     *resty.Client // injected for testing
}

// Run executes the site check.
func (c *Check) Run(ctx context.Context) check.Result {
	result := check.Result{
		Name: "site: " + c.URL,
	}

	parsedURL, err := url.Parse(c.URL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return result.Failf(check.FailureError, "invalid URL: %s", c.URL)
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = browser.DefaultUserAgent
	}
	client := c.Client
	if client == nil {
		client = resty.New()
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := client.R().
		SetContext(ctx).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "de-DE,de;q=0.9").
		Get(c.URL)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result.Failf(check.FailureTimeout, "request timed out after %s", timeout)
		}
		return result.Failf(check.FailureError, "request failed: %v", err)
	}
	if res.StatusCode() != 200 {
		return result.Failf(check.FailureError, "status %d, expected 200", res.StatusCode())
	}
	result.AddDetailf("status %d", res.StatusCode())

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return result.Failf(check.FailureError, "failed to parse page: %v", err)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		result.AddDetailf("title: %s", title)
	}

	ids := map[string]bool{}
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		ids[s.AttrOr("id", "")] = true
	})

	var missing []string
	for _, id := range c.ElementIDs {
		if !ids[id] {
			missing = append(missing, "#"+id)
			continue
		}
		result.AddDetailf("found: #%s", id)
	}
	if len(missing) > 0 {
		err := fmt.Errorf("%w: %s", browser.ErrElementNotFound, strings.Join(missing, ", "))
		return result.Fail(check.FailureElementNotFound, fmt.Sprintf("missing in markup: %s", strings.Join(missing, ", ")), err)
	}

	return result.Pass()
}
