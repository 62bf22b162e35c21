package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vertti/terminwatch/pkg/browsercheck"
	"github.com/vertti/terminwatch/pkg/check"
	"github.com/vertti/terminwatch/pkg/config"
	"github.com/vertti/terminwatch/pkg/output"
	"github.com/vertti/terminwatch/pkg/sitecheck"
	"github.com/vertti/terminwatch/pkg/version"
)

var (
	doctorMinChrome string
	doctorSkipSite  bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify Chrome is installed and the booking page markup is unchanged",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorMinChrome, "min-chrome", "", "minimum Chrome version required (inclusive)")
	doctorCmd.Flags().BoolVar(&doctorSkipSite, "skip-site", false, "do not fetch the booking page")
	rootCmd.AddCommand(doctorCmd)
}

// doctorChecks is replaced in tests to avoid touching the system and network.
var doctorChecks = func(f config.File, minChrome *version.Version, skipSite bool) []check.Checker {
	checks := []check.Checker{
		&browsercheck.Check{ExecPath: f.Scraper.ChromePath, MinVersion: minChrome},
	}
	if !skipSite {
		checks = append(checks, &sitecheck.Check{
			URL:        f.Scraper.URL,
			ElementIDs: []string{f.Selectors.CheckboxAllLocations, f.Selectors.SubmitButton},
		})
	}
	return checks
}

func runDoctor(cmd *cobra.Command, args []string) error {
	minChrome, err := version.ParseOptional(doctorMinChrome)
	if err != nil {
		return fmt.Errorf("invalid --min-chrome version: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	failed := false
	for _, c := range doctorChecks(settings, minChrome, doctorSkipSite) {
		result := c.Run(cmd.Context())
		output.PrintResult(result)
		if !result.OK() {
			failed = true
		}
	}
	if failed {
		return ErrCheckFailed
	}
	return nil
}
