package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/vertti/terminwatch/pkg/check"
	"github.com/vertti/terminwatch/pkg/config"
	"github.com/vertti/terminwatch/pkg/output"
	"github.com/vertti/terminwatch/pkg/schedule"
)

var (
	watchSchedule    string
	watchTimeZone    string
	watchStopOnFound bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check repeatedly on a cron schedule until interrupted",
	Long: `Watch runs the appointment check on a cron schedule (e.g. "@every 10m" or
"*/5 8-18 * * 1-5"). Checks never overlap: a tick that arrives while a check
is still running is skipped. Failed checks are reported and watching continues.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addCheckFlags(watchCmd)
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", config.DefaultSchedule, "cron schedule for checks")
	watchCmd.Flags().StringVar(&watchTimeZone, "timezone", "", "time zone for the schedule, e.g. Europe/Berlin (default: local)")
	watchCmd.Flags().BoolVar(&watchStopOnFound, "stop-on-found", false, "stop watching after the first check that finds appointments")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("schedule") {
		settings.Schedule.Spec = watchSchedule
	}
	if cmd.Flags().Changed("timezone") {
		settings.Schedule.TimeZone = watchTimeZone
	}
	if err := schedule.Validate(settings.Schedule.Spec); err != nil {
		return err
	}

	var opts []cron.Option
	if tz := settings.Schedule.TimeZone; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		opts = append(opts, cron.WithLocation(loc))
	}

	c, err := newAppointmentCheck(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &schedule.Runner{
		Spec:    settings.Schedule.Spec,
		Checker: c,
		OnResult: func(result check.Result) {
			output.PrintResult(result)
			if watchStopOnFound && result.Found() {
				logger.Info("appointments found, stopping")
				stop()
			}
		},
		Logger:  logger,
		Options: opts,
	}
	return r.Run(ctx)
}
