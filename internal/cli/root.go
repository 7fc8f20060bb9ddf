// Package cli implements the tsyncstress command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/llxisdsh/tsync/internal/log"
	"github.com/llxisdsh/tsync/internal/stress"
)

// NewRootCmd returns the root command with one subcommand per stress run
// plus "all".
func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	cfg := stress.DefaultConfig()
	var logger *slog.Logger

	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log_level", "info", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "text", "Set the log format (text, logfmt, json)")
	cmd.PersistentFlags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of worker goroutines")
	cmd.PersistentFlags().IntVar(&cfg.Rounds, "rounds", cfg.Rounds, "Coordination rounds per worker")
	cmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Deadline for each run")
	cmd.PersistentFlags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "Barrier poll interval")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}
		logger = slog.New(h)

		return cfg.Validate()
	}

	for _, run := range stress.Names() {
		cmd.AddCommand(newRunCmd(run, stress.Runs[run], &cfg, &logger))
	}
	cmd.AddCommand(newAllCmd(&cfg, &logger))

	return cmd
}

func newRunCmd(name string, fn stress.RunFunc, cfg *stress.Config, logger **slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Stress the %s invariants", name),
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			r, err := fn(cc.Context(), *cfg, *logger)
			if err != nil {
				return err
			}
			printReport(cc, r)
			return nil
		},
	}
}

func newAllCmd(cfg *stress.Config, logger **slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every stress run in turn",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			reports, err := stress.All(cc.Context(), *cfg, *logger)
			for _, r := range reports {
				printReport(cc, r)
			}
			return err
		},
	}
}

func printReport(cc *cobra.Command, r stress.Report) {
	fmt.Fprintf(cc.OutOrStdout(), "%-9s workers=%d rounds=%d episodes=%d leaders=%d followers=%d violations=%d elapsed=%v\n",
		r.Name, r.Workers, r.Rounds, r.Episodes, r.Leaders, r.Followers, r.Violations, r.Elapsed)
}
