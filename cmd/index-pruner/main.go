package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FairwindsOps/index-pruner/pkg/config"
	"github.com/FairwindsOps/index-pruner/pkg/pruner"
	"github.com/FairwindsOps/index-pruner/pkg/retention"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(runPruner).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runPruner executes a single prune pass with the validated options.
func runPruner(ctx context.Context, opts pruner.Options) error {
	p, err := pruner.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize pruner: %w", err)
	}

	_, err = p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("interrupted: %w", err)
	}
	return err
}

func newRootCmd(run func(context.Context, pruner.Options) error) *cobra.Command {
	var opts pruner.Options

	var (
		configPath  string
		olderThan   string
		datePattern = retention.Month
		noDryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "index-pruner",
		Short: "Delete old Elasticsearch/OpenSearch indices by name (monthly or weekly patterns)",
		Long: `Lists the indices matching a prefix, reads the year and month (or ISO week)
from the end of each index name and deletes the ones at least --older-than
months old. Runs in dry-run mode unless --no-dryrun is given.`,
		Example: `  index-pruner --url http://localhost:9200 --index-prefix zis-audit- --older-than 25m
  index-pruner --url http://localhost:9200 --index-prefix kafka-orders-notify- --date-pattern week --older-than 21m --no-dryrun`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			file, err := config.Load(configPath)
			if err != nil {
				return err
			}
			file.ApplyEnv()

			// Values from the file and environment apply unless the flag was given.
			flags := cmd.Flags()
			if !flags.Changed("url") {
				opts.URL = file.URL
			}
			if !flags.Changed("username") {
				opts.Username = file.Username
			}
			if !flags.Changed("password") {
				opts.Password = file.Password
			}
			if !flags.Changed("index-prefix") && file.IndexPrefix != "" {
				opts.IndexPrefix = file.IndexPrefix
			}
			if !flags.Changed("older-than") && file.OlderThan != "" {
				olderThan = file.OlderThan
			}
			if !flags.Changed("date-pattern") && file.DatePattern != nil {
				datePattern = *file.DatePattern
			}
			if !flags.Changed("delete-rate-limit") && file.DeleteRateLimit != 0 {
				opts.DeleteRateLimit = file.DeleteRateLimit
			}
			if !flags.Changed("timeout") && file.Timeout != 0 {
				opts.Timeout = file.Timeout
			}
			if !flags.Changed("pushgateway-url") && file.PushgatewayURL != "" {
				opts.PushgatewayURL = file.PushgatewayURL
			}

			if opts.URL == "" {
				return fmt.Errorf("--url is required (or set it in --config or %s)", config.EnvURL)
			}
			if (opts.Username == "") != (opts.Password == "") {
				return fmt.Errorf("both --username and --password must be provided for basic auth")
			}

			months, err := retention.ParseThreshold(olderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			opts.OlderThanMonths = months
			opts.DatePattern = datePattern

			// Dry run unless explicitly disabled
			opts.DryRun = !noDryRun

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Cancel in-flight requests on SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, opts)
		},
	}

	flags := cmd.Flags()

	// Connection
	flags.StringVar(&opts.URL, "url", "",
		"Base URL of the cluster, e.g. http://localhost:9200")
	flags.StringVar(&opts.Username, "username", "",
		"Basic auth username (requires --password)")
	flags.StringVar(&opts.Password, "password", "",
		"Basic auth password (requires --username)")
	flags.DurationVar(&opts.Timeout, "timeout", 30*time.Second,
		"Timeout for each request to the cluster")

	// Selection
	flags.StringVar(&opts.IndexPrefix, "index-prefix", config.DefaultIndexPrefix,
		"Only indices whose name starts with this prefix are considered")
	flags.StringVar(&olderThan, "older-than", config.DefaultOlderThan,
		"Delete indices at least this many months old (e.g. '25m', '12 months')")
	flags.Var(&datePattern, "date-pattern",
		"Date fragment after the prefix: 'month' (YYYY-MM or YYYY.MM) or 'week' (YYYY-W, ISO week)")

	// Deletion
	flags.BoolVar(&noDryRun, "no-dryrun", false,
		"Actually delete the indices (default is to only report them)")
	flags.DurationVar(&opts.DeleteRateLimit, "delete-rate-limit", 0,
		"Minimum duration between delete operations (0 to disable)")

	// General options
	flags.StringVar(&configPath, "config", "",
		"Optional YAML file with default values for the flags above")
	flags.StringVar(&opts.PushgatewayURL, "pushgateway-url", "",
		"Push run metrics to this Prometheus Pushgateway")
	flags.BoolVar(&opts.Debug, "debug", false,
		"Enable debug logging")

	return cmd
}
