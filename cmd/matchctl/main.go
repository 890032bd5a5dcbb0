package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Each call returns a fresh tree so tests
// do not share flag state.
func newRootCmd() *cobra.Command {
	var env cliEnv

	rootCmd := &cobra.Command{
		Use:   "matchctl",
		Short: "Screen names against the sanctions reference list",
		Long: `matchctl runs the sanctions name-matching pipeline from the command line.

It reads the same configuration as the matcher service (config.yaml and
SANCTIONS_* environment variables) and talks to the same database.`,
		SilenceUsage:      true,
		PersistentPreRunE: env.init,
		PersistentPostRun: env.close,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&env.configFile, "config", "", "config file (default searches ./config.yaml, ./config/config.yaml, /etc/sanctions-matcher/config.yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (json, console)")
	flags.Float64("threshold", 0.5, "match probability threshold (0-1)")
	flags.StringVarP(&env.output, "output", "o", "table", "output format (table, json)")

	_ = env.viper().BindPFlag("log.level", flags.Lookup("log-level"))
	_ = env.viper().BindPFlag("log.format", flags.Lookup("log-format"))
	_ = env.viper().BindPFlag("matching.threshold", flags.Lookup("threshold"))

	rootCmd.AddCommand(
		newCompareCmd(&env),
		newBulkCmd(&env),
		newLookupCmd(&env),
		newSeedCmd(&env),
		newMigrateCmd(&env),
		newAuditCmd(&env),
	)
	return rootCmd
}
