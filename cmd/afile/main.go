// Command afile reads files through the afile backends.
//
// Usage:
//
//	afile cat /etc/hosts
//	afile --origin https://example.com/files head index.html --bytes 512
//	afile stat --json /var/log/syslog
//	afile exists s3-key --origin s3://bucket/prefix
//	afile config init
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// errAbsent makes the command exit with status 1 without printing an error.
var errAbsent = errors.New("absent")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errAbsent) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "afile",
		Short: "Priority-aware file access",
		Long: `afile reads local files on a blocking worker pool, or remote files
from an http, https or s3 origin, with a priority attached to every operation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file path (default $XDG_CONFIG_HOME/afile/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	flags.StringVarP(&a.priorityFlag, "priority", "p", "", "operation priority (background, unit_test, default, user_initiated, highest or 0-255)")
	flags.StringVar(&a.origin, "origin", "", "remote origin URL; selects the remote backend")

	rootCmd.AddCommand(
		catCmd(a),
		headCmd(a),
		statCmd(a),
		existsCmd(a),
		configCmd(),
	)

	return rootCmd
}
