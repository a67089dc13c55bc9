// Command deriv prices options and convertible bonds from JSON requests.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meenmo/moderiv/cmd/deriv/internal/batch"
	"github.com/meenmo/moderiv/cmd/deriv/internal/bsprice"
	"github.com/meenmo/moderiv/cmd/deriv/internal/cbprice"
	"github.com/meenmo/moderiv/cmd/deriv/internal/impliedvol"
	"github.com/meenmo/moderiv/config"
	"github.com/meenmo/moderiv/logger"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, batch.ErrReported) {
			fmt.Fprintln(stderr, err)
			return 2
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deriv",
		Short:         "Option and convertible bond pricing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.Logging.Level = level
			}
			if err := logger.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			config.SetConfig(cfg)
			return nil
		},
	}
	root.PersistentFlags().String("config", "", "config file path (default: ./moderiv.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(versionCmd())
	root.AddCommand(impliedvol.Command())
	root.AddCommand(cbprice.Command())
	root.AddCommand(bsprice.Command())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deriv %s (commit %s)\n", version, commit)
		},
	}
}
