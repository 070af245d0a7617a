package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/screener/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "screener: %v\n", err)
		return 1
	}
	return 0
}

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	prefsPath  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "screener",
		Short: "Browse companies by sector, industry and market cap",
		Long: `screener is a terminal UI over a market data service.

Run without a subcommand to open the interactive screener. The subcommands
run the same lookups once and print the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: opts.configPath,
				PrefsPath:  opts.prefsPath,
				Verbose:    opts.verbose,
			})
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/screener/config.toml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	root.Flags().StringVar(&opts.prefsPath, "prefs", "", "preferences file (default ~/.config/screener/prefs.toml)")

	root.AddCommand(
		newSectorsCmd(opts),
		newIndustriesCmd(opts),
		newQueryCmd(opts),
		newProfileCmd(opts),
	)
	return root
}
