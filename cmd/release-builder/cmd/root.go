package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-builder/internal/config"
	"github.com/oshokin/release-builder/internal/logger"
	"github.com/oshokin/release-builder/internal/service/common"
	"github.com/oshokin/release-builder/internal/service/orchestrator"
)

var (
	// newRunner creates the runner for external tools writing streamed output to w.
	newRunner = func(w io.Writer) common.Runner {
		return common.NewExecRunner(common.WithOutput(w))
	}

	// debug raises log verbosity to DEBUG, showing every external command.
	debug bool

	// rootCmd represents the base command for building release packages.
	rootCmd = &cobra.Command{
		Use:   "release-builder",
		Short: "Cross-compile the agent and build rpm and deb packages for every architecture.",
		Long: `Builds the agent binary for amd64, i386, armhf and arm64, stages the installed
file layout for each and runs fpm once per architecture and package format.

Settings are read from release-builder.yaml in the working directory when present.
The first failing command stops the run with exit status 1.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			log := logger.New(cmd.OutOrStdout(), logger.LevelFor(debug))
			defer func() {
				_ = log.Sync()
			}()

			ctx = logger.ToContext(ctx, log)

			options := &orchestrator.Options{
				ConfigPath: config.DefaultConfigFilename,
				Runner:     newRunner(cmd.OutOrStdout()),
			}

			if err := orchestrator.Run(ctx, options); err != nil {
				logger.ErrorKV(ctx, "Release build failed", "error", err)
				return err
			}

			return nil
		},
	}
)

// Execute runs the release-builder CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().BoolVar(&debug, "debug", false, "log every external command and its output")
}
