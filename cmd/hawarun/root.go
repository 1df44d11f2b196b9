package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hawarun/internal/ipc"
	"hawarun/internal/logging"
	"hawarun/internal/manifest"
)

func newRootCommand() *cobra.Command {
	var flags rootFlags
	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:   "hawarun [flags] <manifest>",
		Short: "Ask the Hawa launcher daemon to start a game",
		Long: "hawarun reads a game manifest and forwards its launch request to the\n" +
			"privileged launcher daemon, printing the daemon's reply.\n\n" +
			"Manifest problems are reported before configuration problems.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return newUsageError(cmd, fmt.Errorf("expected exactly one manifest path, got %d arguments", len(args)))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd, ctx, args[0])
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return newUsageError(cmd, err)
	})

	rootCmd.Flags().StringVar(&flags.socket, "socket", "", "Path to the launcher daemon socket")
	rootCmd.Flags().StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	rootCmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "How long to wait for the daemon's reply (e.g. 5s)")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug details to stderr")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Parse the manifest and show the request without contacting the daemon")

	return rootCmd
}

type rootFlags struct {
	socket  string
	config  string
	timeout time.Duration
	verbose bool
	dryRun  bool
}

// launch parses the manifest before reporting a configuration problem, so a
// bad manifest always exits with the manifest status.
func launch(cmd *cobra.Command, ctx *commandContext, path string) error {
	_, cfgErr := ctx.ensureConfig()
	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	m, err := manifest.Load(path, logger)
	if err != nil {
		logger.Debug("manifest rejected",
			logging.String(logging.FieldEventType, "manifest_invalid"),
			logging.String("path", path),
			logging.Error(err))
		return err
	}
	if cfgErr != nil {
		return cfgErr
	}

	client := ipc.NewClient(ctx.clientOptions(logger))
	if ctx.flags.dryRun {
		return printDryRun(cmd.OutOrStdout(), m, client.SocketPath())
	}

	reply, err := client.Send(cmd.Context(), m.Request())
	if err != nil {
		var connErr *ipc.ConnectionError
		if errors.As(err, &connErr) {
			logger.Debug("launcher daemon unreachable",
				logging.String(logging.FieldEventType, "daemon_unreachable"),
				logging.String("reason", string(connErr.Reason)),
				logging.String(logging.FieldErrorHint, connErr.Hint()),
				logging.Error(err))
		}
		return err
	}
	logger.Debug("daemon replied",
		logging.String(logging.FieldEventType, "launch_replied"),
		logging.Bool("closed", reply.Closed),
		logging.Int("bytes", len(reply.Payload)))
	return ipc.Render(cmd.OutOrStdout(), reply)
}
