package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nisdos/shellsig/internal/config"
	"github.com/nisdos/shellsig/internal/events"
	"github.com/nisdos/shellsig/internal/model"
	telem "github.com/nisdos/shellsig/internal/otel"
	"github.com/nisdos/shellsig/internal/runner"
	"github.com/spf13/cobra"
)

var flagRunSocket string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a hooked interactive shell",
	Long: `Start an interactive shell on a PTY with the completion hook
injected, without touching the user's rc files. bash is launched with
--rcfile, zsh with a private ZDOTDIR; both source the user's own rc
file first.

Every command completion decoded from the shell's output is published
to the watch collector socket (best effort; running without a watcher
is fine). On exit, a per-session summary is printed and the shell's
exit status is propagated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		d, err := getDialect(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()

		// Wire build version into OTEL service metadata.
		telem.Version = Version
		tel, err := telem.Init(ctx, telem.OTELConfig{
			Endpoint: cfg.OTELEndpoint,
			Headers:  cfg.OTELHeaders,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
		}
		var metrics *telem.Metrics
		if tel != nil {
			metrics = tel.Metrics
		}

		socketPath := flagRunSocket
		if socketPath == "" {
			socketPath = cfg.Socket
		}
		if socketPath == "" {
			socketPath = events.DefaultSocketPath()
		}

		// Best effort: without a watcher the socket does not exist, and
		// the session still works.
		pub, err := events.Dial(socketPath)
		if err != nil {
			pub = nil
		}

		session := runner.New(d, func(r model.CommandResult) {
			metrics.RecordCommand(ctx, r.Shell, r.Status)
			metrics.RecordSequenceDecoded(ctx)
			if pub != nil {
				_ = pub.Publish(r)
			}
		})

		status, runErr := session.Run()

		if pub != nil {
			_ = pub.Close()
		}
		if tel != nil {
			tel.Shutdown(ctx)
		}

		if runErr != nil {
			return runErr
		}

		sum := session.Summary()
		fmt.Fprintf(os.Stderr, "\nshellsig: %d commands, %d failed, %d interrupted\n",
			sum.Commands, sum.Failures, sum.Interrupts)

		// Propagate the shell's own exit status.
		os.Exit(status)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&flagRunSocket, "socket", "",
		"Unix datagram socket path for publishing command results")
	rootCmd.AddCommand(runCmd)
}
