package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/nisdos/shellsig/internal/config"
	"github.com/nisdos/shellsig/internal/events"
	telem "github.com/nisdos/shellsig/internal/otel"
	"github.com/nisdos/shellsig/internal/watch"
	"github.com/spf13/cobra"
)

var (
	flagWatchSocket string
	flagTheme       string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive TUI over live shell sessions",
	Long: `Launch a dashboard that collects command results from hooked
shells (see the run command) and shows per-session counters and recent
failures, refreshed live.

Configuration is loaded from .shellsig.yaml or environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cfg.ConfigFile != "" {
			fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel() // stops the collector when the TUI exits

		// Wire build version into OTEL service metadata.
		telem.Version = Version
		tel, err := telem.Init(ctx, telem.OTELConfig{
			Endpoint: cfg.OTELEndpoint,
			Headers:  cfg.OTELHeaders,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: otel init failed: %v\n", err)
		}
		if tel != nil {
			defer tel.Shutdown(ctx)
		}

		socketPath := flagWatchSocket
		if socketPath == "" {
			socketPath = cfg.Socket
		}
		if socketPath == "" {
			socketPath = events.DefaultSocketPath()
		}

		store := events.NewStore(cfg.SessionTTLDuration)
		collector := events.NewCollector(store, socketPath)
		if tel != nil {
			collector.Metrics = tel.Metrics
		}
		if err := collector.Start(ctx); err != nil {
			return fmt.Errorf("collector: %w", err)
		}
		fmt.Fprintf(os.Stderr, "collector: listening on %s\n", collector.SocketPath())

		tui := &watch.TUI{
			Store:           store,
			Theme:           watch.ThemeByName(flagTheme),
			RefreshInterval: cfg.RefreshDuration,
			SocketPath:      collector.SocketPath(),
		}
		return tui.Run()
	},
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchSocket, "socket", "",
		"Unix datagram socket path for command results")
	watchCmd.Flags().StringVar(&flagTheme, "theme", "dark",
		"Color theme: dark, light")
	rootCmd.AddCommand(watchCmd)
}
