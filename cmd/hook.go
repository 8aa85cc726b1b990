package cmd

import (
	"fmt"

	"github.com/nisdos/shellsig/internal/config"
	"github.com/nisdos/shellsig/internal/hook"
	"github.com/spf13/cobra"
)

var flagSnippetOnly bool

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Print the shell hook for sourcing or injection",
	Long: `Print the hook script for the resolved shell dialect.

By default the output is a full init script that sources the user's
own rc file first and then installs the hook; it is what the run
command injects into a fresh shell. With --snippet, only the hook
fragment itself is printed, suitable for eval or manual pasting:

  eval "$(shellsig hook --snippet)"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		d, err := getDialect(cfg)
		if err != nil {
			return err
		}

		if flagSnippetOnly {
			fmt.Fprint(cmd.OutOrStdout(), hook.Snippet(d))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), hook.Script(d))
		return nil
	},
}

func init() {
	hookCmd.Flags().BoolVar(&flagSnippetOnly, "snippet", false,
		"print only the hook fragment, without sourcing the user's rc file")
	rootCmd.AddCommand(hookCmd)
}
