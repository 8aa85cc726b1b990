package cmd

import (
	"encoding/json"

	"github.com/nisdos/shellsig/internal/hook"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report hook install state for bash and zsh",
	Long: `Report, as JSON, whether the hook is installed in the rc file of
each supported shell dialect.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var statuses []hook.Status
		for _, d := range []hook.Dialect{hook.Bash, hook.Zsh} {
			path, err := hook.RCPath(d)
			if err != nil {
				return err
			}
			statuses = append(statuses, hook.StatusRC(d, path))
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
