package cmd

import (
	"fmt"

	"github.com/nisdos/shellsig/internal/config"
	"github.com/nisdos/shellsig/internal/hook"
	"github.com/spf13/cobra"
)

var flagInstallAll bool

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Append the hook to the shell rc file",
	Long: `Append the hook snippet to the rc file of the resolved shell
dialect (~/.bashrc or ~/.zshrc). The install is idempotent: if the
shellsig marker is already present, the rc file is left untouched.

Use --all to install for both bash and zsh in one go.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		dialects := []hook.Dialect{}
		if flagInstallAll {
			dialects = append(dialects, hook.Bash, hook.Zsh)
		} else {
			d, err := getDialect(cfg)
			if err != nil {
				return err
			}
			dialects = append(dialects, d)
		}

		for _, d := range dialects {
			path, err := hook.RCPath(d)
			if err != nil {
				return err
			}
			st := hook.StatusRC(d, path)
			if st.Installed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: already installed in %s\n", d, path)
				continue
			}
			if err := hook.InstallRC(d, path); err != nil {
				return fmt.Errorf("install %s hook: %w", d, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: installed in %s\n", d, path)
		}
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&flagInstallAll, "all", false, "install for both bash and zsh")
	rootCmd.AddCommand(installCmd)
}
