package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nisdos/shellsig/internal/config"
	"github.com/nisdos/shellsig/internal/explain"
	telem "github.com/nisdos/shellsig/internal/otel"
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <status>",
	Short: "Ask an LLM what a failed command's exit status means",
	Long: `Diagnose a failure from its exit status, optionally with terminal
output piped on stdin for context:

  tail -n 40 build.log | shellsig explain 2

The explainer uses the configured LLM provider (anthropic or openai)
and prints a short summary, likely cause, and suggested next step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := strconv.Atoi(args[0])
		if err != nil || status < 0 || status > 255 {
			return fmt.Errorf("invalid exit status %q (expected 0-255)", args[0])
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		d, err := getDialect(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()

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

		// Read piped output for context; skipped on a TTY.
		output := readPipedStdin(cfg.ContextLines)

		inner, err := getExplainer(cfg)
		if err != nil {
			return err
		}
		var metrics *telem.Metrics
		if tel != nil {
			metrics = tel.Metrics
		}
		explainer := explain.NewCachedExplainer(inner, explain.NewCache(cfg.ExplainTTLDuration), metrics)

		req := explain.Request{
			Shell:  string(d),
			Status: status,
			Output: output,
		}
		session := fmt.Sprintf("%s-%d", d, os.Getpid())
		explanation, err := explainer.ExplainSession(cmd.Context(), session, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Summary:      %s\n", explanation.Summary)
		fmt.Fprintf(out, "Likely cause: %s\n", explanation.LikelyCause)
		fmt.Fprintf(out, "Suggestion:   %s\n", explanation.Suggestion)
		return nil
	},
}

// readPipedStdin returns up to maxLines of stdin when it is a pipe,
// empty otherwise.
func readPipedStdin(maxLines int) string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil || len(data) == 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
