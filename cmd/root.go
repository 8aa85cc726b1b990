package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/nisdos/shellsig/internal/config"
	"github.com/nisdos/shellsig/internal/explain"
	"github.com/nisdos/shellsig/internal/hook"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

var (
	// Global flags.
	flagShell     string
	flagProvider  string
	flagModel     string
	flagBaseURL   string
	flagAPIKey    string
	flagMaxTokens int64
)

var rootCmd = &cobra.Command{
	Use:   "shellsig",
	Short: "Command-completion signals for bash and zsh",
	Long: `shellsig hooks into bash and zsh prompts to signal how every
foreground command finished.

After each command, the hook prints a red error line for non-trivial
failures and emits a terminal escape sequence carrying the exit status,
so terminal emulators and tooling can react to command completion
without parsing shell output.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&flagShell, "shell", envOrDefault("SHELLSIG_SHELL", ""), "shell dialect: bash, zsh (default: auto-detect from $SHELL)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", envOrDefault("SHELLSIG_PROVIDER", ""), "LLM provider for explain: anthropic, openai")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", envOrDefault("SHELLSIG_MODEL", ""), "LLM model name (default: claude-sonnet-4-5 for anthropic, gpt-4o-mini for openai)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", envOrDefault("SHELLSIG_BASE_URL", ""), "override LLM API base URL")
	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", envOrDefault("SHELLSIG_API_KEY", ""), "override LLM API key")
	rootCmd.PersistentFlags().Int64Var(&flagMaxTokens, "max-tokens", 0, "max completion tokens (default: 1024; increase for reasoning models)")
}

// getDialect resolves the shell dialect: flag, then config, then $SHELL.
func getDialect(cfg *config.Config) (hook.Dialect, error) {
	if flagShell != "" {
		return hook.FromName(flagShell)
	}
	if cfg != nil && cfg.Shell != "" {
		return hook.FromName(cfg.Shell)
	}
	return hook.Detect()
}

// getExplainer returns the configured LLM explainer.
func getExplainer(cfg *config.Config) (explain.Explainer, error) {
	provider := flagProvider
	if provider == "" {
		provider = cfg.Provider
	}
	switch provider {
	case "anthropic":
		return newAnthropicExplainer(cfg)
	case "openai":
		return newOpenAIExplainer(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai)", provider)
	}
}

// newAnthropicExplainer creates an Anthropic explainer with the resolved config.
func newAnthropicExplainer(cfg *config.Config) (explain.Explainer, error) {
	model := firstNonEmpty(flagModel, cfg.Model, "claude-sonnet-4-5")
	baseURL := firstNonEmpty(flagBaseURL, cfg.BaseURL)
	apiKey := firstNonEmpty(flagAPIKey, cfg.APIKey)
	extraHeaders := map[string]string{}

	if baseURL == "" {
		resourceName := os.Getenv("AZURE_RESOURCE_NAME")
		if resourceName != "" {
			// The Anthropic SDK appends /v1/messages to the base URL.
			// Azure AI Foundry endpoint is: https://<resource>.services.ai.azure.com/anthropic/v1/messages
			// So we set base URL to .../anthropic/ (SDK adds v1/messages).
			baseURL = fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", resourceName)
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("no API key found. Set SHELLSIG_API_KEY, AZURE_OPENAI_API_KEY, or ANTHROPIC_API_KEY")
	}

	// Azure AI Foundry needs both "api-key" (Azure) and "x-api-key" (Anthropic SDK default) headers.
	if os.Getenv("AZURE_RESOURCE_NAME") != "" || isAzureEndpoint(baseURL) {
		extraHeaders["api-key"] = apiKey
	}

	maxTokens := flagMaxTokens
	if maxTokens <= 0 {
		maxTokens = cfg.MaxTokens
	}

	return explain.NewAnthropicExplainer(explain.AnthropicConfig{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		MaxTokens:    maxTokens,
		ExtraHeaders: extraHeaders,
	}), nil
}

// newOpenAIExplainer creates an OpenAI explainer with the resolved config.
func newOpenAIExplainer(cfg *config.Config) (explain.Explainer, error) {
	model := firstNonEmpty(flagModel, cfg.Model, "gpt-4o-mini")
	if model == "claude-sonnet-4-5" {
		// Config default is the anthropic model; don't send it to OpenAI.
		model = "gpt-4o-mini"
	}
	baseURL := firstNonEmpty(flagBaseURL, cfg.BaseURL)
	apiKey := firstNonEmpty(flagAPIKey, cfg.APIKey)
	extraHeaders := map[string]string{}

	if baseURL == "" {
		resourceName := os.Getenv("AZURE_RESOURCE_NAME")
		if resourceName != "" {
			baseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", resourceName)
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("AZURE_OPENAI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, fmt.Errorf("no API key found. Set SHELLSIG_API_KEY, AZURE_OPENAI_API_KEY, or OPENAI_API_KEY")
	}

	if os.Getenv("AZURE_RESOURCE_NAME") != "" || isAzureEndpoint(baseURL) {
		extraHeaders["api-key"] = apiKey
	}

	maxTokens := flagMaxTokens
	if maxTokens <= 0 {
		maxTokens = cfg.MaxTokens
	}

	return explain.NewOpenAIExplainer(explain.OpenAIConfig{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		MaxTokens:    maxTokens,
		ExtraHeaders: extraHeaders,
	}), nil
}

// isAzureEndpoint checks if a URL is an Azure endpoint.
func isAzureEndpoint(url string) bool {
	return strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
