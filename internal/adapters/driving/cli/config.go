package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

var (
	configShowSecrets bool
	configPing        bool
)

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"settings"},
	Short:   "Manage application settings",
	Long: `View and change settings stored in the config file.

Provider keys may also come from the environment (OPENAI_API_KEY,
AZURE_OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY, WEAVIATE_API_KEY,
GITHUB_TOKEN, GOOGLE_DRIVE_TOKEN); environment values take precedence.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Change one setting",
	Long: `Validates and stores one setting. For secret keys the value may be
omitted, in which case it is read from the terminal without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the settings can drive ingestion and answering",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to choose the embedding and language model providers.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigWizard,
}

func init() {
	configListCmd.Flags().BoolVar(&configShowSecrets, "show-secrets", false, "print secrets in full")
	configGetCmd.Flags().BoolVar(&configShowSecrets, "show-secrets", false, "print secrets in full")
	configValidateCmd.Flags().BoolVar(&configPing, "ping", false, "also contact the configured providers")

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configWizardCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingsService.Effective()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// Keys are grouped by their prefix, in the service's order.
	section := ""
	for _, key := range settingsService.Keys() {
		group, _, _ := strings.Cut(key, ".")
		if group != section {
			if section != "" {
				cmd.Println()
			}
			cmd.Printf("[%s]\n", group)
			section = group
		}
		cmd.Printf("  %s = %s\n", key, displayValue(key, values[key]))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingsService.Effective()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	value, ok := values[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, args[0])
	}
	cmd.Println(displayValue(args[0], value))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case settingsService.IsSecret(key):
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
		if value == "" {
			return errors.New("no value entered")
		}
	default:
		return fmt.Errorf("%w: %s needs a value (use 'config unset' to restore the default)", domain.ErrInvalidInput, key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s = %s\n", key, displayValue(key, value))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], ""); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("%s restored to default\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configPath == "" {
		return errors.New("config path not configured")
	}
	cmd.Println(configPath)
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return err
	}

	if configPing {
		ctx := commandContext(cmd)
		cmd.Print("Embedding provider... ")
		if err := settingsService.ValidateEmbeddingConfig(ctx); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")

		cmd.Print("LLM provider... ")
		if err := settingsService.ValidateLLMConfig(ctx); err != nil {
			cmd.Println("FAILED")
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Println("Settings are valid.")
	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("ragapp Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	if err := configureProvider(cmd, reader, "embedding", domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels()); err != nil {
		return err
	}

	cmd.Println("Step 2: LLM Provider")
	cmd.Println("--------------------")
	if err := configureProvider(cmd, reader, "llm", domain.AllLLMProviders(), domain.DefaultLLMModels()); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

// configureProvider prompts for one provider section and stores it under
// prefix ("embedding" or "llm").
func configureProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	prefix string,
	providers []domain.AIProvider,
	defaultModels map[domain.AIProvider]string,
) error {
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := providers[parseChoice(readLine(reader), len(providers), 1)-1]

	defaultModel := defaultModels[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	values := []struct{ key, value string }{
		{prefix + ".provider", selected.String()},
		{prefix + ".model", model},
	}

	if selected.RequiresBaseURL() || selected.IsLocal() {
		cmd.Print("Enter base URL (blank for default): ")
		if baseURL := readLine(reader); baseURL != "" {
			values = append(values, struct{ key, value string }{prefix + ".base_url", baseURL})
		}
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use the environment): ")
		if apiKey := readPasswordFrom(reader); apiKey != "" {
			values = append(values, struct{ key, value string }{prefix + ".api_key", apiKey})
		}
		cmd.Println()
	}

	for _, kv := range values {
		if err := settingsService.Set(kv.key, kv.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", kv.key, err)
		}
	}

	cmd.Printf("%s provider configured: %s (%s)\n\n", prefix, selected.Description(), model)
	return nil
}

// displayValue masks secrets unless --show-secrets is set.
func displayValue(key, value string) string {
	if value == "" {
		return "(not set)"
	}
	if settingsService != nil && settingsService.IsSecret(key) && !configShowSecrets {
		return maskAPIKey(value)
	}
	return value
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is the terminal, and a
// plain line otherwise.
func readPassword(in io.Reader) string {
	return readPasswordFrom(bufio.NewReader(in))
}

func readPasswordFrom(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) && reader.Buffered() == 0 {
		if password, err := term.ReadPassword(int(os.Stdin.Fd())); err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
