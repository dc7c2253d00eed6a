package cli

import (
	"context"
	"fmt"

	"codepulse/internal/common"
	"codepulse/internal/config"
	"codepulse/internal/errors"
	"codepulse/internal/prep"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "codepulse",
	Short: "AI-powered interview preparation from the command line",
	Long: `CodePulse generates interview preparation material for a target job role
using AI: question banks with model answers, practice challenges, machine
coding rounds with worked solutions, grounded company research, resume
analysis, and a live mock interview chat.`,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// buildPrepService constructs the orchestrator shared by the generation
// commands. The AI client itself stays lazy; a missing credential only
// surfaces once a generation call is made.
func buildPrepService(cmd *cobra.Command) (*prep.Service, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	service, err := prep.NewService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create prep service: %w", err)
	}
	return service, nil
}

// registerFormatCompletion wires shell completion for a --format flag
func registerFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func init() {
	rootCmd.AddCommand(prepCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(solutionCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
