package cli

import (
	"fmt"

	"codepulse/internal/common"
	"codepulse/internal/types"

	"github.com/spf13/cobra"
)

var randomCmd = &cobra.Command{
	Use:   "random [job-role]",
	Short: "Generate a randomized practice set for a job role",
	Long: `Generate a randomized practice set for the given job role: a fresh mix
of role questions, system design prompts, coding challenges, and a machine
coding round. Every run samples new generation parameters, so repeated runs
for the same role produce different material.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if randomConfig.OutputFormat == "" {
			randomConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(randomConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRandom,
}

var (
	randomConfig     common.CommandConfig
	randomDifficulty string
)

func init() {
	randomCmd.Flags().StringVarP(&randomConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	randomCmd.Flags().StringVar(&randomConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	randomCmd.Flags().StringVar(&randomDifficulty, "difficulty", "", "Difficulty level: easy, medium, or hard (default: varied)")

	registerFormatCompletion(randomCmd)
	_ = randomCmd.RegisterFlagCompletionFunc("difficulty", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"easy", "medium", "hard"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRandom(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	jobRole := args[0]

	service, err := buildPrepService(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	createInput := func(contents []string) (types.RandomizedPrepInput, error) {
		return types.RandomizedPrepInput{
			JobRole:    jobRole,
			Difficulty: randomDifficulty,
		}, nil
	}

	logDetails := func(input types.RandomizedPrepInput, cfg common.CommandConfig) {
		logger.Info("Starting randomized prep set generation",
			"job_role", input.JobRole,
			"difficulty", input.Difficulty,
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		randomConfig,
		nil,
		createInput,
		service.GenerateRandomizedPrepSet,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate randomized prep set: %w", err)
	}
	logger.Info("Randomized prep set generation completed successfully")
	return nil
}
