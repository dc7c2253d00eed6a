package cli

import (
	"fmt"

	"codepulse/internal/common"
	"codepulse/internal/types"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights [company]",
	Short: "Research a company with search-grounded AI",
	Long: `Research a company ahead of an interview using search-grounded AI.
The result is prose about the company's culture, interview process, and
recent news, together with the web sources it was grounded on.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if insightsConfig.OutputFormat == "" {
			insightsConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(insightsConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runInsights,
}

var (
	insightsConfig common.CommandConfig
	insightsRole   string
)

func init() {
	insightsCmd.Flags().StringVarP(&insightsConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	insightsCmd.Flags().StringVar(&insightsConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	insightsCmd.Flags().StringVar(&insightsRole, "role", "", "Job role the research targets (required)")
	_ = insightsCmd.MarkFlagRequired("role")

	registerFormatCompletion(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	company := args[0]

	service, err := buildPrepService(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	createInput := func(contents []string) (types.InsightsInput, error) {
		return types.InsightsInput{
			JobRole: insightsRole,
			Company: company,
		}, nil
	}

	logDetails := func(input types.InsightsInput, cfg common.CommandConfig) {
		logger.Info("Starting company research",
			"company", input.Company,
			"job_role", input.JobRole,
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		insightsConfig,
		nil,
		createInput,
		service.GenerateCompanyInsights,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate company insights: %w", err)
	}
	logger.Info("Company research completed successfully")
	return nil
}
