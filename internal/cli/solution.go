package cli

import (
	"fmt"

	"codepulse/internal/common"
	"codepulse/internal/types"

	"github.com/spf13/cobra"
)

var solutionCmd = &cobra.Command{
	Use:   "solution [problem-file]",
	Short: "Generate a worked solution guide for a machine coding problem",
	Long: `Generate a worked solution guide for a machine coding problem. The
command takes one argument: the path to a plain text file containing the
problem statement. The --role flag sets the job role the solution should
be pitched at.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if solutionConfig.OutputFormat == "" {
			solutionConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(solutionConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runSolution,
}

var (
	solutionConfig common.CommandConfig
	solutionRole   string
	solutionTitle  string
)

func init() {
	solutionCmd.Flags().StringVarP(&solutionConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	solutionCmd.Flags().StringVar(&solutionConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	solutionCmd.Flags().StringVar(&solutionRole, "role", "", "Job role the solution targets (required)")
	solutionCmd.Flags().StringVar(&solutionTitle, "title", "", "Optional problem title")
	_ = solutionCmd.MarkFlagRequired("role")

	registerFormatCompletion(solutionCmd)
}

func runSolution(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	service, err := buildPrepService(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	createInput := func(contents []string) (types.SolutionInput, error) {
		if len(contents) != 1 {
			return types.SolutionInput{}, fmt.Errorf("expected 1 file path, got %d", len(contents))
		}
		return types.SolutionInput{
			JobRole:          solutionRole,
			Title:            solutionTitle,
			ProblemStatement: contents[0],
		}, nil
	}

	logDetails := func(input types.SolutionInput, cfg common.CommandConfig) {
		logger.Info("Starting solution guide generation",
			"job_role", input.JobRole,
			"title", input.Title,
			"problem_chars", len(input.ProblemStatement),
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		solutionConfig,
		args,
		createInput,
		service.GenerateMachineCodingSolution,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate solution guide: %w", err)
	}
	logger.Info("Solution guide generation completed successfully")
	return nil
}
