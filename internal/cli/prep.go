package cli

import (
	"fmt"

	"codepulse/internal/common"
	"codepulse/internal/types"

	"github.com/spf13/cobra"
)

var prepCmd = &cobra.Command{
	Use:   "prep [job-role]",
	Short: "Generate a full interview preparation kit for a job role",
	Long: `Generate a complete interview preparation kit for the given job role:
general interview questions, role-specific questions, practice coding
challenges, and a machine coding round. Optionally pass a job description
file to anchor the questions to a specific posting.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if prepConfig.OutputFormat == "" {
			prepConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(prepConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runPrep,
}

var (
	prepConfig             common.CommandConfig
	prepJobDescriptionFile string
)

func init() {
	prepCmd.Flags().StringVarP(&prepConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	prepCmd.Flags().StringVar(&prepConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	prepCmd.Flags().StringVar(&prepJobDescriptionFile, "job-description-file", "", "Optional job description file to target the kit")

	registerFormatCompletion(prepCmd)
}

func runPrep(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())
	jobRole := args[0]

	service, err := buildPrepService(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	var files []string
	if prepJobDescriptionFile != "" {
		files = append(files, prepJobDescriptionFile)
	}

	createInput := func(contents []string) (types.PrepKitInput, error) {
		input := types.PrepKitInput{JobRole: jobRole}
		if len(contents) > 0 {
			input.JobDescription = contents[0]
		}
		return input, nil
	}

	logDetails := func(input types.PrepKitInput, cfg common.CommandConfig) {
		logger.Info("Starting prep kit generation",
			"job_role", input.JobRole,
			"has_job_description", input.JobDescription != "",
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		prepConfig,
		files,
		createInput,
		service.GenerateFullPrepKit,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to generate prep kit: %w", err)
	}
	logger.Info("Prep kit generation completed successfully")
	return nil
}
