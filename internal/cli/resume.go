package cli

import (
	"fmt"

	"codepulse/internal/common"
	"codepulse/internal/types"

	"github.com/spf13/cobra"
)

var resumeCmd = &cobra.Command{
	Use:   "resume [resume-file]",
	Short: "Analyze a resume against a target job role",
	Long: `Analyze a resume against a target job role using AI. The command takes
one argument: the path to your resume file in plain text format. The --role
flag sets the role to score against; pass a job description file to match
keywords against a specific posting.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if resumeConfig.OutputFormat == "" {
			resumeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(resumeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runResume,
}

var (
	resumeConfig             common.CommandConfig
	resumeRole               string
	resumeJobDescriptionFile string
)

func init() {
	resumeCmd.Flags().StringVarP(&resumeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	resumeCmd.Flags().StringVar(&resumeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	resumeCmd.Flags().StringVar(&resumeRole, "role", "", "Job role to score the resume against (required)")
	resumeCmd.Flags().StringVar(&resumeJobDescriptionFile, "job-description-file", "", "Optional job description file for keyword matching")
	_ = resumeCmd.MarkFlagRequired("role")

	registerFormatCompletion(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	logger := getLoggerFromContext(cmd.Context())

	service, err := buildPrepService(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	files := []string{args[0]}
	if resumeJobDescriptionFile != "" {
		files = append(files, resumeJobDescriptionFile)
	}

	createInput := func(contents []string) (types.ResumeAnalysisInput, error) {
		if len(contents) == 0 {
			return types.ResumeAnalysisInput{}, fmt.Errorf("expected at least 1 file path, got %d", len(contents))
		}
		input := types.ResumeAnalysisInput{
			JobRole:    resumeRole,
			ResumeText: contents[0],
		}
		if len(contents) > 1 {
			input.JobDescription = contents[1]
		}
		return input, nil
	}

	logDetails := func(input types.ResumeAnalysisInput, cfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"job_role", input.JobRole,
			"resume_chars", len(input.ResumeText),
			"has_job_description", input.JobDescription != "",
			"output_format", cfg.OutputFormat)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		resumeConfig,
		files,
		createInput,
		service.AnalyzeResume,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
