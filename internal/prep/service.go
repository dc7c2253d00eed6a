package prep

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"codepulse/internal/ai"
	"codepulse/internal/chat"
	"codepulse/internal/config"
	"codepulse/internal/errors"
	"codepulse/internal/types"
)

// Service orchestrates the interview preparation operations. Composite
// generations run their sub-calls strictly sequentially with a pause
// between them, and fail atomically: one failed sub-call discards all
// partial results. Generation failures cross this boundary classified;
// raw provider text never escapes to callers.
type Service struct {
	prepKit    ai.Provider
	randomized ai.Provider
	solution   ai.Provider
	insights   ai.Provider
	resume     ai.Provider
	chat       ai.Provider

	composer       *ai.Composer
	interCallDelay time.Duration
	chatTTL        time.Duration
	logger         *errors.Logger

	// sleep is swappable so tests do not wait out real pauses
	sleep func(ctx context.Context, d time.Duration) error
}

// NewService wires providers for every operation on top of one shared
// sampling policy, so all randomness flows from a single seedable stream.
func NewService(cfg *config.Config, logger *errors.Logger) (*Service, error) {
	sampling := ai.NewSamplingPolicy(cfg.AI.Sampling)

	type binding struct {
		op     string
		opCfg  config.OperationAIConfig
		target *ai.Provider
	}

	s := &Service{
		composer:       ai.NewComposer(sampling, cfg.AI.CustomPrompts),
		interCallDelay: cfg.Orchestrator.InterCallDelay,
		chatTTL:        cfg.Server.ChatSessionTTL,
		logger:         logger,
		sleep:          sleepWithContext,
	}

	bindings := []binding{
		{ai.OpPrepKit, cfg.GetPrepKitConfig(), &s.prepKit},
		{ai.OpRandomized, cfg.GetRandomizedConfig(), &s.randomized},
		{ai.OpSolution, cfg.GetSolutionConfig(), &s.solution},
		{ai.OpInsights, cfg.GetInsightsConfig(), &s.insights},
		{ai.OpResume, cfg.GetResumeConfig(), &s.resume},
		{ai.OpChat, cfg.GetChatConfig(), &s.chat},
	}

	for _, b := range bindings {
		opCfg := b.opCfg
		svc, err := ai.NewService(&opCfg, b.op, sampling, logger)
		if err != nil {
			return nil, err
		}
		*b.target = svc.Provider
	}

	return s, nil
}

// GenerateFullPrepKit builds the complete preparation bundle for a role:
// general questions, role questions, practice challenges, and a machine
// coding round, generated in that order.
func (s *Service) GenerateFullPrepKit(ctx context.Context, input types.PrepKitInput) (*types.PrepKit, error) {
	jobRole, err := requireJobRole(input.JobRole)
	if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "prep.full_kit", jobRole)
	defer span.End()

	category := types.ClassifyRole(jobRole)
	in := ai.PromptInputs{
		JobRole:        jobRole,
		Category:       category,
		JobDescription: input.JobDescription,
	}
	system := s.composer.SystemPrompt(ai.OpPrepKit)

	kit := &types.PrepKit{
		JobRole:      jobRole,
		RoleCategory: category,
	}

	steps := []generationStep{
		{"general_questions", ai.TaskGeneralQuestions, s.composer.GeneralQuestions(in), &kit.GeneralQuestions},
		{"role_questions", ai.TaskGeneralQuestions, s.composer.RoleQuestions(in), &kit.RoleQuestions},
		{"challenges", ai.TaskCodingChallenges, s.composer.Challenges(in), &kit.Challenges},
		{"machine_coding", ai.TaskMachineCoding, s.composer.MachineCoding(in), &kit.MachineCoding},
	}

	if err := s.runSequence(ctx, s.prepKit, ai.OpPrepKit, system, steps); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prep kit generation failed")
		return nil, errors.Classify(err)
	}

	s.logger.Info("Prep kit generated",
		"job_role", jobRole,
		"role_category", string(category),
		"general_questions", len(kit.GeneralQuestions),
		"role_questions", len(kit.RoleQuestions),
		"challenges", len(kit.Challenges))

	return kit, nil
}

// GenerateRandomizedPrepSet assembles a difficulty-tagged practice set from
// exactly four sequential generation rounds.
func (s *Service) GenerateRandomizedPrepSet(ctx context.Context, input types.RandomizedPrepInput) (*types.RandomizedPrepSet, error) {
	jobRole, err := requireJobRole(input.JobRole)
	if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "prep.randomized_set", jobRole)
	defer span.End()

	category := types.ClassifyRole(jobRole)
	in := ai.PromptInputs{
		JobRole:    jobRole,
		Category:   category,
		Difficulty: input.Difficulty,
	}
	system := s.composer.SystemPrompt(ai.OpRandomized)

	difficulty := strings.ToLower(strings.TrimSpace(input.Difficulty))
	if difficulty == "" {
		difficulty = "varied"
	}

	set := &types.RandomizedPrepSet{
		JobRole:      jobRole,
		RoleCategory: category,
		Difficulty:   difficulty,
	}

	steps := []generationStep{
		{"questions", ai.TaskGeneralQuestions, s.composer.RoleQuestions(in), &set.Questions},
		{"system_design", ai.TaskSystemDesign, s.composer.SystemDesign(in), &set.SystemDesign},
		{"challenges", ai.TaskCodingChallenges, s.composer.Challenges(in), &set.Challenges},
		{"machine_coding", ai.TaskMachineCoding, s.composer.MachineCoding(in), &set.MachineCoding},
	}

	if err := s.runSequence(ctx, s.randomized, ai.OpRandomized, system, steps); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "randomized set generation failed")
		return nil, errors.Classify(err)
	}

	s.logger.Info("Randomized prep set generated",
		"job_role", jobRole,
		"difficulty", difficulty,
		"questions", len(set.Questions),
		"system_design", len(set.SystemDesign),
		"challenges", len(set.Challenges))

	return set, nil
}

// GenerateMachineCodingSolution produces a worked solution guide for a
// machine coding problem.
func (s *Service) GenerateMachineCodingSolution(ctx context.Context, input types.SolutionInput) (*types.SolutionGuide, error) {
	jobRole, err := requireJobRole(input.JobRole)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ProblemStatement) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeMissingInput,
			"Problem statement is required for a solution guide", nil)
	}

	ctx, span := s.startSpan(ctx, "prep.solution_guide", jobRole)
	defer span.End()

	in := ai.PromptInputs{
		JobRole:          jobRole,
		Category:         types.ClassifyRole(jobRole),
		Title:            input.Title,
		ProblemStatement: input.ProblemStatement,
	}

	var guide types.SolutionGuide
	step := generationStep{"solution_guide", ai.TaskSolutionGuide, s.composer.SolutionGuide(in), &guide}
	if err := s.runSequence(ctx, s.solution, ai.OpSolution, s.composer.SystemPrompt(ai.OpSolution), []generationStep{step}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "solution guide generation failed")
		return nil, errors.Classify(err)
	}

	return &guide, nil
}

// GenerateCompanyInsights runs a search-grounded research call and returns
// prose with its cited sources. Sources without a URI are dropped.
func (s *Service) GenerateCompanyInsights(ctx context.Context, input types.InsightsInput) (*types.CompanyInsights, error) {
	jobRole, err := requireJobRole(input.JobRole)
	if err != nil {
		return nil, err
	}
	company := strings.TrimSpace(input.Company)
	if company == "" {
		return nil, errors.NewValidationError(errors.ErrCodeMissingInput,
			"Company name is required for insights", nil)
	}

	ctx, span := s.startSpan(ctx, "prep.company_insights", jobRole)
	defer span.End()
	span.SetAttributes(attribute.String("prep.company", company))

	in := ai.PromptInputs{
		JobRole:  jobRole,
		Category: types.ClassifyRole(jobRole),
		Company:  company,
	}

	task := &ai.GroundedTask{
		Operation: ai.OpInsights,
		Prompt:    s.composer.Insights(in),
		System:    s.composer.SystemPrompt(ai.OpInsights),
	}

	content, sources, _, err := s.insights.GenerateGrounded(ctx, task)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insights generation failed")
		return nil, errors.Classify(err)
	}

	s.logger.Info("Company insights generated",
		"company", company,
		"job_role", jobRole,
		"sources", len(sources))

	return &types.CompanyInsights{
		Company: company,
		Content: content,
		Sources: sources,
	}, nil
}

// AnalyzeResume scores a resume against a target role.
func (s *Service) AnalyzeResume(ctx context.Context, input types.ResumeAnalysisInput) (*types.ResumeAnalysis, error) {
	jobRole, err := requireJobRole(input.JobRole)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.ResumeText) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeMissingInput,
			"Resume text is required for analysis", nil)
	}

	ctx, span := s.startSpan(ctx, "prep.resume_analysis", jobRole)
	defer span.End()

	in := ai.PromptInputs{
		JobRole:        jobRole,
		Category:       types.ClassifyRole(jobRole),
		ResumeText:     input.ResumeText,
		JobDescription: input.JobDescription,
	}

	var analysis types.ResumeAnalysis
	step := generationStep{"resume_analysis", ai.TaskResumeAnalysis, s.composer.ResumeAnalysis(in), &analysis}
	if err := s.runSequence(ctx, s.resume, ai.OpResume, s.composer.SystemPrompt(ai.OpResume), []generationStep{step}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resume analysis failed")
		return nil, errors.Classify(err)
	}

	return &analysis, nil
}

// NewChatSession opens a streaming interview coaching session for a role.
// The session starts uninitialized; callers run Start to stream the
// interviewer's kickoff turn.
func (s *Service) NewChatSession(ctx context.Context, jobRole string) (*chat.Session, error) {
	role, err := requireJobRole(jobRole)
	if err != nil {
		return nil, err
	}

	category := types.ClassifyRole(role)
	system := s.composer.ChatSystemPrompt(role, category)

	streamer, err := s.chat.OpenChat(ctx, system)
	if err != nil {
		return nil, errors.Classify(err)
	}

	session := chat.NewSession(role, streamer, s.logger)
	s.logger.Info("Chat session created",
		"session_id", session.ID(),
		"job_role", role,
		"role_category", string(category))
	return session, nil
}

// GetModelInfo reports the configured model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ai.ModelInfo {
	return s.prepKit.GetModelInfo(ctx)
}

// Close releases all underlying providers
func (s *Service) Close() error {
	var firstErr error
	for _, p := range []ai.Provider{s.prepKit, s.randomized, s.solution, s.insights, s.resume, s.chat} {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// generationStep is one structured sub-call of a composite generation
type generationStep struct {
	name   string
	kind   ai.TaskKind
	prompt string
	target any
}

// runSequence executes steps strictly in order, pausing between them.
// The first failure aborts the whole sequence; callers discard partials.
func (s *Service) runSequence(ctx context.Context, provider ai.Provider, operation, system string, steps []generationStep) error {
	for i, step := range steps {
		if i > 0 && s.interCallDelay > 0 {
			if err := s.sleep(ctx, s.interCallDelay); err != nil {
				return err
			}
		}

		task := &ai.GenerationTask{
			Operation: operation,
			Kind:      step.kind,
			Prompt:    step.prompt,
			System:    system,
		}

		raw, _, err := provider.GenerateStructured(ctx, task)
		if err != nil {
			s.logger.Warn("Sub-call failed, discarding partial results",
				"operation", operation,
				"step", step.name,
				"step_index", i)
			return err
		}

		if err := json.Unmarshal(raw, step.target); err != nil {
			return errors.NewAIError(errors.ErrCodeSchemaViolation,
				"Generated document does not match the expected shape", err).
				WithContext("step", step.name)
		}
	}
	return nil
}

func requireJobRole(jobRole string) (string, error) {
	trimmed := strings.TrimSpace(jobRole)
	if trimmed == "" {
		return "", errors.NewValidationError(errors.ErrCodeMissingInput,
			"Job role is required", nil)
	}
	return trimmed, nil
}

func (s *Service) startSpan(ctx context.Context, name, jobRole string) (context.Context, trace.Span) {
	tracer := otel.Tracer("codepulse.prep")
	ctx, span := tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("prep.job_role", jobRole))
	return ctx, span
}

// sleepWithContext waits for d or until the context is done
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
