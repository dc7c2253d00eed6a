package prep

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"iter"
	"strings"
	"testing"
	"time"

	"codepulse/internal/ai"
	"codepulse/internal/chat"
	"codepulse/internal/config"
	"codepulse/internal/errors"
	"codepulse/internal/types"
)

// fakeProvider returns canned documents per task kind and records calls
type fakeProvider struct {
	structuredCalls []ai.TaskKind
	groundedCalls   []string
	chatSystems     []string
	failOnCall      int // 1-based index of the structured call that fails; 0 means never
	failGrounded    bool
}

var cannedDocs = map[ai.TaskKind]string{
	ai.TaskGeneralQuestions: `[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`,
	ai.TaskSystemDesign:     `[{"question":"Design a queue","answer":"Partition it"}]`,
	ai.TaskCodingChallenges: `[{"title":"Rate limiter","description":"Build one","difficulty":"medium","approach":"Token bucket"}]`,
	ai.TaskMachineCoding:    `{"title":"LRU cache","problemStatement":"Implement it","requirements":["O(1) ops"],"hints":["linked list"]}`,
	ai.TaskResumeAnalysis:   `{"overallScore":82,"summary":"Solid","strengths":["Go"],"gaps":["K8s"],"keywordMatches":["api"],"missingKeywords":["grpc"],"suggestions":["quantify impact"]}`,
	ai.TaskSolutionGuide:    `{"title":"LRU cache","approach":"Map plus list","steps":["step"],"solution":"code","complexity":"O(1)","pitfalls":["eviction order"]}`,
}

func (f *fakeProvider) GenerateStructured(ctx context.Context, task *ai.GenerationTask) (json.RawMessage, *ai.TokenUsage, error) {
	f.structuredCalls = append(f.structuredCalls, task.Kind)
	if f.failOnCall > 0 && len(f.structuredCalls) == f.failOnCall {
		return nil, nil, stderrors.New("quota exceeded")
	}
	return json.RawMessage(cannedDocs[task.Kind]), &ai.TokenUsage{}, nil
}

func (f *fakeProvider) GenerateGrounded(ctx context.Context, task *ai.GroundedTask) (string, []types.CitationSource, *ai.TokenUsage, error) {
	f.groundedCalls = append(f.groundedCalls, task.Prompt)
	if f.failGrounded {
		return "", nil, nil, stderrors.New("503 backend overloaded")
	}
	sources := []types.CitationSource{{URI: "https://example.com/eng-blog", Title: "Engineering blog"}}
	return "Research findings.", sources, &ai.TokenUsage{}, nil
}

func (f *fakeProvider) OpenChat(ctx context.Context, systemPrompt string) (ai.ChatStreamer, error) {
	f.chatSystems = append(f.chatSystems, systemPrompt)
	return nopStreamer{}, nil
}

func (f *fakeProvider) GetModelInfo(ctx context.Context) *ai.ModelInfo { return &ai.ModelInfo{} }
func (f *fakeProvider) Close() error                                  { return nil }

type nopStreamer struct{}

func (nopStreamer) Stream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) { yield("ok", nil) }
}

type recordedSleep struct {
	delays []time.Duration
}

func (r *recordedSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestService(provider *fakeProvider) (*Service, *recordedSleep) {
	logger, _ := errors.New("error")
	sampling := ai.NewSamplingPolicy(config.SamplingConfig{
		TemperatureMin: 0.65, TemperatureMax: 1.05,
		TopPMin: 0.80, TopPMax: 0.98,
		TopKMin: 20, TopKMax: 40,
		Seed: 42,
	})
	sleeper := &recordedSleep{}
	return &Service{
		prepKit:        provider,
		randomized:     provider,
		solution:       provider,
		insights:       provider,
		resume:         provider,
		chat:           provider,
		composer:       ai.NewComposer(sampling, config.PromptConfig{}),
		interCallDelay: 1500 * time.Millisecond,
		logger:         logger,
		sleep:          sleeper.sleep,
	}, sleeper
}

func assertMissingInput(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected a validation error")
	}
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeMissingInput {
		t.Fatalf("Expected MISSING_INPUT, got %v", err)
	}
}

func TestGenerateFullPrepKitRunsFourSequentialCalls(t *testing.T) {
	provider := &fakeProvider{}
	svc, sleeper := newTestService(provider)

	kit, err := svc.GenerateFullPrepKit(context.Background(), types.PrepKitInput{JobRole: "Backend Engineer"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantKinds := []ai.TaskKind{
		ai.TaskGeneralQuestions,
		ai.TaskGeneralQuestions,
		ai.TaskCodingChallenges,
		ai.TaskMachineCoding,
	}
	if len(provider.structuredCalls) != len(wantKinds) {
		t.Fatalf("Expected %d sub-calls, got %d", len(wantKinds), len(provider.structuredCalls))
	}
	for i, want := range wantKinds {
		if provider.structuredCalls[i] != want {
			t.Errorf("Call %d: expected kind %s, got %s", i, want, provider.structuredCalls[i])
		}
	}

	// A pause between every adjacent pair of sub-calls, none after the last
	if len(sleeper.delays) != 3 {
		t.Errorf("Expected 3 inter-call pauses, got %d", len(sleeper.delays))
	}
	for _, d := range sleeper.delays {
		if d != 1500*time.Millisecond {
			t.Errorf("Expected 1.5s pause, got %v", d)
		}
	}

	if kit.JobRole != "Backend Engineer" {
		t.Errorf("Unexpected job role %q", kit.JobRole)
	}
	if kit.RoleCategory != types.RoleCategoryTech {
		t.Errorf("Expected tech category, got %s", kit.RoleCategory)
	}
	if len(kit.GeneralQuestions) != 2 || len(kit.RoleQuestions) != 2 {
		t.Error("Question lists not populated")
	}
	if len(kit.Challenges) != 1 || kit.MachineCoding.Title == "" {
		t.Error("Challenge rounds not populated")
	}
}

func TestGenerateFullPrepKitBlankRoleFailsBeforeNetwork(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.GenerateFullPrepKit(context.Background(), types.PrepKitInput{JobRole: "  "})
	assertMissingInput(t, err)
	if len(provider.structuredCalls) != 0 {
		t.Error("Validation must happen before any model call")
	}
}

func TestGenerateFullPrepKitFailsAtomically(t *testing.T) {
	provider := &fakeProvider{failOnCall: 3}
	svc, sleeper := newTestService(provider)

	kit, err := svc.GenerateFullPrepKit(context.Background(), types.PrepKitInput{JobRole: "Backend Engineer"})
	if err == nil {
		t.Fatal("Expected failure from the third sub-call")
	}
	if kit != nil {
		t.Error("Partial results must be discarded on failure")
	}
	if len(provider.structuredCalls) != 3 {
		t.Errorf("Sequence must stop at the failing call, got %d calls", len(provider.structuredCalls))
	}
	if len(sleeper.delays) != 2 {
		t.Errorf("Expected pauses only before completed calls, got %d", len(sleeper.delays))
	}
}

func TestFailedSubCallPropagatesClassifiedError(t *testing.T) {
	provider := &fakeProvider{failOnCall: 2}
	svc, _ := newTestService(provider)

	_, err := svc.GenerateFullPrepKit(context.Background(), types.PrepKitInput{JobRole: "Backend Engineer"})
	if err == nil {
		t.Fatal("Expected failure from the second sub-call")
	}

	var userErr *errors.UserError
	if !stderrors.As(err, &userErr) {
		t.Fatalf("Expected a classified UserError, got raw: %v", err)
	}
	if userErr.Category != errors.CategoryQuotaExceeded {
		t.Errorf("Expected quota-exceeded category, got %s", userErr.Category)
	}
	if err.Error() == "quota exceeded" {
		t.Error("Raw provider text must not surface as the error message")
	}
	if userErr.Cause == nil {
		t.Error("Classified error should keep the original cause for logs")
	}
}

func TestGroundedFailurePropagatesClassifiedError(t *testing.T) {
	provider := &fakeProvider{failGrounded: true}
	svc, _ := newTestService(provider)

	_, err := svc.GenerateCompanyInsights(context.Background(), types.InsightsInput{
		Company: "Acme Corp", JobRole: "SRE",
	})
	if err == nil {
		t.Fatal("Expected grounded call failure")
	}

	var userErr *errors.UserError
	if !stderrors.As(err, &userErr) {
		t.Fatalf("Expected a classified UserError, got raw: %v", err)
	}
	if userErr.Category != errors.CategoryServiceUnavailable {
		t.Errorf("Expected service-unavailable category, got %s", userErr.Category)
	}
}

func TestGenerateRandomizedPrepSetMakesExactlyFourCalls(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	set, err := svc.GenerateRandomizedPrepSet(context.Background(), types.RandomizedPrepInput{
		JobRole:    "Platform Engineer",
		Difficulty: "Hard",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantKinds := []ai.TaskKind{
		ai.TaskGeneralQuestions,
		ai.TaskSystemDesign,
		ai.TaskCodingChallenges,
		ai.TaskMachineCoding,
	}
	if len(provider.structuredCalls) != 4 {
		t.Fatalf("Expected exactly 4 sub-calls, got %d", len(provider.structuredCalls))
	}
	for i, want := range wantKinds {
		if provider.structuredCalls[i] != want {
			t.Errorf("Call %d: expected kind %s, got %s", i, want, provider.structuredCalls[i])
		}
	}

	if set.Difficulty != "hard" {
		t.Errorf("Difficulty should be normalized to lowercase, got %q", set.Difficulty)
	}
	if len(set.Questions) == 0 || len(set.SystemDesign) == 0 {
		t.Error("Question rounds not populated")
	}
}

func TestGenerateRandomizedPrepSetDefaultsDifficulty(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	set, err := svc.GenerateRandomizedPrepSet(context.Background(), types.RandomizedPrepInput{JobRole: "SRE"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if set.Difficulty != "varied" {
		t.Errorf("Blank difficulty should default to varied, got %q", set.Difficulty)
	}
}

func TestGenerateMachineCodingSolutionValidation(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.GenerateMachineCodingSolution(context.Background(), types.SolutionInput{
		Title: "LRU cache", ProblemStatement: "Implement it",
	})
	assertMissingInput(t, err)

	_, err = svc.GenerateMachineCodingSolution(context.Background(), types.SolutionInput{
		Title: "LRU cache", JobRole: "Backend Engineer",
	})
	assertMissingInput(t, err)

	if len(provider.structuredCalls) != 0 {
		t.Error("Validation must happen before any model call")
	}

	guide, err := svc.GenerateMachineCodingSolution(context.Background(), types.SolutionInput{
		Title: "LRU cache", ProblemStatement: "Implement it", JobRole: "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if guide.Title == "" || guide.Solution == "" {
		t.Error("Solution guide not populated")
	}
}

func TestGenerateCompanyInsights(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.GenerateCompanyInsights(context.Background(), types.InsightsInput{JobRole: "SRE"})
	assertMissingInput(t, err)

	insights, err := svc.GenerateCompanyInsights(context.Background(), types.InsightsInput{
		Company: "  Acme Corp  ", JobRole: "SRE",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if insights.Company != "Acme Corp" {
		t.Errorf("Company should be trimmed, got %q", insights.Company)
	}
	if insights.Content == "" || len(insights.Sources) != 1 {
		t.Errorf("Expected grounded content with sources, got %+v", insights)
	}
	if len(provider.groundedCalls) != 1 || !strings.Contains(provider.groundedCalls[0], "Acme Corp") {
		t.Error("Grounded prompt should carry the company name")
	}
}

func TestAnalyzeResumeValidationAndResult(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.AnalyzeResume(context.Background(), types.ResumeAnalysisInput{JobRole: "SRE"})
	assertMissingInput(t, err)

	analysis, err := svc.AnalyzeResume(context.Background(), types.ResumeAnalysisInput{
		JobRole: "SRE", ResumeText: "Ten years of infrastructure work.",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if analysis.OverallScore != 82 {
		t.Errorf("Expected score 82, got %d", analysis.OverallScore)
	}
	if len(analysis.Suggestions) == 0 {
		t.Error("Suggestions not populated")
	}
}

func TestNewChatSessionCarriesRole(t *testing.T) {
	provider := &fakeProvider{}
	svc, _ := newTestService(provider)

	_, err := svc.NewChatSession(context.Background(), "")
	assertMissingInput(t, err)

	session, err := svc.NewChatSession(context.Background(), "Content Writer")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.State() != chat.StateUninitialized {
		t.Errorf("New session should be uninitialized, got %s", session.State())
	}
	if session.JobRole() != "Content Writer" {
		t.Errorf("Unexpected job role %q", session.JobRole())
	}
	if len(provider.chatSystems) != 1 || !strings.Contains(provider.chatSystems[0], "Content Writer") {
		t.Error("Chat system prompt should name the role")
	}
}
