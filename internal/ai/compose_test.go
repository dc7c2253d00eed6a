package ai

import (
	"strings"
	"testing"

	"codepulse/internal/config"
	"codepulse/internal/types"
)

func newTestComposer(seed int64) *Composer {
	return NewComposer(NewSamplingPolicy(samplingRanges(seed)), config.PromptConfig{})
}

func TestComposedPromptCarriesPersonaAndToken(t *testing.T) {
	c := newTestComposer(42)
	prompt := c.GeneralQuestions(PromptInputs{JobRole: "Backend Engineer", Category: types.RoleCategoryTech})

	foundPersona := false
	for _, persona := range personaPreambles {
		if strings.HasPrefix(prompt, persona) {
			foundPersona = true
			break
		}
	}
	if !foundPersona {
		t.Error("Prompt should start with one of the persona preambles")
	}

	if !strings.Contains(prompt, "Session token: ") {
		t.Error("Prompt should carry a session token")
	}

	if !strings.Contains(prompt, "Backend Engineer") {
		t.Error("Prompt should mention the job role")
	}
}

func TestComposedPromptsDifferAcrossCalls(t *testing.T) {
	c := newTestComposer(42)
	in := PromptInputs{JobRole: "Backend Engineer", Category: types.RoleCategoryTech}

	if c.GeneralQuestions(in) == c.GeneralQuestions(in) {
		t.Error("Two composed prompts for identical inputs should differ (token, persona)")
	}
}

func TestSeededComposersReproduce(t *testing.T) {
	a := newTestComposer(7)
	b := newTestComposer(7)
	in := PromptInputs{JobRole: "Data Engineer", Category: types.RoleCategoryTech}

	if a.Challenges(in) != b.Challenges(in) {
		t.Error("Same seed should produce identical prompts")
	}
}

func TestContextBlocksOnlyWhenPresent(t *testing.T) {
	c := newTestComposer(1)

	bare := c.GeneralQuestions(PromptInputs{JobRole: "SRE", Category: types.RoleCategoryTech})
	if strings.Contains(bare, "**Job Description:**") {
		t.Error("Empty job description must not produce a context block")
	}
	if strings.Contains(bare, "**Resume:**") {
		t.Error("Empty resume must not produce a context block")
	}

	withJD := c.GeneralQuestions(PromptInputs{
		JobRole:        "SRE",
		Category:       types.RoleCategoryTech,
		JobDescription: "On-call rotation, Kubernetes, Terraform.",
	})
	if !strings.Contains(withJD, "**Job Description:**") {
		t.Error("Provided job description should appear as a context block")
	}
	if !strings.Contains(withJD, "Kubernetes") {
		t.Error("Job description content should be embedded")
	}
}

func TestRoleForkChangesWording(t *testing.T) {
	c := newTestComposer(2)

	tech := c.Challenges(PromptInputs{JobRole: "Go Developer", Category: types.RoleCategoryTech})
	if !strings.Contains(tech, "programming tasks") {
		t.Error("Tech track challenges should demand programming tasks")
	}

	content := c.Challenges(PromptInputs{JobRole: "Content Writer", Category: types.RoleCategoryContent})
	if !strings.Contains(content, "content track") {
		t.Error("Content track challenges should name the content track")
	}
	if strings.Contains(content, "programming tasks that involve writing real code") {
		t.Error("Content track challenges must not demand code")
	}

	machineTech := c.MachineCoding(PromptInputs{JobRole: "Go Developer", Category: types.RoleCategoryTech})
	if !strings.Contains(machineTech, "machine coding session") {
		t.Error("Tech machine round should be framed as machine coding")
	}

	machineContent := c.MachineCoding(PromptInputs{JobRole: "Editor", Category: types.RoleCategoryContent})
	if !strings.Contains(machineContent, "production brief") {
		t.Error("Content machine round should be framed as a production brief")
	}
}

func TestDifficultyDefaultsToVaried(t *testing.T) {
	c := newTestComposer(3)

	prompt := c.Challenges(PromptInputs{JobRole: "Backend Engineer", Category: types.RoleCategoryTech})
	if !strings.Contains(prompt, "varied difficulty") {
		t.Error("Blank difficulty should default to 'varied'")
	}

	hard := c.Challenges(PromptInputs{JobRole: "Backend Engineer", Category: types.RoleCategoryTech, Difficulty: "Hard"})
	if !strings.Contains(hard, "hard difficulty") {
		t.Error("Difficulty should be lowercased into the prompt")
	}
}

func TestConfigOverrideBeatsDefault(t *testing.T) {
	overrides := config.PromptConfig{}
	overrides.SystemPrompts.Resume = "Custom resume reviewer instructions."
	c := NewComposer(NewSamplingPolicy(samplingRanges(4)), overrides)

	if got := c.SystemPrompt(OpResume); got != "Custom resume reviewer instructions." {
		t.Errorf("Config override should win, got %q", got)
	}
	if got := c.SystemPrompt(OpChat); got != DefaultSystemPrompts.Chat {
		t.Error("Untouched operations should keep defaults")
	}
}

func TestInsightsPromptMentionsCompanyAndCitations(t *testing.T) {
	c := newTestComposer(5)
	prompt := c.Insights(PromptInputs{JobRole: "Platform Engineer", Company: "Acme Corp"})

	if !strings.Contains(prompt, "Acme Corp") {
		t.Error("Insights prompt should name the company")
	}
	if !strings.Contains(prompt, "cite") && !strings.Contains(prompt, "sources") {
		t.Error("Insights prompt should ask for cited sources")
	}
}

func TestChatSystemPromptCarriesRoleFork(t *testing.T) {
	c := newTestComposer(6)

	tech := c.ChatSystemPrompt("Backend Engineer", types.RoleCategoryTech)
	if !strings.Contains(tech, "Backend Engineer") {
		t.Error("Chat system prompt should name the role")
	}

	content := c.ChatSystemPrompt("Copy Editor", types.RoleCategoryContent)
	if !strings.Contains(content, "content track") {
		t.Error("Content chat prompt should name the content track")
	}
}
