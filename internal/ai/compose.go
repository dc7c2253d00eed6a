package ai

import (
	"fmt"
	"strings"

	"codepulse/internal/config"
	"codepulse/internal/types"
)

// PromptInputs carries everything a composed prompt may draw on. Only
// non-empty fields end up in the context block.
type PromptInputs struct {
	JobRole          string
	Category         types.RoleCategory
	Difficulty       string
	JobDescription   string
	ResumeText       string
	Company          string
	Title            string
	ProblemStatement string
}

// Composer assembles final prompts: a randomly drawn persona preamble, a
// diversity token, the task instructions for the kind, a role-track focus,
// labelled context blocks, and a format-discipline footer. The same policy
// rng that drives sampling drives persona picks and tokens, so a seeded
// policy makes composition reproducible.
type Composer struct {
	policy    *SamplingPolicy
	overrides config.PromptConfig
}

// NewComposer builds a composer with config-level prompt overrides applied
// on top of the built-in defaults. File-based prompts take priority over
// both.
func NewComposer(policy *SamplingPolicy, overrides config.PromptConfig) *Composer {
	return &Composer{policy: policy, overrides: overrides}
}

const jsonDiscipline = `Return only the JSON described by the response schema. No markdown fences, no commentary outside the JSON.`

const citationDiscipline = `Write the briefing as plain prose with short sections. Rely on search results and cite sources.`

// GeneralQuestions composes the broadly applicable question round.
func (c *Composer) GeneralQuestions(in PromptInputs) string {
	instructions := fmt.Sprintf(c.taskTemplate(TaskGeneralQuestions), in.JobRole)
	return c.assemble(instructions, "", in, jsonDiscipline)
}

// RoleQuestions composes the role-specific question round. The focus line
// carries the tech/content fork so downstream wording matches the track.
func (c *Composer) RoleQuestions(in PromptInputs) string {
	instructions := fmt.Sprintf(c.resolveTask(
		config.GetLoadedPrompts().TaskPrompts.RoleQuestions,
		c.overrides.TaskPrompts.RoleQuestions,
		DefaultTaskPrompts.RoleQuestions,
	), in.JobRole)
	focus := trackFocus(in.Category,
		"Questions should probe technical depth, debugging instincts, and design judgment.",
		"The candidate is on the content track. Questions should probe voice, editorial judgment, audience awareness, and portfolio decisions.")
	return c.assemble(instructions, focus, in, jsonDiscipline)
}

// Challenges composes the practice-exercise round.
func (c *Composer) Challenges(in PromptInputs) string {
	instructions := fmt.Sprintf(c.taskTemplate(TaskCodingChallenges), in.JobRole, difficultyOrVaried(in.Difficulty))
	focus := trackFocus(in.Category,
		"Exercises must be programming tasks that involve writing real code.",
		"The candidate is on the content track. Exercises must be writing, editing, and content-strategy work, not programming.")
	return c.assemble(instructions, focus, in, jsonDiscipline)
}

// MachineCoding composes the timed build round.
func (c *Composer) MachineCoding(in PromptInputs) string {
	instructions := fmt.Sprintf(c.taskTemplate(TaskMachineCoding), in.JobRole, difficultyOrVaried(in.Difficulty))
	focus := trackFocus(in.Category,
		"Frame the round as a machine coding session: build a small working system from scratch within the time box.",
		"Frame the round as a production brief: research, draft, edit, and package one substantial piece of content end to end within the time box.")
	return c.assemble(instructions, focus, in, jsonDiscipline)
}

// SystemDesign composes the design round; for content roles it becomes a
// content-strategy round instead.
func (c *Composer) SystemDesign(in PromptInputs) string {
	instructions := fmt.Sprintf(c.taskTemplate(TaskSystemDesign), in.JobRole, difficultyOrVaried(in.Difficulty))
	focus := trackFocus(in.Category,
		"These are system design questions: architecture, scaling, data flow, failure modes.",
		"Replace system design with content strategy: audience, channels, editorial systems, and measurement. No software architecture.")
	return c.assemble(instructions, focus, in, jsonDiscipline)
}

// ResumeAnalysis composes the resume scoring prompt; the resume itself rides
// in the context block.
func (c *Composer) ResumeAnalysis(in PromptInputs) string {
	instructions := fmt.Sprintf(c.taskTemplate(TaskResumeAnalysis), in.JobRole)
	return c.assemble(instructions, "", in, jsonDiscipline)
}

// SolutionGuide composes the worked-solution prompt; title and problem ride
// in the context block.
func (c *Composer) SolutionGuide(in PromptInputs) string {
	instructions := fmt.Sprintf(c.taskTemplate(TaskSolutionGuide), in.JobRole)
	return c.assemble(instructions, "", in, jsonDiscipline)
}

// Insights composes the grounded company-research prompt.
func (c *Composer) Insights(in PromptInputs) string {
	instructions := fmt.Sprintf(c.taskTemplate(TaskCompanyInsights), in.Company, in.JobRole)
	return c.assemble(instructions, "", in, citationDiscipline)
}

// ChatSystemPrompt builds the interviewer system instruction for a mock
// interview session.
func (c *Composer) ChatSystemPrompt(jobRole string, category types.RoleCategory) string {
	base := c.SystemPrompt(OpChat)
	focus := trackFocus(category,
		fmt.Sprintf("You are interviewing a candidate for a %s position. Mix behavioral and technical questions appropriate to that role.", jobRole),
		fmt.Sprintf("You are interviewing a candidate for a %s position on the content track. Mix behavioral questions with craft questions about writing, editing, and content strategy.", jobRole))
	return base + "\n\n" + focus
}

// SystemPrompt resolves the system instruction for an operation:
// file-loaded content, then config override, then the built-in default.
func (c *Composer) SystemPrompt(op string) string {
	loaded := config.GetLoadedPrompts().SystemPrompts
	switch op {
	case OpPrepKit:
		return resolvePrompt(loaded.PrepKit, c.overrides.SystemPrompts.PrepKit, DefaultSystemPrompts.PrepKit)
	case OpRandomized:
		return resolvePrompt(loaded.Randomized, c.overrides.SystemPrompts.Randomized, DefaultSystemPrompts.Randomized)
	case OpSolution:
		return resolvePrompt(loaded.Solution, c.overrides.SystemPrompts.Solution, DefaultSystemPrompts.Solution)
	case OpInsights:
		return resolvePrompt(loaded.Insights, c.overrides.SystemPrompts.Insights, DefaultSystemPrompts.Insights)
	case OpResume:
		return resolvePrompt(loaded.Resume, c.overrides.SystemPrompts.Resume, DefaultSystemPrompts.Resume)
	case OpChat:
		return resolvePrompt(loaded.Chat, c.overrides.SystemPrompts.Chat, DefaultSystemPrompts.Chat)
	default:
		return ""
	}
}

func (c *Composer) taskTemplate(kind TaskKind) string {
	loaded := config.GetLoadedPrompts().TaskPrompts
	switch kind {
	case TaskGeneralQuestions:
		return resolvePrompt(loaded.GeneralQuestions, c.overrides.TaskPrompts.GeneralQuestions, DefaultTaskPrompts.GeneralQuestions)
	case TaskCodingChallenges:
		return resolvePrompt(loaded.Challenges, c.overrides.TaskPrompts.Challenges, DefaultTaskPrompts.Challenges)
	case TaskMachineCoding:
		return resolvePrompt(loaded.MachineCoding, c.overrides.TaskPrompts.MachineCoding, DefaultTaskPrompts.MachineCoding)
	case TaskSystemDesign:
		return resolvePrompt(loaded.SystemDesign, c.overrides.TaskPrompts.SystemDesign, DefaultTaskPrompts.SystemDesign)
	case TaskResumeAnalysis:
		return resolvePrompt(loaded.ResumeAnalysis, c.overrides.TaskPrompts.ResumeAnalysis, DefaultTaskPrompts.ResumeAnalysis)
	case TaskSolutionGuide:
		return resolvePrompt(loaded.SolutionGuide, c.overrides.TaskPrompts.SolutionGuide, DefaultTaskPrompts.SolutionGuide)
	case TaskCompanyInsights:
		return resolvePrompt(loaded.Insights, c.overrides.TaskPrompts.Insights, DefaultTaskPrompts.Insights)
	default:
		return ""
	}
}

func (c *Composer) resolveTask(loadedFromFile, fromConfig, fromDefault string) string {
	return resolvePrompt(loadedFromFile, fromConfig, fromDefault)
}

func (c *Composer) assemble(instructions, focus string, in PromptInputs, discipline string) string {
	var b strings.Builder

	persona := personaPreambles[c.policy.Pick(len(personaPreambles))]
	b.WriteString(persona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Session token: %s\n\n", c.policy.SessionToken())
	b.WriteString(instructions)

	if focus != "" {
		b.WriteString("\n\n")
		b.WriteString(focus)
	}

	writeContextBlocks(&b, in)

	b.WriteString("\n\n")
	b.WriteString(discipline)

	return b.String()
}

// writeContextBlocks appends only the inputs that are present; empty fields
// never produce an empty labelled section.
func writeContextBlocks(b *strings.Builder, in PromptInputs) {
	blocks := []struct {
		label string
		value string
	}{
		{"Job Description", in.JobDescription},
		{"Resume", in.ResumeText},
		{"Exercise Title", in.Title},
		{"Problem Statement", in.ProblemStatement},
	}

	for _, block := range blocks {
		if strings.TrimSpace(block.value) == "" {
			continue
		}
		fmt.Fprintf(b, "\n\n**%s:**\n-----\n%s\n-----", block.label, block.value)
	}
}

func trackFocus(category types.RoleCategory, tech, content string) string {
	if category == types.RoleCategoryContent {
		return content
	}
	return tech
}

func difficultyOrVaried(difficulty string) string {
	if strings.TrimSpace(difficulty) == "" {
		return "varied"
	}
	return strings.ToLower(difficulty)
}

// resolvePrompt selects the correct prompt string based on a clear priority
// order: file-loaded content, then configuration, then the built-in default.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
