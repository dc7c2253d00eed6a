package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"codepulse/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "PrepKit", &PrepKitTextFormatter{})
	registry.RegisterFormatter("markdown", "PrepKit", &PrepKitMarkdownFormatter{})
	registry.RegisterFormatter("text", "RandomizedPrepSet", &PrepSetTextFormatter{})
	registry.RegisterFormatter("markdown", "RandomizedPrepSet", &PrepSetMarkdownFormatter{})
	registry.RegisterFormatter("text", "SolutionGuide", &SolutionTextFormatter{})
	registry.RegisterFormatter("markdown", "SolutionGuide", &SolutionMarkdownFormatter{})
	registry.RegisterFormatter("text", "ResumeAnalysis", &ResumeAnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "ResumeAnalysis", &ResumeAnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "CompanyInsights", &InsightsTextFormatter{})
	registry.RegisterFormatter("markdown", "CompanyInsights", &InsightsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.PrepKit, *types.PrepKit:
		return "PrepKit"
	case types.RandomizedPrepSet, *types.RandomizedPrepSet:
		return "RandomizedPrepSet"
	case types.SolutionGuide, *types.SolutionGuide:
		return "SolutionGuide"
	case types.ResumeAnalysis, *types.ResumeAnalysis:
		return "ResumeAnalysis"
	case types.CompanyInsights, *types.CompanyInsights:
		return "CompanyInsights"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// writeQuestionsText renders a numbered question list in plain text
func writeQuestionsText(output *strings.Builder, questions []types.InterviewQuestion) {
	for i, q := range questions {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, q.Question))
		output.WriteString("   Answer: ")
		output.WriteString(q.Answer)
		output.WriteString("\n\n")
	}
}

// writeQuestionsMarkdown renders a question list in markdown
func writeQuestionsMarkdown(output *strings.Builder, questions []types.InterviewQuestion) {
	for i, q := range questions {
		output.WriteString(fmt.Sprintf("### %d. %s\n\n", i+1, q.Question))
		output.WriteString(q.Answer)
		output.WriteString("\n\n")
	}
}

// writeChallengesText renders practice challenges in plain text
func writeChallengesText(output *strings.Builder, challenges []types.CodingChallenge) {
	for i, c := range challenges {
		output.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, c.Title, c.Difficulty))
		output.WriteString("   ")
		output.WriteString(c.Description)
		output.WriteString("\n")
		if c.Approach != "" {
			output.WriteString("   Approach: ")
			output.WriteString(c.Approach)
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}
}

// writeChallengesMarkdown renders practice challenges in markdown
func writeChallengesMarkdown(output *strings.Builder, challenges []types.CodingChallenge) {
	for i, c := range challenges {
		output.WriteString(fmt.Sprintf("### %d. %s (%s)\n\n", i+1, c.Title, c.Difficulty))
		output.WriteString(c.Description)
		output.WriteString("\n\n")
		if c.Approach != "" {
			output.WriteString("**Approach:** ")
			output.WriteString(c.Approach)
			output.WriteString("\n\n")
		}
	}
}

// writeMachineCodingText renders the machine coding round in plain text
func writeMachineCodingText(output *strings.Builder, problem types.MachineCodingProblem) {
	output.WriteString(problem.Title)
	output.WriteString("\n\n")
	output.WriteString(problem.ProblemStatement)
	output.WriteString("\n\n")
	if len(problem.Requirements) > 0 {
		output.WriteString("Requirements:\n")
		for _, req := range problem.Requirements {
			output.WriteString(fmt.Sprintf("- %s\n", req))
		}
		output.WriteString("\n")
	}
	if len(problem.Hints) > 0 {
		output.WriteString("Hints:\n")
		for _, hint := range problem.Hints {
			output.WriteString(fmt.Sprintf("- %s\n", hint))
		}
		output.WriteString("\n")
	}
}

// writeMachineCodingMarkdown renders the machine coding round in markdown
func writeMachineCodingMarkdown(output *strings.Builder, problem types.MachineCodingProblem) {
	output.WriteString("### ")
	output.WriteString(problem.Title)
	output.WriteString("\n\n")
	output.WriteString(problem.ProblemStatement)
	output.WriteString("\n\n")
	if len(problem.Requirements) > 0 {
		output.WriteString("**Requirements:**\n\n")
		for _, req := range problem.Requirements {
			output.WriteString(fmt.Sprintf("- %s\n", req))
		}
		output.WriteString("\n")
	}
	if len(problem.Hints) > 0 {
		output.WriteString("**Hints:**\n\n")
		for _, hint := range problem.Hints {
			output.WriteString(fmt.Sprintf("- %s\n", hint))
		}
		output.WriteString("\n")
	}
}

func asPrepKit(data any) (types.PrepKit, bool) {
	switch v := data.(type) {
	case types.PrepKit:
		return v, true
	case *types.PrepKit:
		return *v, true
	}
	return types.PrepKit{}, false
}

// PrepKitTextFormatter handles text formatting for full prep kits
type PrepKitTextFormatter struct{}

func (pf *PrepKitTextFormatter) Format(data any) (string, error) {
	result, ok := asPrepKit(data)
	if !ok {
		return "", fmt.Errorf("expected PrepKit, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== INTERVIEW PREP KIT ===\n\n")
	output.WriteString(fmt.Sprintf("Role: %s (%s)\n\n", result.JobRole, result.RoleCategory))

	output.WriteString("=== GENERAL QUESTIONS ===\n\n")
	writeQuestionsText(&output, result.GeneralQuestions)

	output.WriteString("=== ROLE-SPECIFIC QUESTIONS ===\n\n")
	writeQuestionsText(&output, result.RoleQuestions)

	output.WriteString("=== PRACTICE CHALLENGES ===\n\n")
	writeChallengesText(&output, result.Challenges)

	output.WriteString("=== MACHINE CODING ROUND ===\n\n")
	writeMachineCodingText(&output, result.MachineCoding)

	return output.String(), nil
}

func (pf *PrepKitTextFormatter) SupportedType() string {
	return "PrepKit"
}

// PrepKitMarkdownFormatter handles markdown formatting for full prep kits
type PrepKitMarkdownFormatter struct{}

func (pf *PrepKitMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asPrepKit(data)
	if !ok {
		return "", fmt.Errorf("expected PrepKit, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Interview Prep Kit\n\n")
	output.WriteString(fmt.Sprintf("**Role:** %s (%s)\n\n", result.JobRole, result.RoleCategory))

	output.WriteString("## General Questions\n\n")
	writeQuestionsMarkdown(&output, result.GeneralQuestions)

	output.WriteString("## Role-Specific Questions\n\n")
	writeQuestionsMarkdown(&output, result.RoleQuestions)

	output.WriteString("## Practice Challenges\n\n")
	writeChallengesMarkdown(&output, result.Challenges)

	output.WriteString("## Machine Coding Round\n\n")
	writeMachineCodingMarkdown(&output, result.MachineCoding)

	return output.String(), nil
}

func (pf *PrepKitMarkdownFormatter) SupportedType() string {
	return "PrepKit"
}

func asPrepSet(data any) (types.RandomizedPrepSet, bool) {
	switch v := data.(type) {
	case types.RandomizedPrepSet:
		return v, true
	case *types.RandomizedPrepSet:
		return *v, true
	}
	return types.RandomizedPrepSet{}, false
}

// PrepSetTextFormatter handles text formatting for randomized prep sets
type PrepSetTextFormatter struct{}

func (pf *PrepSetTextFormatter) Format(data any) (string, error) {
	result, ok := asPrepSet(data)
	if !ok {
		return "", fmt.Errorf("expected RandomizedPrepSet, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RANDOMIZED PREP SET ===\n\n")
	output.WriteString(fmt.Sprintf("Role: %s (%s)\n", result.JobRole, result.RoleCategory))
	output.WriteString(fmt.Sprintf("Difficulty: %s\n\n", result.Difficulty))

	output.WriteString("=== QUESTIONS ===\n\n")
	writeQuestionsText(&output, result.Questions)

	output.WriteString("=== SYSTEM DESIGN ===\n\n")
	writeQuestionsText(&output, result.SystemDesign)

	output.WriteString("=== PRACTICE CHALLENGES ===\n\n")
	writeChallengesText(&output, result.Challenges)

	output.WriteString("=== MACHINE CODING ROUND ===\n\n")
	writeMachineCodingText(&output, result.MachineCoding)

	return output.String(), nil
}

func (pf *PrepSetTextFormatter) SupportedType() string {
	return "RandomizedPrepSet"
}

// PrepSetMarkdownFormatter handles markdown formatting for randomized prep sets
type PrepSetMarkdownFormatter struct{}

func (pf *PrepSetMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asPrepSet(data)
	if !ok {
		return "", fmt.Errorf("expected RandomizedPrepSet, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Randomized Prep Set\n\n")
	output.WriteString(fmt.Sprintf("**Role:** %s (%s)\n\n", result.JobRole, result.RoleCategory))
	output.WriteString(fmt.Sprintf("**Difficulty:** %s\n\n", result.Difficulty))

	output.WriteString("## Questions\n\n")
	writeQuestionsMarkdown(&output, result.Questions)

	output.WriteString("## System Design\n\n")
	writeQuestionsMarkdown(&output, result.SystemDesign)

	output.WriteString("## Practice Challenges\n\n")
	writeChallengesMarkdown(&output, result.Challenges)

	output.WriteString("## Machine Coding Round\n\n")
	writeMachineCodingMarkdown(&output, result.MachineCoding)

	return output.String(), nil
}

func (pf *PrepSetMarkdownFormatter) SupportedType() string {
	return "RandomizedPrepSet"
}

func asSolutionGuide(data any) (types.SolutionGuide, bool) {
	switch v := data.(type) {
	case types.SolutionGuide:
		return v, true
	case *types.SolutionGuide:
		return *v, true
	}
	return types.SolutionGuide{}, false
}

// SolutionTextFormatter handles text formatting for solution guides
type SolutionTextFormatter struct{}

func (sf *SolutionTextFormatter) Format(data any) (string, error) {
	result, ok := asSolutionGuide(data)
	if !ok {
		return "", fmt.Errorf("expected SolutionGuide, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== SOLUTION GUIDE ===\n\n")
	output.WriteString(result.Title)
	output.WriteString("\n\n")

	output.WriteString("=== APPROACH ===\n")
	output.WriteString(result.Approach)
	output.WriteString("\n\n")

	if len(result.Steps) > 0 {
		output.WriteString("=== STEPS ===\n")
		for i, step := range result.Steps {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
		output.WriteString("\n")
	}

	output.WriteString("=== SOLUTION ===\n")
	output.WriteString(result.Solution)
	output.WriteString("\n\n")

	if result.Complexity != "" {
		output.WriteString("Complexity: ")
		output.WriteString(result.Complexity)
		output.WriteString("\n\n")
	}

	if len(result.Pitfalls) > 0 {
		output.WriteString("=== PITFALLS ===\n")
		for _, pitfall := range result.Pitfalls {
			output.WriteString(fmt.Sprintf("- %s\n", pitfall))
		}
	}

	return output.String(), nil
}

func (sf *SolutionTextFormatter) SupportedType() string {
	return "SolutionGuide"
}

// SolutionMarkdownFormatter handles markdown formatting for solution guides
type SolutionMarkdownFormatter struct{}

func (sf *SolutionMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asSolutionGuide(data)
	if !ok {
		return "", fmt.Errorf("expected SolutionGuide, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Solution Guide\n\n")
	output.WriteString("## ")
	output.WriteString(result.Title)
	output.WriteString("\n\n")

	output.WriteString("## Approach\n\n")
	output.WriteString(result.Approach)
	output.WriteString("\n\n")

	if len(result.Steps) > 0 {
		output.WriteString("## Steps\n\n")
		for i, step := range result.Steps {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Solution\n\n")
	output.WriteString(result.Solution)
	output.WriteString("\n\n")

	if result.Complexity != "" {
		output.WriteString("**Complexity:** ")
		output.WriteString(result.Complexity)
		output.WriteString("\n\n")
	}

	if len(result.Pitfalls) > 0 {
		output.WriteString("## Pitfalls\n\n")
		for _, pitfall := range result.Pitfalls {
			output.WriteString(fmt.Sprintf("- %s\n", pitfall))
		}
	}

	return output.String(), nil
}

func (sf *SolutionMarkdownFormatter) SupportedType() string {
	return "SolutionGuide"
}

func asResumeAnalysis(data any) (types.ResumeAnalysis, bool) {
	switch v := data.(type) {
	case types.ResumeAnalysis:
		return v, true
	case *types.ResumeAnalysis:
		return *v, true
	}
	return types.ResumeAnalysis{}, false
}

// ResumeAnalysisTextFormatter handles text formatting for resume analyses
type ResumeAnalysisTextFormatter struct{}

func (rf *ResumeAnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := asResumeAnalysis(data)
	if !ok {
		return "", fmt.Errorf("expected ResumeAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== RESUME ANALYSIS ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100\n\n", result.OverallScore))
	output.WriteString("Summary:\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	if len(result.Strengths) > 0 {
		output.WriteString("=== STRENGTHS ===\n")
		for _, strength := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if len(result.Gaps) > 0 {
		output.WriteString("=== GAPS ===\n")
		for _, gap := range result.Gaps {
			output.WriteString(fmt.Sprintf("- %s\n", gap))
		}
		output.WriteString("\n")
	}

	if len(result.KeywordMatches) > 0 {
		output.WriteString("Matched Keywords: ")
		output.WriteString(strings.Join(result.KeywordMatches, ", "))
		output.WriteString("\n")
	}
	if len(result.MissingKeywords) > 0 {
		output.WriteString("Missing Keywords: ")
		output.WriteString(strings.Join(result.MissingKeywords, ", "))
		output.WriteString("\n")
	}
	if len(result.KeywordMatches) > 0 || len(result.MissingKeywords) > 0 {
		output.WriteString("\n")
	}

	if len(result.Suggestions) > 0 {
		output.WriteString("=== SUGGESTIONS ===\n")
		for i, suggestion := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, suggestion))
		}
	}

	return output.String(), nil
}

func (rf *ResumeAnalysisTextFormatter) SupportedType() string {
	return "ResumeAnalysis"
}

// ResumeAnalysisMarkdownFormatter handles markdown formatting for resume analyses
type ResumeAnalysisMarkdownFormatter struct{}

func (rf *ResumeAnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asResumeAnalysis(data)
	if !ok {
		return "", fmt.Errorf("expected ResumeAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100\n\n", result.OverallScore))
	output.WriteString("## Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	if len(result.Strengths) > 0 {
		output.WriteString("## Strengths\n\n")
		for _, strength := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
		output.WriteString("\n")
	}

	if len(result.Gaps) > 0 {
		output.WriteString("## Gaps\n\n")
		for _, gap := range result.Gaps {
			output.WriteString(fmt.Sprintf("- %s\n", gap))
		}
		output.WriteString("\n")
	}

	if len(result.KeywordMatches) > 0 {
		output.WriteString("**Matched Keywords:** ")
		output.WriteString(strings.Join(result.KeywordMatches, ", "))
		output.WriteString("\n\n")
	}
	if len(result.MissingKeywords) > 0 {
		output.WriteString("**Missing Keywords:** ")
		output.WriteString(strings.Join(result.MissingKeywords, ", "))
		output.WriteString("\n\n")
	}

	if len(result.Suggestions) > 0 {
		output.WriteString("## Suggestions\n\n")
		for i, suggestion := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, suggestion))
		}
	}

	return output.String(), nil
}

func (rf *ResumeAnalysisMarkdownFormatter) SupportedType() string {
	return "ResumeAnalysis"
}

func asInsights(data any) (types.CompanyInsights, bool) {
	switch v := data.(type) {
	case types.CompanyInsights:
		return v, true
	case *types.CompanyInsights:
		return *v, true
	}
	return types.CompanyInsights{}, false
}

// InsightsTextFormatter handles text formatting for company insights
type InsightsTextFormatter struct{}

func (itf *InsightsTextFormatter) Format(data any) (string, error) {
	result, ok := asInsights(data)
	if !ok {
		return "", fmt.Errorf("expected CompanyInsights, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== COMPANY INSIGHTS ===\n\n")
	output.WriteString(fmt.Sprintf("Company: %s\n\n", result.Company))
	output.WriteString(result.Content)
	output.WriteString("\n\n")

	if len(result.Sources) > 0 {
		output.WriteString("=== SOURCES ===\n")
		for i, source := range result.Sources {
			if source.Title != "" {
				output.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, source.Title, source.URI))
			} else {
				output.WriteString(fmt.Sprintf("%d. %s\n", i+1, source.URI))
			}
		}
	}

	return output.String(), nil
}

func (itf *InsightsTextFormatter) SupportedType() string {
	return "CompanyInsights"
}

// InsightsMarkdownFormatter handles markdown formatting for company insights
type InsightsMarkdownFormatter struct{}

func (imf *InsightsMarkdownFormatter) Format(data any) (string, error) {
	result, ok := asInsights(data)
	if !ok {
		return "", fmt.Errorf("expected CompanyInsights, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Company Insights\n\n")
	output.WriteString(fmt.Sprintf("**Company:** %s\n\n", result.Company))
	output.WriteString(result.Content)
	output.WriteString("\n\n")

	if len(result.Sources) > 0 {
		output.WriteString("## Sources\n\n")
		for i, source := range result.Sources {
			title := source.Title
			if title == "" {
				title = source.URI
			}
			output.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, title, source.URI))
		}
	}

	return output.String(), nil
}

func (imf *InsightsMarkdownFormatter) SupportedType() string {
	return "CompanyInsights"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
