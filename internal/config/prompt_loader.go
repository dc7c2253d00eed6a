package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFileRef binds a configured file path to its slot in LoadedPrompts
type promptFileRef struct {
	path      string
	kind      string // "system" or "task"
	operation string
	target    *string
}

// promptFileRefs enumerates every configured prompt file and where its
// content lands. The same list drives validation, loading, and watching.
func (c *Config) promptFileRefs(target *LoadedPrompts) []promptFileRef {
	sys := c.AI.CustomPrompts.SystemPrompts
	task := c.AI.CustomPrompts.TaskPrompts
	return []promptFileRef{
		{sys.PrepKitFile, "system", "prepkit", &target.SystemPrompts.PrepKit},
		{sys.RandomizedFile, "system", "randomized", &target.SystemPrompts.Randomized},
		{sys.SolutionFile, "system", "solution", &target.SystemPrompts.Solution},
		{sys.InsightsFile, "system", "insights", &target.SystemPrompts.Insights},
		{sys.ResumeFile, "system", "resume", &target.SystemPrompts.Resume},
		{sys.ChatFile, "system", "chat", &target.SystemPrompts.Chat},
		{task.GeneralQuestionsFile, "task", "generalQuestions", &target.TaskPrompts.GeneralQuestions},
		{task.RoleQuestionsFile, "task", "roleQuestions", &target.TaskPrompts.RoleQuestions},
		{task.ChallengesFile, "task", "challenges", &target.TaskPrompts.Challenges},
		{task.MachineCodingFile, "task", "machineCoding", &target.TaskPrompts.MachineCoding},
		{task.SystemDesignFile, "task", "systemDesign", &target.TaskPrompts.SystemDesign},
		{task.ResumeAnalysisFile, "task", "resumeAnalysis", &target.TaskPrompts.ResumeAnalysis},
		{task.SolutionGuideFile, "task", "solutionGuide", &target.TaskPrompts.SolutionGuide},
		{task.InsightsFile, "task", "insights", &target.TaskPrompts.Insights},
	}
}

// loadPromptsFromFiles loads custom prompts from external files if file
// paths are specified, then swaps the loaded set in atomically.
func (c *Config) loadPromptsFromFiles() error {
	var loaded LoadedPrompts
	count := 0

	for _, ref := range c.promptFileRefs(&loaded) {
		if ref.path == "" {
			continue
		}
		content, err := loadPromptFromFile(ref.path, ref.kind, ref.operation)
		if err != nil {
			return err
		}
		*ref.target = content
		count++
	}

	storeLoadedPrompts(loaded)

	if count == 0 {
		log.Println("[CONFIG] No custom prompt files configured - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Loaded %d custom prompt file(s)", count)
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that configured prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string
	var scratch LoadedPrompts

	for _, ref := range c.promptFileRefs(&scratch) {
		if ref.path == "" {
			continue
		}
		absPath, err := filepath.Abs(ref.path)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", ref.kind, ref.operation, ref.path))
			continue
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", ref.kind, ref.operation, absPath))
		}
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// promptFilePaths returns the configured prompt file paths, for watching
func (c *Config) promptFilePaths() []string {
	var scratch LoadedPrompts
	var paths []string
	for _, ref := range c.promptFileRefs(&scratch) {
		if ref.path != "" {
			paths = append(paths, ref.path)
		}
	}
	return paths
}
