package config

import (
	"sync"
)

var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   LoadedPrompts
)

// LoadedPrompts holds the content of prompts loaded from files. File
// content takes priority over inline config and built-in defaults.
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	TaskPrompts   LoadedTaskPrompts
}

// LoadedSystemPrompts contains per-operation system instructions loaded from files
type LoadedSystemPrompts struct {
	PrepKit    string
	Randomized string
	Solution   string
	Insights   string
	Resume     string
	Chat       string
}

// LoadedTaskPrompts contains per-task prompt templates loaded from files
type LoadedTaskPrompts struct {
	GeneralQuestions string
	RoleQuestions    string
	Challenges       string
	MachineCoding    string
	SystemDesign     string
	ResumeAnalysis   string
	SolutionGuide    string
	Insights         string
}

// GetLoadedPrompts returns a copy of the loaded prompt content in a
// thread-safe way. The prompt watcher may swap the content at runtime.
func GetLoadedPrompts() LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// storeLoadedPrompts replaces the loaded prompt content atomically
func storeLoadedPrompts(p LoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts = p
}
