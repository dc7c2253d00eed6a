package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	// Create temporary directory for test files
	tempDir := t.TempDir()

	// Create test prompt files
	systemPromptContent := "Test system prompt for prep kit generation"
	taskPromptContent := "Test task prompt template: %s"

	systemPromptFile := filepath.Join(tempDir, "system.prepkit.md")
	taskPromptFile := filepath.Join(tempDir, "task.general.md")

	if err := os.WriteFile(systemPromptFile, []byte(systemPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test system prompt file: %v", err)
	}

	if err := os.WriteFile(taskPromptFile, []byte(taskPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test task prompt file: %v", err)
	}

	// Create test config
	config := &Config{}
	config.AI.CustomPrompts.SystemPrompts.PrepKitFile = systemPromptFile
	config.AI.CustomPrompts.TaskPrompts.GeneralQuestionsFile = taskPromptFile

	// Test file loading
	err := config.loadPromptsFromFiles()
	if err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	// Verify content was loaded into the global prompt store
	loaded := GetLoadedPrompts()

	if loaded.SystemPrompts.PrepKit != systemPromptContent {
		t.Errorf("Expected loaded system prompt content '%s', got '%s'",
			systemPromptContent, loaded.SystemPrompts.PrepKit)
	}

	if loaded.TaskPrompts.GeneralQuestions != taskPromptContent {
		t.Errorf("Expected loaded task prompt content '%s', got '%s'",
			taskPromptContent, loaded.TaskPrompts.GeneralQuestions)
	}

	// Verify file paths are preserved (new immutable design)
	if config.AI.CustomPrompts.SystemPrompts.PrepKitFile != systemPromptFile {
		t.Error("Expected system prompt file path to be preserved")
	}

	if config.AI.CustomPrompts.TaskPrompts.GeneralQuestionsFile != taskPromptFile {
		t.Error("Expected task prompt file path to be preserved")
	}
}

func TestValidatePromptFiles(t *testing.T) {
	// Create temporary directory for test files
	tempDir := t.TempDir()

	// Create a valid test file
	validFile := filepath.Join(tempDir, "valid.md")
	if err := os.WriteFile(validFile, []byte("Valid content"), 0600); err != nil {
		t.Fatalf("Failed to create valid test file: %v", err)
	}

	// Test with valid file
	config := &Config{}
	config.AI.CustomPrompts.SystemPrompts.ResumeFile = validFile

	err := config.validatePromptFiles()
	if err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	// Test with non-existent file
	config.AI.CustomPrompts.SystemPrompts.ResumeFile = filepath.Join(tempDir, "nonexistent.md")

	err = config.validatePromptFiles()
	if err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	// Create temporary directory for test files
	tempDir := t.TempDir()

	// Test with valid file
	content := "Test prompt content"
	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loadedContent, err := loadPromptFromFile(testFile, "system", "prepkit")
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}

	if loadedContent != content {
		t.Errorf("Expected content '%s', got '%s'", content, loadedContent)
	}

	// Test with empty file
	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte(""), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}

	_, err = loadPromptFromFile(emptyFile, "system", "prepkit")
	if err == nil {
		t.Error("Expected error for empty file")
	}

	// Test with non-existent file
	_, err = loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system", "prepkit")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestPromptFileIntegration(t *testing.T) {
	// Create temporary directory and config file
	tempDir := t.TempDir()

	// Create test prompt files
	systemPrompt := "Custom system prompt for testing"
	taskPrompt := "Custom task prompt: %s"

	systemFile := filepath.Join(tempDir, "system.md")
	taskFile := filepath.Join(tempDir, "task.md")

	if err := os.WriteFile(systemFile, []byte(systemPrompt), 0600); err != nil {
		t.Fatalf("Failed to create system prompt file: %v", err)
	}

	if err := os.WriteFile(taskFile, []byte(taskPrompt), 0600); err != nil {
		t.Fatalf("Failed to create task prompt file: %v", err)
	}

	// Create a minimal config that would load these files
	config := &Config{
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "test-model",
			Timeout:     60 * time.Second,
			APIKey:      "test-key",
			MaxAttempts: 2,
			Temperature: 0.7,
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024 * 1024,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
	}
	config.AI.CustomPrompts.SystemPrompts.ChatFile = systemFile
	config.AI.CustomPrompts.TaskPrompts.SolutionGuideFile = taskFile

	// Apply fallbacks (simulating the full config loading process)
	applyFallbacks(config)

	// Validate and load prompt files
	if err := config.validatePromptFiles(); err != nil {
		t.Fatalf("Prompt file validation failed: %v", err)
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	// Verify the prompts were loaded correctly into the global store
	loaded := GetLoadedPrompts()

	if loaded.SystemPrompts.Chat != systemPrompt {
		t.Errorf("Expected system prompt '%s', got '%s'",
			systemPrompt, loaded.SystemPrompts.Chat)
	}

	if loaded.TaskPrompts.SolutionGuide != taskPrompt {
		t.Errorf("Expected task prompt '%s', got '%s'",
			taskPrompt, loaded.TaskPrompts.SolutionGuide)
	}

	// Verify the original config paths are preserved
	if config.AI.CustomPrompts.SystemPrompts.ChatFile != systemFile {
		t.Error("Expected system prompt file path to be preserved")
	}

	if config.AI.CustomPrompts.TaskPrompts.SolutionGuideFile != taskFile {
		t.Error("Expected task prompt file path to be preserved")
	}
}

func TestPromptWatcherReloadsChangedFile(t *testing.T) {
	tempDir := t.TempDir()

	promptFile := filepath.Join(tempDir, "chat.md")
	if err := os.WriteFile(promptFile, []byte("Original chat prompt"), 0600); err != nil {
		t.Fatalf("Failed to create prompt file: %v", err)
	}

	config := &Config{}
	config.AI.CustomPrompts.SystemPrompts.ChatFile = promptFile

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Initial prompt load failed: %v", err)
	}

	watcher := NewPromptWatcher(config, 10*time.Millisecond, newMockLogger())
	if watcher == nil {
		t.Fatal("Expected a watcher for a config with prompt files")
	}
	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			t.Errorf("Failed to stop watcher: %v", err)
		}
	}()

	if !watcher.IsRunning() {
		t.Fatal("Watcher should report running after Start")
	}

	if err := os.WriteFile(promptFile, []byte("Updated chat prompt"), 0600); err != nil {
		t.Fatalf("Failed to update prompt file: %v", err)
	}

	// Wait for the debounced reload to land
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if GetLoadedPrompts().SystemPrompts.Chat == "Updated chat prompt" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("Expected reloaded prompt content, got '%s'", GetLoadedPrompts().SystemPrompts.Chat)
}

func TestPromptWatcherNilWithoutFiles(t *testing.T) {
	config := &Config{}
	if watcher := NewPromptWatcher(config, time.Second, newMockLogger()); watcher != nil {
		t.Error("Expected no watcher when no prompt files are configured")
	}
}
