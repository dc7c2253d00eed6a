package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxAttempts == nil {
		opCfg.MaxAttempts = &c.AI.MaxAttempts
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
	// UseSystemPrompts: apply global default only if not explicitly set
	if opCfg.UseSystemPrompts == nil {
		opCfg.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
	if opCfg.BackoffBase == 0 {
		opCfg.BackoffBase = c.AI.BackoffBase
	}
	if opCfg.BackoffJitter == 0 {
		opCfg.BackoffJitter = c.AI.BackoffJitter
	}
}

// GetPrepKitConfig returns the AI configuration for full prep kit generation
func (c *Config) GetPrepKitConfig() OperationAIConfig {
	config := c.AI.PrepKit
	c.applyOperationDefaults(&config)
	return config
}

// GetRandomizedConfig returns the AI configuration for randomized prep set generation
func (c *Config) GetRandomizedConfig() OperationAIConfig {
	config := c.AI.Randomized
	c.applyOperationDefaults(&config)
	return config
}

// GetSolutionConfig returns the AI configuration for solution guide generation
func (c *Config) GetSolutionConfig() OperationAIConfig {
	config := c.AI.Solution
	c.applyOperationDefaults(&config)
	return config
}

// GetInsightsConfig returns the AI configuration for grounded company insights
func (c *Config) GetInsightsConfig() OperationAIConfig {
	config := c.AI.Insights
	c.applyOperationDefaults(&config)
	return config
}

// GetResumeConfig returns the AI configuration for resume analysis
func (c *Config) GetResumeConfig() OperationAIConfig {
	config := c.AI.Resume
	c.applyOperationDefaults(&config)
	return config
}

// GetChatConfig returns the AI configuration for interview chat sessions
func (c *Config) GetChatConfig() OperationAIConfig {
	config := c.AI.Chat
	c.applyOperationDefaults(&config)
	return config
}
