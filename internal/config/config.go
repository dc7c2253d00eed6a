package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"codepulse/internal/errors"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (CODEPULSE_AI_APIKEY, GEMINI_API_KEY)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Orchestrator  OrchestratorConfig  `mapstructure:"orchestrator"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds AI service configuration with operation-specific overrides
type AIConfig struct {
	// Global defaults applied to every operation unless overridden
	Provider         string        `mapstructure:"provider"`
	Model            string        `mapstructure:"model"`
	Timeout          time.Duration `mapstructure:"timeout"`
	APIKey           string        `mapstructure:"apiKey"`
	MaxAttempts      int           `mapstructure:"maxAttempts"`
	Temperature      float32       `mapstructure:"temperature"`
	UseSystemPrompts bool          `mapstructure:"useSystemPrompts"`
	BackoffBase      time.Duration `mapstructure:"backoffBase"`
	BackoffJitter    time.Duration `mapstructure:"backoffJitter"`

	// Sampling bounds the per-attempt generation parameter draws
	Sampling SamplingConfig `mapstructure:"sampling"`

	// CustomPrompts override the built-in prompt templates
	CustomPrompts PromptConfig `mapstructure:"customPrompts"`

	// Operation-specific configurations
	PrepKit    OperationAIConfig `mapstructure:"prepkit"`
	Randomized OperationAIConfig `mapstructure:"randomized"`
	Solution   OperationAIConfig `mapstructure:"solution"`
	Insights   OperationAIConfig `mapstructure:"insights"`
	Resume     OperationAIConfig `mapstructure:"resume"`
	Chat       OperationAIConfig `mapstructure:"chat"`
}

// SamplingConfig bounds the randomized generation parameters. Every
// generation call draws fresh values from these ranges so retried
// attempts do not replay the exact failing configuration.
type SamplingConfig struct {
	TemperatureMin float64 `mapstructure:"temperatureMin"`
	TemperatureMax float64 `mapstructure:"temperatureMax"`
	TopPMin        float64 `mapstructure:"topPMin"`
	TopPMax        float64 `mapstructure:"topPMax"`
	TopKMin        int     `mapstructure:"topKMin"`
	TopKMax        int     `mapstructure:"topKMax"`
	// Seed pins the random stream for reproducible runs. Zero seeds
	// from the clock.
	Seed int64 `mapstructure:"seed"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for specific operations.
// Pointer fields distinguish "not set" from an explicit zero value.
type OperationAIConfig struct {
	Provider         string         `mapstructure:"provider"`
	Model            string         `mapstructure:"model"`
	Timeout          *time.Duration `mapstructure:"timeout"`
	APIKey           string         `mapstructure:"apiKey"`
	MaxAttempts      *int           `mapstructure:"maxAttempts"`
	Temperature      *float32       `mapstructure:"temperature"`
	UseSystemPrompts *bool          `mapstructure:"useSystemPrompts"`
	BackoffBase      time.Duration  `mapstructure:"backoffBase"`
	BackoffJitter    time.Duration  `mapstructure:"backoffJitter"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// OrchestratorConfig controls the sequential multi-call generation flow
type OrchestratorConfig struct {
	// InterCallDelay is the pause between successive sub-calls of a
	// composite generation, to stay clear of per-minute quota limits.
	InterCallDelay time.Duration `mapstructure:"interCallDelay"`
}

// PromptConfig allows overriding the built-in prompt templates
type PromptConfig struct {
	SystemPrompts SystemPromptConfig `mapstructure:"systemPrompts"`
	TaskPrompts   TaskPromptConfig   `mapstructure:"taskPrompts"`
}

// SystemPromptConfig holds per-operation system instruction overrides.
// The *File variants point at external files loaded at startup.
type SystemPromptConfig struct {
	PrepKit        string `mapstructure:"prepkit"`
	PrepKitFile    string `mapstructure:"prepkitFile"`
	Randomized     string `mapstructure:"randomized"`
	RandomizedFile string `mapstructure:"randomizedFile"`
	Solution       string `mapstructure:"solution"`
	SolutionFile   string `mapstructure:"solutionFile"`
	Insights       string `mapstructure:"insights"`
	InsightsFile   string `mapstructure:"insightsFile"`
	Resume         string `mapstructure:"resume"`
	ResumeFile     string `mapstructure:"resumeFile"`
	Chat           string `mapstructure:"chat"`
	ChatFile       string `mapstructure:"chatFile"`
}

// TaskPromptConfig holds per-task prompt template overrides
type TaskPromptConfig struct {
	GeneralQuestions     string `mapstructure:"generalQuestions"`
	GeneralQuestionsFile string `mapstructure:"generalQuestionsFile"`
	RoleQuestions        string `mapstructure:"roleQuestions"`
	RoleQuestionsFile    string `mapstructure:"roleQuestionsFile"`
	Challenges           string `mapstructure:"challenges"`
	ChallengesFile       string `mapstructure:"challengesFile"`
	MachineCoding        string `mapstructure:"machineCoding"`
	MachineCodingFile    string `mapstructure:"machineCodingFile"`
	SystemDesign         string `mapstructure:"systemDesign"`
	SystemDesignFile     string `mapstructure:"systemDesignFile"`
	ResumeAnalysis       string `mapstructure:"resumeAnalysis"`
	ResumeAnalysisFile   string `mapstructure:"resumeAnalysisFile"`
	SolutionGuide        string `mapstructure:"solutionGuide"`
	SolutionGuideFile    string `mapstructure:"solutionGuideFile"`
	Insights             string `mapstructure:"insights"`
	InsightsFile         string `mapstructure:"insightsFile"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// ChatSessionTTL is how long an idle chat session is retained
	ChatSessionTTL time.Duration `mapstructure:"chatSessionTTL"`

	// APIKeys for authentication (if empty, no auth required)
	APIKeys []string `mapstructure:"apiKeys"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds application-level configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

// TracingConfig holds tracing-specific configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics-specific configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// CustomMetricsConfig holds custom metrics configuration
type CustomMetricsConfig struct {
	AIOperations    AIOperationsMetricsConfig   `mapstructure:"aiOperations"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AIOperationsMetricsConfig holds AI operations metrics configuration
type AIOperationsMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackDuration   bool `mapstructure:"trackDuration"`
	TrackTokenUsage bool `mapstructure:"trackTokenUsage"`
	TrackModelInfo  bool `mapstructure:"trackModelInfo"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackContentSizes bool `mapstructure:"trackContentSizes"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// HealthCheckConfig holds health check configuration
type HealthCheckConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	AIModelCheckTimeout time.Duration `mapstructure:"aiModelCheckTimeout"`
}

// LoadConfig loads configuration from files, environment variables, and defaults
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("codepulse")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.codepulse")
	v.AddConfigPath("/etc/codepulse")

	v.SetEnvPrefix("CODEPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.NewConfigError(
				errors.ErrCodeInvalidConfig,
				"Failed to read configuration file",
				err,
			)
		}
		// Missing config file is fine, defaults and env vars carry it
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError(
			errors.ErrCodeInvalidConfig,
			"Failed to parse configuration",
			err,
		)
	}

	applyFallbacks(&config)

	// Vault secrets layer on top of file and env configuration
	logger, err := errors.New(config.App.LogLevel)
	if err != nil {
		logger = errors.NewLogger(0)
	}
	if err := ApplyVaultSecrets(&config, logger); err != nil {
		return nil, errors.NewConfigError(
			errors.ErrCodeInvalidConfig,
			"Failed to load secrets from Vault",
			err,
		)
	}

	if err := config.validatePromptFiles(); err != nil {
		return nil, errors.NewConfigError(
			errors.ErrCodeInvalidConfig,
			"Prompt file validation failed",
			err,
		)
	}
	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, errors.NewConfigError(
			errors.ErrCodeInvalidConfig,
			"Failed to load prompt files",
			err,
		)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logConfigurationSources(v, &config)

	return &config, nil
}

// Validate checks the configuration for consistency. The AI credential is
// deliberately not required here: the client is built lazily and a missing
// key surfaces on first use, so offline commands keep working.
func (c *Config) Validate() error {
	if c.AI.Provider == "" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "AI provider is required", nil)
	}
	if c.AI.Model == "" {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "AI model is required", nil)
	}
	if c.AI.Timeout <= 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "AI timeout must be positive", nil)
	}
	if c.AI.MaxAttempts < 1 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "AI maxAttempts must be at least 1", nil)
	}
	if c.AI.BackoffBase < 0 || c.AI.BackoffJitter < 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "AI backoff durations must not be negative", nil)
	}

	if err := c.validateSampling(); err != nil {
		return err
	}

	if c.Orchestrator.InterCallDelay < 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Orchestrator interCallDelay must not be negative", nil)
	}

	if c.Server.Port != "" {
		port, err := strconv.Atoi(c.Server.Port)
		if err != nil || port < 1 || port > 65535 {
			return errors.NewConfigError(
				errors.ErrCodeInvalidConfig,
				fmt.Sprintf("Invalid server port: %s", c.Server.Port),
				err,
			)
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		return errors.NewConfigError(
			errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Invalid log level: %s (must be debug, info, warn, or error)", c.App.LogLevel),
			nil,
		)
	}

	validFormats := map[string]bool{}
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return errors.NewConfigError(
			errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Default format '%s' is not in supported formats", c.App.DefaultFormat),
			nil,
		)
	}

	return nil
}

func (c *Config) validateSampling() error {
	s := c.AI.Sampling
	if s.TemperatureMin > s.TemperatureMax {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Sampling temperatureMin exceeds temperatureMax", nil)
	}
	if s.TopPMin > s.TopPMax {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Sampling topPMin exceeds topPMax", nil)
	}
	if s.TopKMin > s.TopKMax {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Sampling topKMin exceeds topKMax", nil)
	}
	if s.TemperatureMin < 0 || s.TopPMin < 0 || s.TopKMin < 0 {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "Sampling bounds must not be negative", nil)
	}
	return nil
}

// GlobalConfig is the singleton configuration instance
var GlobalConfig *Config

// InitConfig initializes the global configuration
func InitConfig() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	GlobalConfig = config
	log.Printf("[CONFIG] Configuration loaded: provider=%s model=%s", config.AI.Provider, config.AI.Model)
	return nil
}
