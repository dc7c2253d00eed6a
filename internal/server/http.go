package server

import (
	"time"

	"codepulse/internal/config"
	codepulseErrors "codepulse/internal/errors"
	"codepulse/internal/prep"
)

// PrepKitRequest represents the request body for the full prep kit endpoint
type PrepKitRequest struct {
	JobRole        string `json:"jobRole"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// RandomRequest represents the request body for the randomized prep set endpoint
type RandomRequest struct {
	JobRole    string `json:"jobRole"`
	Difficulty string `json:"difficulty,omitempty"`
}

// SolutionRequest represents the request body for the solution guide endpoint
type SolutionRequest struct {
	Title            string `json:"title,omitempty"`
	ProblemStatement string `json:"problemStatement"`
	JobRole          string `json:"jobRole"`
}

// InsightsRequest represents the request body for the company insights endpoint
type InsightsRequest struct {
	Company string `json:"company"`
	JobRole string `json:"jobRole"`
}

// ResumeRequest represents the request body for the resume analysis endpoint
type ResumeRequest struct {
	ResumeText     string `json:"resumeText"`
	JobRole        string `json:"jobRole"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// ChatCreateRequest represents the request body for opening a chat session
type ChatCreateRequest struct {
	JobRole string `json:"jobRole"`
}

// ChatMessageRequest represents one user turn in a chat session. Retry
// resends the turn whose stream previously failed instead of sending Message.
type ChatMessageRequest struct {
	Message string `json:"message,omitempty"`
	Retry   bool   `json:"retry,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Category string `json:"category,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Prep orchestrator shared by all handlers
	Prep *prep.Service

	// Active chat sessions keyed by session ID
	Sessions *SessionStore

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	// Logger
	Logger *codepulseErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct. The
// prep orchestrator and chat session store are built once and shared by
// every request.
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *codepulseErrors.Logger) (*Server, error) {
	prepService, err := prep.NewService(appCfg, logger)
	if err != nil {
		return nil, err
	}

	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *LimiterManager
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Prep:           prepService,
		Sessions:       NewSessionStore(appCfg.Server.ChatSessionTTL, logger),
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}, nil
}
