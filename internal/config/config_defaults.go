package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 90*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxAttempts", 2)
	v.SetDefault("ai.temperature", 0) // 0 means draw from the sampling ranges
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.backoffBase", time.Second)
	v.SetDefault("ai.backoffJitter", time.Second)

	// Sampling ranges for randomized generation parameters
	v.SetDefault("ai.sampling.temperatureMin", 0.65)
	v.SetDefault("ai.sampling.temperatureMax", 1.05)
	v.SetDefault("ai.sampling.topPMin", 0.80)
	v.SetDefault("ai.sampling.topPMax", 0.98)
	v.SetDefault("ai.sampling.topKMin", 20)
	v.SetDefault("ai.sampling.topKMax", 40)
	v.SetDefault("ai.sampling.seed", 0)

	// Orchestrator defaults: pause between sequential sub-calls
	v.SetDefault("orchestrator.interCallDelay", 1500*time.Millisecond)

	// AI Configuration - PrepKit operation defaults
	v.SetDefault("ai.prepkit.model", "")
	v.SetDefault("ai.prepkit.timeout", 120*time.Second) // Five sequential sub-calls
	v.SetDefault("ai.prepkit.maxAttempts", 2)

	// AI Configuration - Randomized operation defaults
	v.SetDefault("ai.randomized.model", "")
	v.SetDefault("ai.randomized.timeout", 120*time.Second)
	v.SetDefault("ai.randomized.maxAttempts", 2)

	// AI Configuration - Solution operation defaults
	v.SetDefault("ai.solution.model", "")
	v.SetDefault("ai.solution.timeout", 90*time.Second)
	v.SetDefault("ai.solution.maxAttempts", 2)

	// AI Configuration - Insights operation defaults (grounded search)
	v.SetDefault("ai.insights.model", "")
	v.SetDefault("ai.insights.timeout", 90*time.Second)
	v.SetDefault("ai.insights.maxAttempts", 2)

	// AI Configuration - Resume operation defaults
	v.SetDefault("ai.resume.model", "")
	v.SetDefault("ai.resume.timeout", 90*time.Second)
	v.SetDefault("ai.resume.maxAttempts", 2)

	// AI Configuration - Chat operation defaults
	v.SetDefault("ai.chat.model", "")
	v.SetDefault("ai.chat.timeout", 60*time.Second)
	v.SetDefault("ai.chat.maxAttempts", 1) // Streaming sends are not retried automatically

	// Circuit Breaker Configuration defaults for all operations
	for _, op := range []string{"prepkit", "randomized", "solution", "insights", "resume", "chat"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 0) // Streaming responses manage their own deadlines
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.chatSessionTTL", 30*time.Minute)
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "codepulse")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
