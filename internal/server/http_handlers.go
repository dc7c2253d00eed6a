package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	codepulseErrors "codepulse/internal/errors"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "codepulse",
		"version": s.Version,
	}

	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	modelInfo := s.Prep.GetModelInfo(ctx)
	response["ai_model"] = modelInfo

	overallHealthy := modelInfo != nil && modelInfo.Available

	response["chat_sessions"] = map[string]any{
		"active": s.Sessions.Len(),
		"ttl":    s.AppConfig.Server.ChatSessionTTL.String(),
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "codepulse",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"chat_sessions": map[string]any{
			"active": s.Sessions.Len(),
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeClassifiedError maps an operation failure to a user-safe response.
// Validation failures surface as 400; everything else goes through the
// classifier so raw provider errors never reach the client.
func writeClassifiedError(w http.ResponseWriter, err error) {
	var appErr *codepulseErrors.AppError
	if errors.As(err, &appErr) && appErr.Code == codepulseErrors.ErrCodeMissingInput {
		writeErrorResponse(w, "Missing input", appErr.Message, http.StatusBadRequest)
		return
	}

	classified := codepulseErrors.Classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCategory(classified.Category))

	response := ErrorResponse{
		Error:    "Operation failed",
		Message:  classified.Message,
		Category: string(classified.Category),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// statusForCategory maps a classified failure to an HTTP status code
func statusForCategory(category codepulseErrors.Category) int {
	switch category {
	case codepulseErrors.CategoryInvalidRequest:
		return http.StatusBadRequest
	case codepulseErrors.CategoryQuotaExceeded:
		return http.StatusTooManyRequests
	case codepulseErrors.CategoryContentBlocked:
		return http.StatusUnprocessableEntity
	case codepulseErrors.CategoryServiceUnavailable, codepulseErrors.CategoryGenericUnavailable:
		return http.StatusServiceUnavailable
	case codepulseErrors.CategoryInvalidCredential:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
