package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"codepulse/internal/observability"
	"codepulse/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createPrepKitHandler wraps the full prep kit handler with observability
func (s *Server) createPrepKitHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("codepulse.api")
		ctx, span := tracer.Start(ctx, "api.prep_kit")
		defer span.End()

		var req PrepKitRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobRole) == "" {
			writeErrorResponse(w, "Missing job role", "jobRole field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.job_role", req.JobRole),
			attribute.Int("request.job_description_length", len(req.JobDescription)),
			attribute.String("operation", "prep_kit"),
		)

		input := types.PrepKitInput{
			JobRole:        req.JobRole,
			JobDescription: req.JobDescription,
		}

		metrics := om.GetMetrics()
		var kit *types.PrepKit
		err := metrics.TrackAIOperationWithTokens(ctx, "prep_kit", func(ctx context.Context) *observability.AIOperationResult {
			result, genErr := s.Prep.GenerateFullPrepKit(ctx, input)
			kit = result
			return &observability.AIOperationResult{Error: genErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "prep_kit_generated", false, om)
			writeClassifiedError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "prep_kit_generated", true, om,
			attribute.String("role_category", string(kit.RoleCategory)),
			attribute.Int("general_questions", len(kit.GeneralQuestions)),
			attribute.Int("challenges", len(kit.Challenges)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("role_category", string(kit.RoleCategory)),
		)

		writeJSONResponse(w, kit)
	}
}

// createRandomHandler wraps the randomized prep set handler with observability
func (s *Server) createRandomHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("codepulse.api")
		ctx, span := tracer.Start(ctx, "api.random")
		defer span.End()

		var req RandomRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobRole) == "" {
			writeErrorResponse(w, "Missing job role", "jobRole field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.job_role", req.JobRole),
			attribute.String("request.difficulty", req.Difficulty),
			attribute.String("operation", "random"),
		)

		input := types.RandomizedPrepInput{
			JobRole:    req.JobRole,
			Difficulty: req.Difficulty,
		}

		metrics := om.GetMetrics()
		var set *types.RandomizedPrepSet
		err := metrics.TrackAIOperationWithTokens(ctx, "random", func(ctx context.Context) *observability.AIOperationResult {
			result, genErr := s.Prep.GenerateRandomizedPrepSet(ctx, input)
			set = result
			return &observability.AIOperationResult{Error: genErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "prep_set_generated", false, om)
			writeClassifiedError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "prep_set_generated", true, om,
			attribute.String("difficulty", set.Difficulty),
			attribute.Int("questions", len(set.Questions)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("difficulty", set.Difficulty),
		)

		writeJSONResponse(w, set)
	}
}

// createSolutionHandler wraps the solution guide handler with observability
func (s *Server) createSolutionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("codepulse.api")
		ctx, span := tracer.Start(ctx, "api.solution")
		defer span.End()

		var req SolutionRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobRole) == "" {
			writeErrorResponse(w, "Missing job role", "jobRole field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.ProblemStatement) == "" {
			writeErrorResponse(w, "Missing problem statement", "problemStatement field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.job_role", req.JobRole),
			attribute.Int("request.problem_length", len(req.ProblemStatement)),
			attribute.String("operation", "solution"),
		)

		input := types.SolutionInput{
			Title:            req.Title,
			ProblemStatement: req.ProblemStatement,
			JobRole:          req.JobRole,
		}

		metrics := om.GetMetrics()
		var guide *types.SolutionGuide
		err := metrics.TrackAIOperationWithTokens(ctx, "solution", func(ctx context.Context) *observability.AIOperationResult {
			result, genErr := s.Prep.GenerateMachineCodingSolution(ctx, input)
			guide = result
			return &observability.AIOperationResult{Error: genErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "solution_generated", false, om)
			writeClassifiedError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "solution_generated", true, om,
			attribute.Int("steps", len(guide.Steps)))

		span.SetAttributes(attribute.Bool("success", true))

		writeJSONResponse(w, guide)
	}
}

// createInsightsHandler wraps the company insights handler with observability
func (s *Server) createInsightsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("codepulse.api")
		ctx, span := tracer.Start(ctx, "api.insights")
		defer span.End()

		var req InsightsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobRole) == "" {
			writeErrorResponse(w, "Missing job role", "jobRole field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Company) == "" {
			writeErrorResponse(w, "Missing company", "company field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.company", req.Company),
			attribute.String("request.job_role", req.JobRole),
			attribute.String("operation", "insights"),
		)

		input := types.InsightsInput{
			Company: req.Company,
			JobRole: req.JobRole,
		}

		metrics := om.GetMetrics()
		var insights *types.CompanyInsights
		err := metrics.TrackAIOperationWithTokens(ctx, "insights", func(ctx context.Context) *observability.AIOperationResult {
			result, genErr := s.Prep.GenerateCompanyInsights(ctx, input)
			insights = result
			return &observability.AIOperationResult{Error: genErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "insights_generated", false, om)
			writeClassifiedError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "insights_generated", true, om,
			attribute.Int("sources", len(insights.Sources)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.sources", len(insights.Sources)),
		)

		writeJSONResponse(w, insights)
	}
}

// createResumeHandler wraps the resume analysis handler with observability
func (s *Server) createResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("codepulse.api")
		ctx, span := tracer.Start(ctx, "api.resume")
		defer span.End()

		var req ResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobRole) == "" {
			writeErrorResponse(w, "Missing job role", "jobRole field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.ResumeText) == "" {
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("request.job_role", req.JobRole),
			attribute.String("operation", "resume"),
		)

		input := types.ResumeAnalysisInput{
			ResumeText:     req.ResumeText,
			JobRole:        req.JobRole,
			JobDescription: req.JobDescription,
		}

		metrics := om.GetMetrics()
		var analysis *types.ResumeAnalysis
		err := metrics.TrackAIOperationWithTokens(ctx, "resume", func(ctx context.Context) *observability.AIOperationResult {
			result, genErr := s.Prep.AnalyzeResume(ctx, input)
			analysis = result
			return &observability.AIOperationResult{Error: genErr}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_analyzed", false, om)
			writeClassifiedError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.Int("overall_score", analysis.OverallScore))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("overall_score", analysis.OverallScore),
		)

		writeJSONResponse(w, analysis)
	}
}

// writeJSONResponse encodes a successful JSON response body
func writeJSONResponse(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards flushes so SSE streaming works through the wrapper
func (rw *responseWrapper) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
