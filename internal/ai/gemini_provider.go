package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"time"

	"codepulse/internal/config"
	codepulseErrors "codepulse/internal/errors"
	"codepulse/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	lazy           *lazyClient
	config         *config.OperationAIConfig
	sampling       *SamplingPolicy
	circuitBreaker *GenerationCircuitBreaker
	chatBreaker    *ChatCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *codepulseErrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a provider for a specific operation. The genai
// client itself is constructed lazily on first use, so this never fails on a
// missing credential.
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, sampling *SamplingPolicy, logger *codepulseErrors.Logger) (*GeminiProvider, error) {
	return &GeminiProvider{
		lazy:           newLazyClient(cfg.APIKey),
		config:         cfg,
		sampling:       sampling,
		circuitBreaker: NewGenerationCircuitBreaker(operationType, cfg, logger),
		chatBreaker:    NewChatCircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// generationResult is what one successful generation attempt produces, in a
// single type so the circuit breaker covers structured and grounded calls
// alike.
type generationResult struct {
	Raw     json.RawMessage
	Text    string
	Sources []types.CitationSource
	Usage   *TokenUsage
}

// GenerateStructured runs a schema-constrained generation with retries and
// fresh sampling parameters per attempt. The response is parsed and
// deep-validated before the call counts as successful, so a malformed body
// consumes a retry rather than escaping upward.
func (g *GeminiProvider) GenerateStructured(ctx context.Context, task *GenerationTask) (json.RawMessage, *TokenUsage, error) {
	tracer := otel.Tracer("codepulse.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+task.Operation)
	defer span.End()

	desc := SchemaFor(task.Kind)

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.String("ai.task_kind", string(task.Kind)),
		attribute.Int("input.prompt_length", len(task.Prompt)),
	)

	result, err := g.circuitBreaker.Execute(func() (*generationResult, error) {
		return executeWithRetry(ctx, g.retryOptions(), g.sampling, g.logger, task.Operation,
			func(ctx context.Context, attempt int) (*generationResult, error) {
				client, err := g.lazy.get(ctx)
				if err != nil {
					return nil, err
				}

				cfg := g.generationConfig(desc, task.System)
				resp, err := client.Models.GenerateContent(ctx, g.config.Model, genai.Text(task.Prompt), cfg)
				if err != nil {
					return nil, err
				}

				raw, err := ParseResponse(resp.Text(), desc)
				if err != nil {
					return nil, err
				}

				return &generationResult{Raw: raw, Usage: extractTokenUsage(resp)}, nil
			})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, codepulseErrors.NewAIError(codepulseErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+task.Operation, err)
	}

	recordTokenAttributes(span, result.Usage)
	span.SetAttributes(attribute.Bool("success", true))
	return result.Raw, result.Usage, nil
}

// GenerateGrounded runs a search-grounded call. The output is prose, so only
// the empty-response check applies; citation sources come from the grounding
// metadata with empty URIs dropped. Missing metadata is a normal outcome,
// not an error.
func (g *GeminiProvider) GenerateGrounded(ctx context.Context, task *GroundedTask) (string, []types.CitationSource, *TokenUsage, error) {
	tracer := otel.Tracer("codepulse.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+task.Operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Bool("ai.grounded", true),
		attribute.Int("input.prompt_length", len(task.Prompt)),
	)

	result, err := g.circuitBreaker.Execute(func() (*generationResult, error) {
		return executeWithRetry(ctx, g.retryOptions(), g.sampling, g.logger, task.Operation,
			func(ctx context.Context, attempt int) (*generationResult, error) {
				client, err := g.lazy.get(ctx)
				if err != nil {
					return nil, err
				}

				cfg := g.generationConfig(nil, task.System)
				cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}

				resp, err := client.Models.GenerateContent(ctx, g.config.Model, genai.Text(task.Prompt), cfg)
				if err != nil {
					return nil, err
				}

				text := strings.TrimSpace(resp.Text())
				if text == "" {
					return nil, codepulseErrors.NewAIError(codepulseErrors.ErrCodeEmptyResponse,
						"Model returned an empty response", nil)
				}

				return &generationResult{
					Text:    text,
					Sources: extractCitations(resp),
					Usage:   extractTokenUsage(resp),
				}, nil
			})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, nil, codepulseErrors.NewAIError(codepulseErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+task.Operation, err)
	}

	recordTokenAttributes(span, result.Usage)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.source_count", len(result.Sources)),
	)
	return result.Text, result.Sources, result.Usage, nil
}

// OpenChat starts a streaming chat session with the given system
// instruction. Creation itself is cheap; the first network activity happens
// on the first streamed turn.
func (g *GeminiProvider) OpenChat(ctx context.Context, systemPrompt string) (ChatStreamer, error) {
	client, err := g.lazy.get(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{}
	if g.useSystemPrompts() && systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	chat, err := g.chatBreaker.ExecuteChat(func() (*genai.Chat, error) {
		return client.Chats.Create(ctx, g.config.Model, cfg, nil)
	})
	if err != nil {
		return nil, codepulseErrors.NewAIError(codepulseErrors.ErrCodeAIServiceFailed,
			"Failed to create chat session", err)
	}

	return &geminiChatStream{chat: chat}, nil
}

// geminiChatStream adapts a genai chat to the ChatStreamer interface.
type geminiChatStream struct {
	chat *genai.Chat
}

func (s *geminiChatStream) Stream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if err != nil {
				yield("", err)
				return
			}
			fragment := resp.Text()
			if fragment == "" {
				continue
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	client, err := g.lazy.get(ctx)
	if err != nil {
		modelInfo.Error = err.Error()
		return modelInfo
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

const modelCheckTimeout = 10 * time.Second

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// The genai client holds no closable resources in this usage
	return nil
}

// generationConfig builds the per-attempt genai config. Sampling parameters
// are drawn fresh each call; a configured fixed temperature overrides the
// random draw for that knob only.
func (g *GeminiProvider) generationConfig(desc *SchemaDescriptor, system string) *genai.GenerateContentConfig {
	params := g.sampling.Next()
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		params.Temperature = *g.config.Temperature
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(params.Temperature),
		TopP:        genai.Ptr(params.TopP),
		TopK:        genai.Ptr(params.TopK),
	}

	if desc != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = desc.Response
	}

	if g.useSystemPrompts() && system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	return cfg
}

func (g *GeminiProvider) useSystemPrompts() bool {
	return g.config.UseSystemPrompts == nil || *g.config.UseSystemPrompts
}

func (g *GeminiProvider) retryOptions() RetryOptions {
	opts := RetryOptions{
		BaseDelay:     g.config.BackoffBase,
		JitterCeiling: g.config.BackoffJitter,
	}
	if g.config.MaxAttempts != nil {
		opts.MaxAttempts = *g.config.MaxAttempts
	}
	if g.config.Timeout != nil {
		opts.AttemptTimeout = *g.config.Timeout
	}
	return opts
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from a Gemini response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// extractCitations pulls web sources out of grounding metadata. Chunks
// without a URI are dropped.
func extractCitations(result *genai.GenerateContentResponse) []types.CitationSource {
	sources := []types.CitationSource{}
	if result == nil || len(result.Candidates) == 0 {
		return sources
	}

	metadata := result.Candidates[0].GroundingMetadata
	if metadata == nil {
		return sources
	}

	for _, chunk := range metadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, types.CitationSource{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}

	return sources
}

func recordTokenAttributes(span trace.Span, usage *TokenUsage) {
	if usage == nil {
		return
	}
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)
}
