package ai

import (
	"context"
	"encoding/json"
	"iter"

	"codepulse/internal/types"
)

// GenerationTask describes one structured generation call. Schema may be nil
// for kinds without a registered descriptor; Kind fills it in via SchemaFor.
type GenerationTask struct {
	Operation string
	Kind      TaskKind
	Prompt    string
	System    string
}

// GroundedTask describes a search-grounded free-text generation call.
type GroundedTask struct {
	Operation string
	Prompt    string
	System    string
}

// Provider is the low-level AI surface. Orchestration (sequencing, pauses,
// input validation, user-facing classification) lives above it.
type Provider interface {
	// GenerateStructured runs a schema-constrained call and returns the
	// validated JSON document.
	GenerateStructured(ctx context.Context, task *GenerationTask) (json.RawMessage, *TokenUsage, error)

	// GenerateGrounded runs a search-grounded call and returns prose plus
	// its citation sources. Sources with empty URIs are already filtered.
	GenerateGrounded(ctx context.Context, task *GroundedTask) (string, []types.CitationSource, *TokenUsage, error)

	// OpenChat starts a streaming chat session with the given system
	// instruction.
	OpenChat(ctx context.Context, systemPrompt string) (ChatStreamer, error)

	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// ChatStreamer streams one conversational turn. The sequence yields text
// fragments as they arrive; a non-nil error terminates the stream.
type ChatStreamer interface {
	Stream(ctx context.Context, text string) iter.Seq2[string, error]
}
