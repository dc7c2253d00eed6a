package ai

import (
	"encoding/json"
	"strings"

	codepulseErrors "codepulse/internal/errors"
)

const malformedSnippetLen = 80

// ParseResponse validates raw model output and returns it as JSON. Checks are
// staged: empty first, then a cheap shape check (structured output must start
// with '{' or '['), then a full JSON decode, then deep schema validation when
// a descriptor is supplied. Each stage fails with its own error code so the
// caller can tell a refusal ("I can't help with that") from broken JSON.
// Parsing never talks to the model; retries happen above this layer.
func ParseResponse(raw string, desc *SchemaDescriptor) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)

	if trimmed == "" {
		return nil, codepulseErrors.NewAIError(codepulseErrors.ErrCodeEmptyResponse,
			"Model returned an empty response", nil)
	}

	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, codepulseErrors.NewAIError(codepulseErrors.ErrCodeMalformedFormat,
			"Model response is not JSON", nil).
			WithContext("snippet", snippet(trimmed))
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return nil, codepulseErrors.NewAIError(codepulseErrors.ErrCodeJSONSyntax,
			"Model response is not valid JSON", err)
	}

	if desc != nil {
		if err := desc.Validate([]byte(trimmed)); err != nil {
			return nil, err
		}
	}

	return json.RawMessage(trimmed), nil
}

func snippet(s string) string {
	if len(s) > malformedSnippetLen {
		return s[:malformedSnippetLen] + "..."
	}
	return s
}
