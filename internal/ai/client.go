package ai

import (
	"context"
	"os"
	"sync"

	codepulseErrors "codepulse/internal/errors"

	"google.golang.org/genai"
)

// envAPIKey is honored as a credential fallback when config and Vault supply
// nothing.
const envAPIKey = "GEMINI_API_KEY"

// lazyClient memoizes genai client construction so that building a provider
// never requires a credential or network access. An absent key surfaces at
// the first generation call, not at process start, which keeps commands like
// `codepulse version` and config validation usable without a key.
type lazyClient struct {
	apiKey string

	once   sync.Once
	client *genai.Client
	err    error
}

func newLazyClient(apiKey string) *lazyClient {
	return &lazyClient{apiKey: apiKey}
}

func (l *lazyClient) get(ctx context.Context) (*genai.Client, error) {
	l.once.Do(func() {
		key := l.apiKey
		if key == "" {
			key = os.Getenv(envAPIKey)
		}
		if key == "" {
			l.err = codepulseErrors.NewConfigError(codepulseErrors.ErrCodeMissingAPIKey,
				"No Gemini API key configured. Set ai.apiKey, "+envAPIKey+", or a Vault secret path.", nil)
			return
		}
		l.client, l.err = genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	})
	return l.client, l.err
}
