package ai

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"codepulse/internal/config"
)

// SamplingParams are the generation knobs drawn for a single attempt.
type SamplingParams struct {
	Temperature float32
	TopP        float32
	TopK        float32
}

// SamplingPolicy produces randomized sampling parameters so repeated requests
// for the same role yield varied material. A fixed seed pins every draw,
// which also covers persona picks, session tokens, and retry jitter since
// they all share this rng.
type SamplingPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
	cfg config.SamplingConfig
}

// NewSamplingPolicy builds a policy from the configured ranges. A zero seed
// means time-seeded (production); tests pass a fixed seed.
func NewSamplingPolicy(cfg config.SamplingConfig) *SamplingPolicy {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SamplingPolicy{
		rng: rand.New(rand.NewSource(seed)),
		cfg: cfg,
	}
}

// Next draws fresh parameters. Every generation attempt calls this, including
// retries, so a failed attempt is never replayed with identical settings.
func (p *SamplingPolicy) Next() SamplingParams {
	p.mu.Lock()
	defer p.mu.Unlock()

	return SamplingParams{
		Temperature: p.drawFloat(p.cfg.TemperatureMin, p.cfg.TemperatureMax),
		TopP:        p.drawFloat(p.cfg.TopPMin, p.cfg.TopPMax),
		TopK:        float32(p.drawInt(p.cfg.TopKMin, p.cfg.TopKMax)),
	}
}

// Pick returns a uniform index in [0, n), used for persona selection.
func (p *SamplingPolicy) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}

// SessionToken returns an 8-hex-char diversity token embedded in prompts so
// textually identical requests still diverge.
func (p *SamplingPolicy) SessionToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%08x", p.rng.Uint32())
}

// JitterDuration returns a uniform duration in [0, max).
func (p *SamplingPolicy) JitterDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Duration(p.rng.Int63n(int64(max)))
}

func (p *SamplingPolicy) drawFloat(min, max float64) float32 {
	if max <= min {
		return float32(min)
	}
	return float32(min + p.rng.Float64()*(max-min))
}

func (p *SamplingPolicy) drawInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + p.rng.Intn(max-min+1)
}
