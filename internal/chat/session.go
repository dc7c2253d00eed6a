package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"codepulse/internal/ai"
	"codepulse/internal/errors"
)

// State is the lifecycle state of a chat session
type State string

const (
	// StateUninitialized means Start has not been called yet
	StateUninitialized State = "uninitialized"
	// StateInitializing means the kickoff turn is streaming
	StateInitializing State = "initializing"
	// StateIdle means the session is ready to accept a send
	StateIdle State = "idle"
	// StateStreaming means a send is in flight and fragments are arriving
	StateStreaming State = "streaming"
	// StateError means the last turn failed; Retry resends it
	StateError State = "error"
)

// kickoffPrompt opens the conversation before the user types anything
const kickoffPrompt = "Introduce yourself as the interviewer and begin the interview."

// Role identifies who authored a transcript message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one completed transcript entry. Partial model output from a
// failed stream never lands here.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session is a streaming interview coaching conversation. All methods are
// safe for concurrent use; at most one send is in flight at a time.
type Session struct {
	id       string
	jobRole  string
	streamer ai.ChatStreamer
	logger   *errors.Logger

	mu           sync.Mutex
	state        State
	transcript   []Message
	lastSent     string
	pendingRetry string
	retryFrom    State
	lastErr      *errors.UserError
	lastActive   time.Time
}

// NewSession wraps an open model stream in a session. The session starts
// uninitialized; nothing reaches the model until Start.
func NewSession(jobRole string, streamer ai.ChatStreamer, logger *errors.Logger) *Session {
	return &Session{
		id:         uuid.NewString(),
		jobRole:    jobRole,
		streamer:   streamer,
		logger:     logger,
		state:      StateUninitialized,
		lastActive: time.Now(),
	}
}

// Start streams the interviewer's opening turn. Only valid once, on a
// fresh session; a kickoff failure leaves the session in the error state
// and Retry replays it.
func (s *Session) Start(ctx context.Context, onFragment func(string)) error {
	s.mu.Lock()
	if s.state != StateUninitialized {
		s.mu.Unlock()
		return errors.NewAIError(errors.ErrCodeChatState,
			"Session is already started", nil)
	}
	s.state = StateInitializing
	s.lastActive = time.Now()
	s.mu.Unlock()

	return s.stream(ctx, kickoffPrompt, onFragment)
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// JobRole returns the role this session coaches for
func (s *Session) JobRole() string { return s.jobRole }

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the classified error from the most recent failed send,
// or nil when the session is healthy.
func (s *Session) LastError() *errors.UserError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastActive returns when the session last processed a send, for idle expiry
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Transcript returns a copy of the completed messages
func (s *Session) Transcript() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Send streams one user turn to the model. Fragments are delivered through
// onFragment as they arrive. Blank text and an exact repeat of the previous
// successful text are ignored without touching the model. A second Send
// while one is already in flight is ignored, not queued.
func (s *Session) Send(ctx context.Context, text string, onFragment func(string)) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	s.mu.Lock()
	if s.state == StateUninitialized {
		s.mu.Unlock()
		return errors.NewAIError(errors.ErrCodeChatState,
			"Session has not been started", nil)
	}
	if s.state == StateStreaming || s.state == StateInitializing {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Debug("Send ignored while a turn is in flight", "session_id", s.id)
		}
		return nil
	}
	if s.state == StateIdle && trimmed == s.lastSent {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Debug("Duplicate send suppressed", "session_id", s.id)
		}
		return nil
	}
	s.state = StateStreaming
	s.lastSent = trimmed
	s.lastActive = time.Now()
	s.transcript = append(s.transcript, Message{Role: RoleUser, Text: trimmed})
	s.mu.Unlock()

	return s.stream(ctx, trimmed, onFragment)
}

// Retry resends the text whose stream failed, re-entering the state the
// failure happened in. It only applies in the error state; the retried
// send bypasses duplicate suppression.
func (s *Session) Retry(ctx context.Context, onFragment func(string)) error {
	s.mu.Lock()
	if s.state != StateError || s.pendingRetry == "" {
		s.mu.Unlock()
		return errors.NewAIError(errors.ErrCodeChatState,
			"Nothing to retry", nil)
	}
	text := s.pendingRetry
	s.state = s.retryFrom
	s.lastActive = time.Now()
	if s.retryFrom == StateStreaming {
		s.lastSent = text
		s.transcript = append(s.transcript, Message{Role: RoleUser, Text: text})
	}
	s.mu.Unlock()

	return s.stream(ctx, text, onFragment)
}

func (s *Session) stream(ctx context.Context, text string, onFragment func(string)) error {
	var reply strings.Builder
	var streamErr error

	for fragment, err := range s.streamer.Stream(ctx, text) {
		if err != nil {
			streamErr = err
			break
		}
		reply.WriteString(fragment)
		if onFragment != nil {
			onFragment(fragment)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	if streamErr != nil {
		// Drop the user turn along with the partial reply so a retry
		// replays the exchange from scratch
		if n := len(s.transcript); n > 0 && s.transcript[n-1].Role == RoleUser {
			s.transcript = s.transcript[:n-1]
		}
		s.retryFrom = s.state
		s.state = StateError
		s.pendingRetry = text
		s.lastErr = errors.Classify(streamErr)
		if s.logger != nil {
			s.logger.LogError(streamErr, "Chat stream failed",
				"session_id", s.id,
				"category", string(s.lastErr.Category))
		}
		return streamErr
	}

	s.transcript = append(s.transcript, Message{Role: RoleModel, Text: reply.String()})
	s.state = StateIdle
	s.pendingRetry = ""
	s.lastErr = nil
	return nil
}
