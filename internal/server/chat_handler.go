package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"codepulse/internal/chat"
	codepulseErrors "codepulse/internal/errors"
	"codepulse/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// SessionStore keeps active chat sessions and evicts the ones that have
// been idle past their TTL.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*chat.Session
	ttl      time.Duration
	done     chan struct{}
	logger   *codepulseErrors.Logger
}

// NewSessionStore creates a store with a background eviction loop
func NewSessionStore(ttl time.Duration, logger *codepulseErrors.Logger) *SessionStore {
	store := &SessionStore{
		sessions: make(map[string]*chat.Session),
		ttl:      ttl,
		done:     make(chan struct{}),
		logger:   logger,
	}
	go store.evictionLoop()
	return store
}

// Add registers a session under its ID
func (st *SessionStore) Add(session *chat.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.ID()] = session
}

// Get returns the session for an ID, or nil when unknown or expired
func (st *SessionStore) Get(id string) *chat.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[id]
}

// Remove drops a session from the store
func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of active sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close stops the eviction loop
func (st *SessionStore) Close() {
	close(st.done)
}

func (st *SessionStore) evictionLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			st.evictIdle()
		case <-st.done:
			return
		}
	}
}

// evictIdle removes sessions past the TTL. Sessions with a stream in
// flight are left alone regardless of age.
func (st *SessionStore) evictIdle() {
	if st.ttl <= 0 {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := time.Now().Add(-st.ttl)
	for id, session := range st.sessions {
		if state := session.State(); state == chat.StateStreaming || state == chat.StateInitializing {
			continue
		}
		if session.LastActive().Before(cutoff) {
			delete(st.sessions, id)
			if st.logger != nil {
				st.logger.Debug("Expired idle chat session", "session_id", id)
			}
		}
	}
}

// createChatSessionHandler opens a new coaching session for a job role
func (s *Server) createChatSessionHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("codepulse.api")
		ctx, span := tracer.Start(ctx, "api.chat_create")
		defer span.End()

		var req ChatCreateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobRole) == "" {
			writeErrorResponse(w, "Missing job role", "jobRole field is required", http.StatusBadRequest)
			return
		}

		session, err := s.Prep.NewChatSession(ctx, req.JobRole)
		if err != nil {
			span.RecordError(err)
			writeClassifiedError(w, err)
			return
		}

		// Run the interviewer's kickoff turn before answering. A failed
		// kickoff still registers the session; the client retries it
		// through the messages endpoint.
		if err := session.Start(ctx, nil); err != nil {
			span.RecordError(err)
		}

		s.Sessions.Add(session)

		span.SetAttributes(
			attribute.String("chat.session_id", session.ID()),
			attribute.String("request.job_role", req.JobRole),
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		response := map[string]any{
			"sessionId":  session.ID(),
			"jobRole":    session.JobRole(),
			"state":      session.State(),
			"transcript": session.Transcript(),
		}
		if lastErr := session.LastError(); lastErr != nil {
			response["lastError"] = lastErr
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			span.RecordError(err)
		}
	}
}

// chatTranscriptHandler returns the completed transcript of a session
func (s *Server) chatTranscriptHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := s.Sessions.Get(r.PathValue("id"))
		if session == nil {
			writeErrorResponse(w, "Unknown session", "No chat session with that ID", http.StatusNotFound)
			return
		}

		response := map[string]any{
			"sessionId":  session.ID(),
			"jobRole":    session.JobRole(),
			"state":      session.State(),
			"transcript": session.Transcript(),
		}
		if lastErr := session.LastError(); lastErr != nil {
			response["lastError"] = lastErr
		}

		writeJSONResponse(w, response)
	}
}

// chatMessageHandler streams one conversational turn back over SSE.
// A retry request replays the turn whose stream previously failed.
func (s *Server) chatMessageHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("codepulse.api")
		ctx, span := tracer.Start(ctx, "api.chat_message")
		defer span.End()

		session := s.Sessions.Get(r.PathValue("id"))
		if session == nil {
			writeErrorResponse(w, "Unknown session", "No chat session with that ID", http.StatusNotFound)
			return
		}

		var req ChatMessageRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if !req.Retry && strings.TrimSpace(req.Message) == "" {
			writeErrorResponse(w, "Missing message", "message field is required", http.StatusBadRequest)
			return
		}

		// The session rejects concurrent sends itself; this pre-check lets
		// us answer with a proper status before committing to SSE.
		if state := session.State(); state == chat.StateStreaming || state == chat.StateInitializing {
			writeErrorResponse(w, "Session busy", "A message is already being processed", http.StatusConflict)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeErrorResponse(w, "Streaming unsupported", "Response writer does not support streaming", http.StatusInternalServerError)
			return
		}

		span.SetAttributes(
			attribute.String("chat.session_id", session.ID()),
			attribute.Bool("chat.retry", req.Retry),
		)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		onFragment := func(fragment string) {
			payload, err := json.Marshal(map[string]string{"text": fragment})
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}

		var err error
		if req.Retry {
			err = session.Retry(ctx, onFragment)
		} else {
			err = session.Send(ctx, req.Message, onFragment)
		}

		metrics := om.GetMetrics()
		metrics.RecordBusinessMetric(ctx, "chat_message", err == nil, om,
			attribute.Bool("retry", req.Retry))

		if err != nil {
			span.RecordError(err)
			classified := codepulseErrors.Classify(err)
			payload, marshalErr := json.Marshal(map[string]string{
				"category": string(classified.Category),
				"message":  classified.Message,
			})
			if marshalErr == nil {
				fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
				flusher.Flush()
			}
			return
		}

		fmt.Fprintf(w, "event: done\ndata: {\"state\":%q}\n\n", session.State())
		flusher.Flush()
	}
}

// chatCloseHandler discards a session before its TTL
func (s *Server) chatCloseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if s.Sessions.Get(id) == nil {
			writeErrorResponse(w, "Unknown session", "No chat session with that ID", http.StatusNotFound)
			return
		}

		s.Sessions.Remove(id)
		w.WriteHeader(http.StatusNoContent)
	}
}
