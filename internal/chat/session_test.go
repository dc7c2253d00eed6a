package chat

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	codepulseErrors "codepulse/internal/errors"
)

// scriptedStreamer yields canned fragments, optionally failing mid-stream
type scriptedStreamer struct {
	mu        sync.Mutex
	calls     []string
	fragments []string
	failAfter int // fail after this many fragments; -1 means never
}

func (f *scriptedStreamer) Stream(ctx context.Context, text string) iter.Seq2[string, error] {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	return func(yield func(string, error) bool) {
		for i, fragment := range f.fragments {
			if f.failAfter >= 0 && i == f.failAfter {
				yield("", errors.New("stream interrupted: 503 service unavailable"))
				return
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

func (f *scriptedStreamer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestSession(streamer *scriptedStreamer) *Session {
	logger, _ := codepulseErrors.New("error")
	return NewSession("Backend Engineer", streamer, logger)
}

// startedSession builds a session and runs the kickoff turn
func startedSession(t *testing.T, streamer *scriptedStreamer) *Session {
	t.Helper()
	session := newTestSession(streamer)
	if err := session.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return session
}

func TestNewSessionIsUninitialized(t *testing.T) {
	session := newTestSession(&scriptedStreamer{failAfter: -1})
	if session.State() != StateUninitialized {
		t.Errorf("Expected uninitialized state, got %s", session.State())
	}
}

func TestStartStreamsKickoffIntro(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"Hi, I'm ", "your interviewer."}, failAfter: -1}
	session := newTestSession(streamer)

	var got []string
	err := session.Start(context.Background(), func(fragment string) {
		got = append(got, fragment)
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if strings.Join(got, "") != "Hi, I'm your interviewer." {
		t.Errorf("Kickoff fragments not delivered: %v", got)
	}
	if session.State() != StateIdle {
		t.Errorf("Expected idle after kickoff, got %s", session.State())
	}

	transcript := session.Transcript()
	if len(transcript) != 1 || transcript[0].Role != RoleModel {
		t.Fatalf("Kickoff should produce one model message, got %+v", transcript)
	}
}

func TestStartTwiceIsRejected(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"intro"}, failAfter: -1}
	session := startedSession(t, streamer)

	err := session.Start(context.Background(), nil)
	if err == nil {
		t.Fatal("Second Start should be rejected")
	}
	var appErr *codepulseErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != codepulseErrors.ErrCodeChatState {
		t.Errorf("Expected CHAT_STATE error, got %v", err)
	}
}

func TestSendBeforeStartIsRejected(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"x"}, failAfter: -1}
	session := newTestSession(streamer)

	err := session.Send(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("Send before Start should be rejected")
	}
	var appErr *codepulseErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != codepulseErrors.ErrCodeChatState {
		t.Errorf("Expected CHAT_STATE error, got %v", err)
	}
	if streamer.callCount() != 0 {
		t.Error("Rejected send must not reach the model")
	}
}

func TestKickoffFailureEntersErrorAndRetryReinitializes(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"intro"}, failAfter: 0}
	session := newTestSession(streamer)

	if err := session.Start(context.Background(), nil); err == nil {
		t.Fatal("Expected kickoff failure")
	}
	if session.State() != StateError {
		t.Fatalf("Expected error state, got %s", session.State())
	}
	if len(session.Transcript()) != 0 {
		t.Errorf("Failed kickoff must leave an empty transcript, got %+v", session.Transcript())
	}

	// Stream recovers
	streamer.failAfter = -1

	if err := session.Retry(context.Background(), nil); err != nil {
		t.Fatalf("Kickoff retry failed: %v", err)
	}
	if session.State() != StateIdle {
		t.Errorf("Expected idle after recovered kickoff, got %s", session.State())
	}
	transcript := session.Transcript()
	if len(transcript) != 1 || transcript[0].Role != RoleModel {
		t.Errorf("Recovered kickoff should produce only the intro, got %+v", transcript)
	}
}

func TestSendStreamsFragmentsAndBuildsTranscript(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"Hello", ", ", "candidate."}, failAfter: -1}
	session := startedSession(t, streamer)

	var got []string
	err := session.Send(context.Background(), "Ask me a question", func(fragment string) {
		got = append(got, fragment)
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if strings.Join(got, "") != "Hello, candidate." {
		t.Errorf("Fragments not delivered in order: %v", got)
	}

	transcript := session.Transcript()
	if len(transcript) != 3 {
		t.Fatalf("Expected intro plus one exchange, got %d messages", len(transcript))
	}
	if transcript[1].Role != RoleUser || transcript[1].Text != "Ask me a question" {
		t.Errorf("Unexpected user message: %+v", transcript[1])
	}
	if transcript[2].Role != RoleModel || transcript[2].Text != "Hello, candidate." {
		t.Errorf("Unexpected model message: %+v", transcript[2])
	}
	if session.State() != StateIdle {
		t.Errorf("Expected idle state, got %s", session.State())
	}
}

func TestSendIgnoresBlankText(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"x"}, failAfter: -1}
	session := startedSession(t, streamer)

	if err := session.Send(context.Background(), "   \n", nil); err != nil {
		t.Fatalf("Blank send should be a no-op, got %v", err)
	}
	if streamer.callCount() != 1 {
		t.Error("Blank send must not reach the model")
	}
}

// gatedStreamer blocks each stream until a release token arrives
type gatedStreamer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (g *gatedStreamer) Stream(ctx context.Context, text string) iter.Seq2[string, error] {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return func(yield func(string, error) bool) {
		<-g.release
		yield("done", nil)
	}
}

func (g *gatedStreamer) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestSendWhileInFlightIsIgnored(t *testing.T) {
	gate := &gatedStreamer{release: make(chan struct{}, 1)}
	gate.release <- struct{}{} // let the kickoff through
	logger, _ := codepulseErrors.New("error")
	session := NewSession("Backend Engineer", gate, logger)
	if err := session.Start(context.Background(), nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- session.Send(context.Background(), "question one", nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for session.State() != StateStreaming {
		if time.Now().After(deadline) {
			t.Fatal("First send never entered the streaming state")
		}
		time.Sleep(time.Millisecond)
	}

	if err := session.Send(context.Background(), "question two", nil); err != nil {
		t.Fatalf("In-flight send must be ignored, got %v", err)
	}

	gate.release <- struct{}{}
	if err := <-firstDone; err != nil {
		t.Fatalf("First send failed: %v", err)
	}

	if gate.callCount() != 2 {
		t.Errorf("Ignored send must not reach the model, got %d calls", gate.callCount())
	}
	transcript := session.Transcript()
	if len(transcript) != 3 {
		t.Errorf("Ignored send must not grow the transcript, got %+v", transcript)
	}
}

func TestSendSuppressesExactDuplicate(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"answer"}, failAfter: -1}
	session := startedSession(t, streamer)

	if err := session.Send(context.Background(), "same question", nil); err != nil {
		t.Fatalf("First send failed: %v", err)
	}
	if err := session.Send(context.Background(), "same question", nil); err != nil {
		t.Fatalf("Duplicate send should be a silent no-op, got %v", err)
	}

	if streamer.callCount() != 2 {
		t.Errorf("Duplicate text must not reach the model, got %d calls", streamer.callCount())
	}
	if len(session.Transcript()) != 3 {
		t.Errorf("Duplicate send must not grow the transcript")
	}
}

func TestSendDifferentTextAfterSuccessGoesThrough(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"answer"}, failAfter: -1}
	session := startedSession(t, streamer)

	if err := session.Send(context.Background(), "first", nil); err != nil {
		t.Fatalf("First send failed: %v", err)
	}
	if err := session.Send(context.Background(), "second", nil); err != nil {
		t.Fatalf("Second send failed: %v", err)
	}
	if streamer.callCount() != 3 {
		t.Errorf("Expected kickoff plus 2 model calls, got %d", streamer.callCount())
	}
}

func TestFailedStreamDiscardsPartialAndEntersErrorState(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"partial ", "output"}, failAfter: -1}
	session := startedSession(t, streamer)

	streamer.failAfter = 1
	err := session.Send(context.Background(), "doomed question", nil)
	if err == nil {
		t.Fatal("Expected stream failure")
	}

	if session.State() != StateError {
		t.Fatalf("Expected error state, got %s", session.State())
	}
	if len(session.Transcript()) != 1 {
		t.Errorf("Partial output must be discarded, transcript: %+v", session.Transcript())
	}

	classified := session.LastError()
	if classified == nil {
		t.Fatal("Expected a classified error")
	}
	if classified.Category != codepulseErrors.CategoryServiceUnavailable {
		t.Errorf("Expected service-unavailable category, got %s", classified.Category)
	}
}

func TestRetryResendsFailedText(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"recovered answer"}, failAfter: -1}
	session := startedSession(t, streamer)

	streamer.failAfter = 0
	if err := session.Send(context.Background(), "flaky question", nil); err == nil {
		t.Fatal("Expected first send to fail")
	}

	// Stream recovers
	streamer.failAfter = -1

	if err := session.Retry(context.Background(), nil); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}

	calls := streamer.calls
	if len(calls) != 3 || calls[1] != "flaky question" || calls[2] != "flaky question" {
		t.Errorf("Retry should resend the same text, got %v", calls)
	}

	if session.State() != StateIdle {
		t.Errorf("Expected idle after recovery, got %s", session.State())
	}
	transcript := session.Transcript()
	if len(transcript) != 3 || transcript[2].Text != "recovered answer" {
		t.Errorf("Expected recovered exchange in transcript, got %+v", transcript)
	}
	if session.LastError() != nil {
		t.Error("Recovered session should clear the classified error")
	}
}

func TestRetryWithoutFailureIsRejected(t *testing.T) {
	streamer := &scriptedStreamer{fragments: []string{"x"}, failAfter: -1}
	session := startedSession(t, streamer)

	err := session.Retry(context.Background(), nil)
	if err == nil {
		t.Fatal("Retry on a healthy session should be rejected")
	}
	var appErr *codepulseErrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != codepulseErrors.ErrCodeChatState {
		t.Errorf("Expected CHAT_STATE error, got %v", err)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	streamer := &scriptedStreamer{failAfter: -1}
	a := newTestSession(streamer)
	b := newTestSession(streamer)
	if a.ID() == b.ID() {
		t.Error("Sessions must have distinct identifiers")
	}
	if a.ID() == "" {
		t.Error("Session ID must not be empty")
	}
}
