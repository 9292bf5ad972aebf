package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mock-interview/internal/domain"
	"mock-interview/internal/speech"
)

const waitTimeout = 2 * time.Second

type fakeSource struct {
	questions []string
	err       error

	mu    sync.Mutex
	calls []domain.Setup
}

func (s *fakeSource) Questions(_ context.Context, setup domain.Setup) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, setup)
	s.mu.Unlock()
	return s.questions, s.err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type utterance struct {
	text  string
	onEnd func()
}

// fakeOutput records utterances; the test decides when each one ends.
type fakeOutput struct {
	mu       sync.Mutex
	spoken   []utterance
	cancels  int
	speaking chan utterance
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{speaking: make(chan utterance, 64)}
}

func (o *fakeOutput) Speak(text string, onEnd func()) {
	u := utterance{text: text, onEnd: onEnd}
	o.mu.Lock()
	o.spoken = append(o.spoken, u)
	o.mu.Unlock()
	o.speaking <- u
}

func (o *fakeOutput) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels++
}

func (o *fakeOutput) next(t *testing.T) utterance {
	t.Helper()
	select {
	case u := <-o.speaking:
		return u
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for an utterance")
		return utterance{}
	}
}

func (o *fakeOutput) texts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	texts := make([]string, 0, len(o.spoken))
	for _, u := range o.spoken {
		texts = append(texts, u.text)
	}
	return texts
}

type fakeInput struct {
	mu       sync.Mutex
	starts   int
	stops    int
	active   bool
	startErr error
	onResult func([]speech.Segment)
}

func (i *fakeInput) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.starts++
	if i.startErr != nil {
		return i.startErr
	}
	i.active = true
	return nil
}

func (i *fakeInput) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stops++
	i.active = false
	return nil
}

func (i *fakeInput) OnResult(fn func([]speech.Segment)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onResult = fn
}

func (i *fakeInput) emit(segments ...speech.Segment) {
	i.mu.Lock()
	fn := i.onResult
	i.mu.Unlock()
	fn(segments)
}

func (i *fakeInput) counts() (int, int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.starts, i.stops
}

type fakeHandoff struct {
	id  string
	err error

	mu          sync.Mutex
	submissions []domain.Submission
}

func (h *fakeHandoff) Submit(_ context.Context, submission domain.Submission) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.submissions = append(h.submissions, submission)
	return h.id, h.err
}

type fakeObserver struct {
	mu          sync.Mutex
	states      []State
	questions   []string
	transcripts []string
	completed   chan string
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{completed: make(chan string, 4)}
}

func (o *fakeObserver) StateChanged(state State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, state)
}

func (o *fakeObserver) QuestionChanged(_, _ int, question string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.questions = append(o.questions, question)
}

func (o *fakeObserver) TranscriptChanged(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transcripts = append(o.transcripts, text)
}

func (o *fakeObserver) SpeakingChanged(bool) {}

func (o *fakeObserver) Completed(interviewID string, _ error) {
	o.completed <- interviewID
}

func (o *fakeObserver) snapshotStates() []State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]State(nil), o.states...)
}

func (o *fakeObserver) count(state State) int {
	n := 0
	for _, s := range o.snapshotStates() {
		if s == state {
			n++
		}
	}
	return n
}

func waitForState(t *testing.T, c *Controller, state State) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if c.State() == state {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s, current %s", state, c.State())
}

// settle waits until every event posted so far has been handled.
func settle(c *Controller) {
	c.Turns()
}

var errFetch = errors.New("endpoint unavailable")

func testSetup() domain.Setup {
	return domain.Setup{Role: "Backend Engineer", TechStack: "Go", Count: 2}
}
