package setup

import (
	"sync"
	"testing"
	"time"

	"mock-interview/internal/domain"
	"mock-interview/internal/metrics"
	"mock-interview/internal/speech"
)

type recordingOutput struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
}

func (o *recordingOutput) Speak(text string, onEnd func()) {
	o.mu.Lock()
	o.spoken = append(o.spoken, text)
	o.mu.Unlock()
	if onEnd != nil {
		onEnd()
	}
}

func (o *recordingOutput) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels++
}

func (o *recordingOutput) texts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.spoken...)
}

type recordingObserver struct {
	mu       sync.Mutex
	messages []string
	drafts   []string
	redirect chan domain.Setup
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{redirect: make(chan domain.Setup, 1)}
}

func (o *recordingObserver) Message(from Speaker, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, string(from)+": "+text)
}

func (o *recordingObserver) DraftChanged(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drafts = append(o.drafts, text)
}

func (o *recordingObserver) CheckpointChanged(Checkpoint) {}

func (o *recordingObserver) Redirect(setup domain.Setup) {
	o.redirect <- setup
}

func waitForSpoken(t *testing.T, out *recordingOutput, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(out.texts()) < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d utterances, got %v", n, out.texts())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestFlowTypedAnswersRedirect(t *testing.T) {
	t.Parallel()

	out := &recordingOutput{}
	observer := newRecordingObserver()
	m := metrics.NewMetrics()
	flow := NewFlow(Config{}, NewWizard(Messages{}), out, nil, observer, nil, m)
	t.Cleanup(flow.Close)

	flow.Start()
	waitForSpoken(t, out, 1)
	if got := out.texts()[0]; got != DefaultMessages().Greeting {
		t.Fatalf("unexpected greeting %q", got)
	}

	flow.Answer("Backend Engineer")
	flow.Answer("Go and PostgreSQL")
	flow.Answer("twenty five")
	if flow.Checkpoint() != CheckpointCount {
		t.Fatalf("expected to stay at count, got %s", flow.Checkpoint())
	}
	flow.Answer("4")

	select {
	case setup := <-observer.redirect:
		want := domain.Setup{Role: "Backend Engineer", TechStack: "Go and PostgreSQL", Count: 4}
		if setup != want {
			t.Fatalf("expected %+v, got %+v", want, setup)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for redirect")
	}

	if got := m.GetSnapshot().SetupsCompleted; got != 1 {
		t.Fatalf("expected 1 completed setup, got %d", got)
	}

	spoken := out.texts()
	last := spoken[len(spoken)-1]
	if last != "Perfect. Starting your interview for Backend Engineer with 4 questions now." {
		t.Fatalf("unexpected confirmation %q", last)
	}

	flow.Answer("ignored after confirm")
	if got := len(out.texts()); got != len(spoken) {
		t.Fatalf("expected no reply after confirm, got %v", out.texts())
	}
}

func TestFlowDictatedAnswer(t *testing.T) {
	t.Parallel()

	out := &recordingOutput{}
	in := speech.NewLineInput()
	observer := newRecordingObserver()
	flow := NewFlow(Config{}, NewWizard(Messages{}), out, in, observer, nil, nil)
	t.Cleanup(flow.Close)

	in.Feed("dropped before capture")
	flow.StartCapture()
	if !in.Active() {
		t.Fatalf("expected capture to be active")
	}
	in.Feed("Mobile")
	in.Feed("Developer")
	flow.Confirm()

	if in.Active() {
		t.Fatalf("expected capture to stop after confirm")
	}
	if got := flow.Answers().Role; got != "Mobile Developer" {
		t.Fatalf("unexpected role %q", got)
	}
	if flow.Checkpoint() != CheckpointTech {
		t.Fatalf("expected tech checkpoint, got %s", flow.Checkpoint())
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if observer.drafts[len(observer.drafts)-1] != "Mobile Developer" {
		t.Fatalf("unexpected drafts %v", observer.drafts)
	}
}

func TestFlowCloseCancelsRedirect(t *testing.T) {
	t.Parallel()

	out := &recordingOutput{}
	observer := newRecordingObserver()
	flow := NewFlow(Config{RedirectDelay: 50 * time.Millisecond}, NewWizard(Messages{}), out, nil, observer, nil, nil)

	flow.Answer("PM")
	flow.Answer("Agile")
	flow.Answer("3")
	flow.Close()

	select {
	case setup := <-observer.redirect:
		t.Fatalf("unexpected redirect after close: %+v", setup)
	case <-time.After(150 * time.Millisecond):
	}
}
