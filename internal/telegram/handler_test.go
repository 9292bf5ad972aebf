package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"mock-interview/internal/conversation"
	"mock-interview/internal/domain"
	"mock-interview/internal/metrics"
	"mock-interview/internal/storage"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSender) SendMessage(_ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeSender) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type fakeSource struct{}

func (fakeSource) Questions(_ context.Context, s domain.Setup) ([]string, error) {
	return []string{"Q1 about " + s.TechStack, "Q2"}[:s.Count], nil
}

type fakeHandoff struct {
	mu  sync.Mutex
	got []domain.Submission
}

func (f *fakeHandoff) Submit(_ context.Context, sub domain.Submission) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, sub)
	return "iv-42", nil
}

func (f *fakeHandoff) submissions() []domain.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Submission(nil), f.got...)
}

type fakeReader struct{}

func (fakeReader) FeedbackByInterview(_ context.Context, id string) (*storage.FeedbackRecord, error) {
	if id != "iv-42" {
		return nil, storage.ErrNotFound
	}
	return &storage.FeedbackRecord{
		InterviewID: id,
		Assessment:  domain.Assessment{TotalScore: 80, Feedback: "Good"},
	}, nil
}

const testUser = 7

func message(text string) Update {
	return Update{Message: &Message{
		From: &User{ID: testUser, FirstName: "Ann"},
		Chat: &Chat{ID: 100},
		Text: text,
	}}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func hasMessage(sender *fakeSender, substr string) func() bool {
	return func() bool {
		for _, m := range sender.all() {
			if strings.Contains(m, substr) {
				return true
			}
		}
		return false
	}
}

func (h *Handler) controller(userID int64) *conversation.Controller {
	h.sessionsMutex.RLock()
	sess := h.sessions[userID]
	h.sessionsMutex.RUnlock()
	if sess == nil {
		return nil
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Controller
}

func listening(h *Handler) func() bool {
	return func() bool {
		ctrl := h.controller(testUser)
		return ctrl != nil && ctrl.State() == conversation.StateListening
	}
}

func TestHandlerRunsSetupAndInterview(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	handoff := &fakeHandoff{}
	h := NewHandler(sender, Config{RateLimit: 100}, fakeSource{}, handoff, fakeReader{}, nil, metrics.NewMetrics())
	ctx := context.Background()

	h.HandleUpdate(ctx, message("/start"))
	waitFor(t, "setup greeting", hasMessage(sender, "what role"))

	h.HandleUpdate(ctx, message("Backend Engineer"))
	h.HandleUpdate(ctx, message("Go"))
	h.HandleUpdate(ctx, message("25"))
	waitFor(t, "count re-prompt", hasMessage(sender, "between 1 and 20"))
	h.HandleUpdate(ctx, message("2"))

	waitFor(t, "greeting", hasMessage(sender, "Hello Ann. I'm ready to interview you for the Backend Engineer position."))
	waitFor(t, "first answer capture", listening(h))
	if !hasMessage(sender, "🎙 Q1 about Go")() {
		t.Fatalf("expected first question, got %v", sender.all())
	}

	h.HandleUpdate(ctx, message("I build services"))
	h.HandleUpdate(ctx, message("with Go"))
	h.HandleUpdate(ctx, message("/next"))

	waitFor(t, "second question", hasMessage(sender, "❓ Вопрос 2/2"))
	waitFor(t, "second answer capture", listening(h))
	h.HandleUpdate(ctx, message("Second answer"))
	h.HandleUpdate(ctx, message("/next"))

	waitFor(t, "report", hasMessage(sender, "Score: 80/100"))

	subs := handoff.submissions()
	if len(subs) != 1 {
		t.Fatalf("expected one submission, got %d", len(subs))
	}
	sub := subs[0]
	if sub.Role != "Backend Engineer" || sub.TechStack != "Go" || sub.UserID != "telegram-7" {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.Transcript[0].Answer != "I build services with Go" || sub.Transcript[1].Answer != "Second answer" {
		t.Fatalf("unexpected transcript %+v", sub.Transcript)
	}

	h.HandleUpdate(ctx, message("/status"))
	waitFor(t, "status", hasMessage(sender, "ID: iv-42"))
}

func TestHandlerRejectsAnswersWithoutInterview(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	h := NewHandler(sender, Config{RateLimit: 100}, fakeSource{}, nil, nil, nil, nil)

	h.HandleUpdate(context.Background(), message("hello"))
	h.HandleUpdate(context.Background(), message("/next"))
	h.HandleUpdate(context.Background(), message("/unknown"))

	got := sender.all()
	if len(got) != 3 {
		t.Fatalf("expected three replies, got %v", got)
	}
	if !strings.Contains(got[0], "Сейчас не время") || !strings.Contains(got[1], "Интервью не идет") || !strings.Contains(got[2], "Неизвестная команда") {
		t.Fatalf("unexpected replies %v", got)
	}
}

func TestHandlerRateLimit(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	h := NewHandler(sender, Config{RateLimit: 1}, fakeSource{}, nil, nil, nil, nil)

	h.HandleUpdate(context.Background(), message("/help"))
	h.HandleUpdate(context.Background(), message("/help"))

	got := sender.all()
	if len(got) != 2 || !strings.Contains(got[1], "Слишком много сообщений") {
		t.Fatalf("expected rate limit reply, got %v", got)
	}
}

func TestHandlerStopClosesInterview(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	h := NewHandler(sender, Config{RateLimit: 100}, fakeSource{}, nil, nil, nil, nil)
	ctx := context.Background()

	h.HandleUpdate(ctx, message("/start"))
	h.HandleUpdate(ctx, message("SRE"))
	h.HandleUpdate(ctx, message("Linux"))
	h.HandleUpdate(ctx, message("1"))
	waitFor(t, "capture", listening(h))

	h.HandleUpdate(ctx, message("/stop"))
	waitFor(t, "stop reply", hasMessage(sender, "Интервью остановлено"))
	if h.controller(testUser) != nil {
		t.Fatalf("expected controller to be released")
	}

	h.HandleUpdate(ctx, message("answer"))
	waitFor(t, "idle reply", hasMessage(sender, "Сейчас не время"))
}

func TestCleanupInactiveSessions(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeSender{}, Config{RateLimit: 100, SessionTTL: time.Hour}, fakeSource{}, nil, nil, nil, nil)
	sess := h.getOrCreateSession(1, 1, "Ann")
	h.getOrCreateSession(2, 2, "Bob")

	sess.mu.Lock()
	sess.LastActivity = time.Now().Add(-2 * time.Hour)
	sess.mu.Unlock()

	h.cleanupInactiveSessions()

	h.sessionsMutex.RLock()
	defer h.sessionsMutex.RUnlock()
	if _, ok := h.sessions[1]; ok {
		t.Fatalf("expected inactive session to be removed")
	}
	if _, ok := h.sessions[2]; !ok {
		t.Fatalf("expected active session to stay")
	}
}

func TestValidateUserInput(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeSender{}, Config{}, fakeSource{}, nil, nil, nil, nil)
	if err := h.validateUserInput(strings.Repeat("a", 4001)); err == nil {
		t.Fatalf("expected length error")
	}
	if err := h.validateUserInput("!!!!!!!!!!!!!!"); err == nil {
		t.Fatalf("expected repeated characters error")
	}
	if err := h.validateUserInput("I enjoy distributed systems"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
