package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mock-interview/internal/config"
	"mock-interview/internal/domain"
	"mock-interview/internal/feedback"
	"mock-interview/internal/interviewer"
	"mock-interview/internal/metrics"
	"mock-interview/internal/storage"
)

type fakeGenerator struct {
	got domain.Setup
}

func (f *fakeGenerator) GenerateQuestions(_ context.Context, setup domain.Setup) []string {
	f.got = setup
	return []string{"Q1 " + setup.Role, "Q2 " + setup.TechStack}
}

func (f *fakeGenerator) Fallback() []string {
	return []string{"Tell me about yourself."}
}

type fakeSaver struct {
	err error
	got domain.Submission
}

func (f *fakeSaver) Save(_ context.Context, sub domain.Submission) (feedback.SaveResult, error) {
	f.got = sub
	if f.err != nil {
		return feedback.SaveResult{}, f.err
	}
	return feedback.SaveResult{InterviewID: "iv-1", FeedbackID: "fb-1"}, nil
}

type testServer struct {
	*Server
	generator *fakeGenerator
	saver     *fakeSaver
	store     *storage.FileStore
	metrics   *metrics.Metrics
}

func newTestServer(t *testing.T, cfg config.ServerConfig) *testServer {
	t.Helper()
	store, err := storage.NewFileStore(afero.NewMemMapFs(), "results")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ts := &testServer{
		generator: &fakeGenerator{},
		saver:     &fakeSaver{},
		store:     store,
		metrics:   metrics.NewMetrics(),
	}
	ts.Server = New(cfg, ts.generator, ts.saver, store, nil, ts.metrics)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestGenerateQuestions(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	rec := ts.do(http.MethodPost, "/api/interview/generate", `{"role":"SRE","techStack":"Linux","count":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode[interviewer.GenerateResponse](t, rec)
	if len(resp.Questions) != 2 || resp.Questions[0] != "Q1 SRE" {
		t.Fatalf("unexpected questions %v", resp.Questions)
	}
	if ts.generator.got != (domain.Setup{Role: "SRE", TechStack: "Linux", Count: 2}) {
		t.Fatalf("unexpected setup %+v", ts.generator.got)
	}
}

func TestGenerateQuestionsMalformedBodyReturnsFallback(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	rec := ts.do(http.MethodPost, "/api/interview/generate", `{"role":`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[interviewer.GenerateResponse](t, rec)
	if len(resp.Questions) != 1 || resp.Questions[0] != "Tell me about yourself." {
		t.Fatalf("expected fallback list, got %v", resp.Questions)
	}
	if ts.metrics.GetSnapshot().FallbacksUsed != 1 {
		t.Fatalf("expected fallback to be counted")
	}
}

func TestSaveInterview(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	body := `{"userId":"u-1","role":"SRE","techStack":"Linux","transcript":[{"question":"Q1","answer":"A1"}],"duration":42}`
	rec := ts.do(http.MethodPost, "/api/interview/save", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	result := decode[feedback.SaveResult](t, rec)
	if result.InterviewID != "iv-1" || result.FeedbackID != "fb-1" {
		t.Fatalf("unexpected result %+v", result)
	}
	if ts.saver.got.Duration != 42 || len(ts.saver.got.Transcript) != 1 {
		t.Fatalf("unexpected submission %+v", ts.saver.got)
	}
}

func TestSaveInterviewFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		err   error
		noLLM bool
	}{
		{name: "malformed body", body: `not json`},
		{name: "evaluation error", body: `{"role":"SRE"}`, err: errors.New("model unavailable")},
		{name: "no evaluator", body: `{"role":"SRE"}`, noLLM: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(t, config.ServerConfig{})
			ts.saver.err = tt.err
			if tt.noLLM {
				ts.Server.saver = nil
			}

			rec := ts.do(http.MethodPost, "/api/interview/save", tt.body)
			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d", rec.Code)
			}
			if resp := decode[ErrorResponse](t, rec); resp.Error != "Failed to save interview" {
				t.Fatalf("unexpected error body %+v", resp)
			}
		})
	}
}

func TestFeedbackProcessingThenReady(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	ctx := context.Background()

	interview := &storage.InterviewRecord{Role: "SRE", CreatedAt: time.Now()}
	if err := ts.store.SaveInterview(ctx, interview); err != nil {
		t.Fatalf("SaveInterview: %v", err)
	}

	rec := ts.do(http.MethodGet, "/api/interview/"+interview.ID+"/feedback", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if resp := decode[StatusResponse](t, rec); resp.Status != "processing" {
		t.Fatalf("unexpected status %+v", resp)
	}

	fb := &storage.FeedbackRecord{
		InterviewID: interview.ID,
		CreatedAt:   time.Now(),
		Assessment:  domain.Assessment{TotalScore: 77, Feedback: "Solid"},
	}
	if err := ts.store.SaveFeedback(ctx, fb); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}

	rec = ts.do(http.MethodGet, "/api/interview/"+interview.ID+"/feedback", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decode[storage.FeedbackRecord](t, rec)
	if got.TotalScore != 77 || got.InterviewID != interview.ID {
		t.Fatalf("unexpected feedback %+v", got)
	}
}

func TestGetInterview(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	if rec := ts.do(http.MethodGet, "/api/interview/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	interview := &storage.InterviewRecord{UserID: "u-1", Role: "SRE", CreatedAt: time.Now()}
	if err := ts.store.SaveInterview(context.Background(), interview); err != nil {
		t.Fatalf("SaveInterview: %v", err)
	}
	rec := ts.do(http.MethodGet, "/api/interview/"+interview.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[storage.InterviewRecord](t, rec); got.UserID != "u-1" {
		t.Fatalf("unexpected interview %+v", got)
	}
}

func TestListInterviews(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	rec := ts.do(http.MethodGet, "/api/interviews?userId=u-1", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %q", rec.Code, rec.Body.String())
	}

	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, user := range []string{"u-1", "u-2", "u-1"} {
		rec := &storage.InterviewRecord{UserID: user, Role: "SRE", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := ts.store.SaveInterview(ctx, rec); err != nil {
			t.Fatalf("SaveInterview: %v", err)
		}
	}

	rec = ts.do(http.MethodGet, "/api/interviews?userId=u-1", "")
	list := decode[[]storage.InterviewRecord](t, rec)
	if len(list) != 2 || !list[0].CreatedAt.After(list[1].CreatedAt) {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{RateLimit: 1})
	if rec := ts.do(http.MethodGet, "/api/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := ts.do(http.MethodGet, "/api/metrics", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:5555"
	if got := clientKey(req); got != "10.0.0.5" {
		t.Fatalf("unexpected key %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientKey(req); got != "203.0.113.7" {
		t.Fatalf("unexpected forwarded key %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	ts.metrics.IncrementInterviewsStarted()

	rec := ts.do(http.MethodGet, "/api/metrics", "")
	if got := decode[metrics.Snapshot](t, rec); got.InterviewsStarted != 1 {
		t.Fatalf("unexpected metrics %+v", got)
	}
}

func TestSwaggerDoc(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	rec := ts.do(http.MethodGet, "/swagger/doc.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/interview/generate") {
		t.Fatalf("expected API paths in swagger doc")
	}
}

func TestMountedHandler(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, config.ServerConfig{})
	ts.Mount("GET /ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	if rec := ts.do(http.MethodGet, "/ping", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected mounted handler, got %d", rec.Code)
	}
}
