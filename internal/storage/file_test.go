package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mock-interview/internal/domain"
)

func newMemStore(t *testing.T) (*FileStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewFileStore(fs, "results")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store, fs
}

func TestFileStoreInterviewRoundTrip(t *testing.T) {
	t.Parallel()

	store, fs := newMemStore(t)
	ctx := context.Background()

	rec := &InterviewRecord{
		UserID:     "user-1",
		Role:       "Backend Engineer",
		TechStack:  "Go",
		Transcript: []domain.Turn{{Question: "Q1", Answer: "A1"}},
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:   95,
	}
	if err := store.SaveInterview(ctx, rec); err != nil {
		t.Fatalf("SaveInterview: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected an ID to be assigned")
	}

	if ok, _ := afero.Exists(fs, "results/interview_"+rec.ID+".json"); !ok {
		t.Fatalf("expected interview file to exist")
	}

	got, err := store.GetInterview(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetInterview: %v", err)
	}
	if got.Role != rec.Role || got.Duration != 95 || len(got.Transcript) != 1 || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestFileStoreGetInterviewNotFound(t *testing.T) {
	t.Parallel()

	store, _ := newMemStore(t)
	for _, id := range []string{"missing", "", "../etc/passwd"} {
		if _, err := store.GetInterview(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetInterview(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestFileStoreFeedbackByInterview(t *testing.T) {
	t.Parallel()

	store, _ := newMemStore(t)
	ctx := context.Background()

	if _, err := store.FeedbackByInterview(ctx, "iv-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before feedback is saved, got %v", err)
	}

	for _, interviewID := range []string{"iv-0", "iv-1"} {
		rec := &FeedbackRecord{
			InterviewID: interviewID,
			Assessment:  domain.Assessment{TotalScore: 70, Feedback: "ok " + interviewID},
		}
		if err := store.SaveFeedback(ctx, rec); err != nil {
			t.Fatalf("SaveFeedback: %v", err)
		}
	}

	got, err := store.FeedbackByInterview(ctx, "iv-1")
	if err != nil {
		t.Fatalf("FeedbackByInterview: %v", err)
	}
	if got.Feedback != "ok iv-1" || got.TotalScore != 70 || got.ID == "" {
		t.Fatalf("unexpected feedback %+v", got)
	}
}

func TestFileStoreListInterviews(t *testing.T) {
	t.Parallel()

	store, _ := newMemStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, userID := range []string{"alice", "bob", "alice"} {
		rec := &InterviewRecord{UserID: userID, Role: "R", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.SaveInterview(ctx, rec); err != nil {
			t.Fatalf("SaveInterview: %v", err)
		}
	}

	all, err := store.ListInterviews(ctx, "")
	if err != nil {
		t.Fatalf("ListInterviews: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 interviews, got %d", len(all))
	}

	alice, err := store.ListInterviews(ctx, "alice")
	if err != nil {
		t.Fatalf("ListInterviews: %v", err)
	}
	if len(alice) != 2 {
		t.Fatalf("expected 2 interviews for alice, got %d", len(alice))
	}
	if !alice[0].CreatedAt.After(alice[1].CreatedAt) {
		t.Fatalf("expected newest first, got %v then %v", alice[0].CreatedAt, alice[1].CreatedAt)
	}
}
