package setup

import (
	"errors"
	"net/url"
	"strconv"
	"testing"

	"mock-interview/internal/domain"
)

func TestParseCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "5", want: 5},
		{input: "1", want: 1},
		{input: "20", want: 20},
		{input: "I want 7 questions please", want: 7},
		{input: " 12. ", want: 12},
		{input: "0", wantErr: true},
		{input: "21", wantErr: true},
		{input: "-3", want: 3},
		{input: "five", wantErr: true},
		{input: "", wantErr: true},
		{input: "99999999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCount(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidCount) {
				t.Fatalf("ParseCount(%q): expected ErrInvalidCount, got %v", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCount(%q): unexpected error %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("ParseCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestWizardCollectsAnswers(t *testing.T) {
	t.Parallel()

	w := NewWizard(Messages{})
	if w.Checkpoint() != CheckpointRole {
		t.Fatalf("expected to start at role, got %s", w.Checkpoint())
	}

	reply, advanced := w.Submit("Frontend Developer")
	if !advanced || reply != "Great! A Frontend Developer role. What specific tech stack or topics should I focus on?" {
		t.Fatalf("unexpected role reply %q (advanced=%v)", reply, advanced)
	}

	reply, advanced = w.Submit("React and TypeScript")
	if !advanced || reply != "Understood. How many questions would you like me to ask?" {
		t.Fatalf("unexpected tech reply %q (advanced=%v)", reply, advanced)
	}

	reply, advanced = w.Submit("I want 7 questions please")
	if !advanced || reply != "Perfect. Starting your interview for Frontend Developer with 7 questions now." {
		t.Fatalf("unexpected count reply %q (advanced=%v)", reply, advanced)
	}
	if !w.Done() {
		t.Fatalf("expected wizard to be done")
	}

	want := domain.Setup{Role: "Frontend Developer", TechStack: "React and TypeScript", Count: 7}
	if w.Answers() != want {
		t.Fatalf("unexpected answers %+v", w.Answers())
	}
}

func TestWizardCountValidationDoesNotAdvance(t *testing.T) {
	t.Parallel()

	w := NewWizard(Messages{})
	w.Submit("QA")
	w.Submit("Selenium")

	for _, input := range []string{"zero", "0", "21", "a hundred", "100"} {
		reply, advanced := w.Submit(input)
		if advanced {
			t.Fatalf("input %q should not advance", input)
		}
		if reply != DefaultMessages().InvalidCount {
			t.Fatalf("unexpected reply for %q: %q", input, reply)
		}
		if w.Checkpoint() != CheckpointCount {
			t.Fatalf("checkpoint moved on %q: %s", input, w.Checkpoint())
		}
	}

	for n := MinQuestions; n <= MaxQuestions; n++ {
		w := NewWizard(Messages{})
		w.Submit("QA")
		w.Submit("Selenium")
		if _, advanced := w.Submit(strconv.Itoa(n)); !advanced {
			t.Fatalf("count %d should advance", n)
		}
		if w.Checkpoint() != CheckpointConfirm {
			t.Fatalf("count %d: expected confirm, got %s", n, w.Checkpoint())
		}
		if _, advanced := w.Submit(strconv.Itoa(n)); advanced {
			t.Fatalf("count %d advanced twice", n)
		}
	}
}

func TestWizardIgnoresEmptyInput(t *testing.T) {
	t.Parallel()

	w := NewWizard(Messages{})
	reply, advanced := w.Submit("   ")
	if reply != "" || advanced {
		t.Fatalf("expected empty input to be ignored, got %q", reply)
	}
	if w.Checkpoint() != CheckpointRole {
		t.Fatalf("checkpoint moved on empty input")
	}
}

func TestRedirectUsesValidatedCount(t *testing.T) {
	t.Parallel()

	w := NewWizard(Messages{})
	w.Submit("Data Engineer")
	w.Submit("Spark")
	w.Submit("maybe 3 questions")

	got := RedirectURL("/interview", w.Answers())
	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if parsed.Path != "/interview" {
		t.Fatalf("unexpected path %q", parsed.Path)
	}

	setup := ParseQuery(parsed.Query())
	want := domain.Setup{Role: "Data Engineer", TechStack: "Spark", Count: 3}
	if setup != want {
		t.Fatalf("expected %+v, got %+v", want, setup)
	}
}

func TestParseQueryDefaultsCount(t *testing.T) {
	t.Parallel()

	setup := ParseQuery(url.Values{"role": {"SRE"}, "techStack": {"Kubernetes"}, "count": {"lots"}})
	if setup.Count != domain.DefaultQuestionCount {
		t.Fatalf("expected default count, got %d", setup.Count)
	}
}
