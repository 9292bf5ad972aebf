package feedback

import (
	"strings"
	"testing"

	"mock-interview/internal/domain"
)

func TestBands(t *testing.T) {
	t.Parallel()

	totals := map[int]Band{100: BandStrong, 80: BandStrong, 79: BandFair, 60: BandFair, 59: BandWeak, 0: BandWeak}
	for score, want := range totals {
		if got := TotalBand(score); got != want {
			t.Fatalf("TotalBand(%d) = %s, want %s", score, got, want)
		}
	}

	questions := map[int]Band{10: BandStrong, 7: BandStrong, 6: BandFair, 4: BandFair, 3: BandWeak, 0: BandWeak}
	for score, want := range questions {
		if got := QuestionBand(score); got != want {
			t.Fatalf("QuestionBand(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	report := FormatReport(domain.Assessment{
		TotalScore: 85,
		Strengths:  []string{"clear examples"},
		Weaknesses: []string{"rushed answers"},
		Feedback:   "Great job.",
		Questions: []domain.QuestionAssessment{
			{Question: "Q1", UserAnswer: "A1", Score: 3, Feedback: "too short", IdealAnswer: "longer A1"},
		},
	})

	for _, want := range []string{
		"Score: 85/100 (strong)",
		"- clear examples",
		"Areas for Improvement:",
		"Question 1: Q1",
		"Score: 3/10 (weak)",
		`Your Answer: "A1"`,
		"Ideal Answer: longer A1",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report is missing %q:\n%s", want, report)
		}
	}
}
